// Threadrec - Forum Thread Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threadrec

package api

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/threadrec/internal/metrics"
	"github.com/tomtom215/threadrec/internal/recommend"
)

func TestIngestThreads(t *testing.T) {
	t.Parallel()
	a := newTestAPI(t)

	threads := []recommend.Thread{
		{ThreadID: "linux.do:10", ForumID: "linux.do", Title: "Kernel 7.0 released", Tags: []string{"linux"}, PublishedAt: testNow},
		{ThreadID: "linux.do:11", ForumID: "linux.do", Title: "No publish time"},
	}

	rec, env := a.do(t, http.MethodPost, "/api/v1/threads", threads)
	expectStatus(t, rec, http.StatusCreated)
	if got := decodeData[IngestResponse](t, env); got.Accepted != 2 {
		t.Errorf("accepted = %d, want 2", got.Accepted)
	}

	stored, err := a.backend.GetThread(context.Background(), "linux.do:11")
	if err != nil {
		t.Fatalf("GetThread: %v", err)
	}
	if stored.CreatedAt.IsZero() {
		t.Error("created_at should be stamped at ingest")
	}
	if !stored.PublishedAt.IsZero() {
		t.Errorf("published_at = %v, want zero", stored.PublishedAt)
	}
}

func TestIngestThreads_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		body        any
		wantCode    string
		wantMessage string
	}{
		{name: "empty array", body: `[]`, wantCode: ErrCodeValidationFailed},
		{name: "object instead of array", body: `{"thread_id":"a:1"}`, wantCode: ErrCodeBadRequest},
		{
			name:        "bad thread id",
			body:        []recommend.Thread{{ThreadID: "a:1", ForumID: "a"}, {ThreadID: "nocolon", ForumID: "a"}},
			wantCode:    ErrCodeValidationFailed,
			wantMessage: "threads[1].thread_id",
		},
		{
			name:        "missing forum",
			body:        []recommend.Thread{{ThreadID: "a:1"}},
			wantCode:    ErrCodeValidationFailed,
			wantMessage: "threads[0].forum_id",
		},
		{
			name:        "negative counter",
			body:        []recommend.Thread{{ThreadID: "a:1", ForumID: "a", ReplyCount: -1}},
			wantCode:    ErrCodeValidationFailed,
			wantMessage: "reply_count",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			a := newTestAPI(t)

			rec, env := a.do(t, http.MethodPost, "/api/v1/threads", tt.body)
			expectStatus(t, rec, http.StatusBadRequest)
			expectErrorCode(t, env, tt.wantCode)
			if tt.wantMessage != "" && !strings.Contains(env.Error.Message, tt.wantMessage) {
				t.Errorf("message %q does not mention %s", env.Error.Message, tt.wantMessage)
			}
		})
	}
}

func TestIngestEvents(t *testing.T) {
	t.Parallel()
	a := newTestAPI(t)

	counter := metrics.IngestedRecords.WithLabelValues("event")
	before := testutil.ToFloat64(counter)

	events := []recommend.ReadEvent{
		{ThreadID: "linux.do:1", Completed: true, DwellMsEffective: 60_000, MaxScrollPct: 100, CreatedAt: testNow.Add(-time.Hour)},
		{ThreadID: "linux.do:2", DwellMsEffective: 5_000, MaxScrollPct: 20},
	}
	rec, env := a.do(t, http.MethodPost, "/api/v1/events", events)
	expectStatus(t, rec, http.StatusCreated)
	if got := decodeData[IngestResponse](t, env); got.Accepted != 2 {
		t.Errorf("accepted = %d, want 2", got.Accepted)
	}
	if got := testutil.ToFloat64(counter) - before; got < 2 {
		t.Errorf("ingested{event} delta = %v, want at least 2", got)
	}

	stored, err := a.backend.AllReadEvents(context.Background())
	if err != nil {
		t.Fatalf("AllReadEvents: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("stored %d events, want 2", len(stored))
	}
}

func TestIngestEvents_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		events []recommend.ReadEvent
	}{
		{name: "scroll above 100", events: []recommend.ReadEvent{{ThreadID: "a:1", MaxScrollPct: 101}}},
		{name: "negative dwell", events: []recommend.ReadEvent{{ThreadID: "a:1", DwellMsEffective: -1}}},
		{name: "missing thread id", events: []recommend.ReadEvent{{MaxScrollPct: 10}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			a := newTestAPI(t)

			rec, env := a.do(t, http.MethodPost, "/api/v1/events", tt.events)
			expectStatus(t, rec, http.StatusBadRequest)
			expectErrorCode(t, env, ErrCodeValidationFailed)
		})
	}
}

func TestIngest_BodyTooLarge(t *testing.T) {
	t.Parallel()
	a := newTestAPI(t, func(c *MiddlewareConfig) { c.MaxBodyBytes = 1024 })

	body := `[{"thread_id":"a:1","forum_id":"a","title":"` + strings.Repeat("x", 2048) + `"}]`
	rec, env := a.do(t, http.MethodPost, "/api/v1/threads", body)
	expectStatus(t, rec, http.StatusRequestEntityTooLarge)
	expectErrorCode(t, env, ErrCodePayloadTooLarge)
}
