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

	"github.com/goccy/go-json"

	"github.com/tomtom215/threadrec/internal/recommend"
	"github.com/tomtom215/threadrec/internal/validation"
)

func TestGetRecommendations_EmptyStore(t *testing.T) {
	t.Parallel()
	a := newTestAPI(t)

	rec, env := a.do(t, http.MethodGet, "/api/v1/recommendations", nil)
	expectStatus(t, rec, http.StatusOK)

	resp := decodeData[RecommendationsResponse](t, env)
	if resp.Recommendations == nil {
		t.Error("recommendations should encode as [] not null")
	}
	if resp.Count != 0 {
		t.Errorf("count = %d, want 0", resp.Count)
	}
	if resp.Limit != recommend.DefaultLimit {
		t.Errorf("limit = %d, want default %d", resp.Limit, recommend.DefaultLimit)
	}
	if resp.Forum != recommend.ForumAll {
		t.Errorf("forum = %q, want %q", resp.Forum, recommend.ForumAll)
	}
}

func TestGetRecommendations_Endpoints(t *testing.T) {
	t.Parallel()

	paths := []string{
		"/api/v1/recommendations?limit=4",
		"/api/v1/recommendations?limit=4&algorithm=popular",
		"/api/v1/recommendations/content?limit=4",
		"/api/v1/recommendations/tags?limit=4",
		"/api/v1/recommendations/mixed?limit=4&force_refresh=true",
	}

	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			t.Parallel()
			a := newTestAPI(t)
			seedCorpus(t, a.backend)

			rec, env := a.do(t, http.MethodGet, path, nil)
			expectStatus(t, rec, http.StatusOK)

			resp := decodeData[RecommendationsResponse](t, env)
			if resp.Count != len(resp.Recommendations) {
				t.Errorf("count %d != len %d", resp.Count, len(resp.Recommendations))
			}
			if resp.Count > 4 {
				t.Errorf("count = %d exceeds limit 4", resp.Count)
			}
			for _, c := range resp.Recommendations {
				if c.ThreadID == "linux.do:1" || c.ThreadID == "linux.do:2" {
					t.Errorf("already read thread %s recommended", c.ThreadID)
				}
			}
		})
	}
}

func TestGetRecommendations_ForumFilter(t *testing.T) {
	t.Parallel()
	a := newTestAPI(t)
	seedCorpus(t, a.backend)

	rec, env := a.do(t, http.MethodGet, "/api/v1/recommendations/content?forum=nodeseek", nil)
	expectStatus(t, rec, http.StatusOK)

	resp := decodeData[RecommendationsResponse](t, env)
	if resp.Forum != "nodeseek" {
		t.Errorf("forum = %q, want nodeseek", resp.Forum)
	}
	for _, c := range resp.Recommendations {
		if c.Source != recommend.SourceFallback && c.ForumID != "nodeseek" {
			t.Errorf("thread %s from forum %s leaked through forum filter", c.ThreadID, c.ForumID)
		}
	}
}

func TestRecommendations_SettingsCountOverridesLimit(t *testing.T) {
	t.Parallel()

	for _, path := range []string{
		"/api/v1/recommendations?limit=10",
		"/api/v1/recommendations/content?limit=10",
		"/api/v1/recommendations/tags?limit=10",
		"/api/v1/recommendations/mixed?limit=10",
	} {
		t.Run(path, func(t *testing.T) {
			t.Parallel()
			a := newTestAPI(t)
			seedCorpus(t, a.backend)

			if err := a.backend.SaveSettings(context.Background(), recommend.Settings{RecommendationCount: 1}); err != nil {
				t.Fatalf("SaveSettings: %v", err)
			}

			rec, env := a.do(t, http.MethodGet, path, nil)
			expectStatus(t, rec, http.StatusOK)
			resp := decodeData[RecommendationsResponse](t, env)
			if resp.Count > 1 {
				t.Errorf("count = %d, want at most 1 from settings", resp.Count)
			}
			if resp.Limit != 1 {
				t.Errorf("limit = %d, want the applied limit 1", resp.Limit)
			}
		})
	}
}

func TestRecommendations_LimitEchoedWithoutOverride(t *testing.T) {
	t.Parallel()
	a := newTestAPI(t)
	seedCorpus(t, a.backend)

	rec, env := a.do(t, http.MethodGet, "/api/v1/recommendations/content?limit=4", nil)
	expectStatus(t, rec, http.StatusOK)
	if resp := decodeData[RecommendationsResponse](t, env); resp.Limit != 4 {
		t.Errorf("limit = %d, want 4", resp.Limit)
	}
}

func TestGetRecommendations_InvalidQuery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		query     string
		wantField string
	}{
		{name: "zero limit", query: "limit=0", wantField: "limit"},
		{name: "negative limit", query: "limit=-3", wantField: "limit"},
		{name: "limit above max", query: "limit=51", wantField: "limit"},
		{name: "non numeric limit", query: "limit=ten", wantField: "limit"},
		{name: "bad force_refresh", query: "force_refresh=maybe", wantField: "force_refresh"},
		{name: "unknown algorithm", query: "algorithm=random", wantField: "algorithm"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			a := newTestAPI(t)

			rec, env := a.do(t, http.MethodGet, "/api/v1/recommendations?"+tt.query, nil)
			expectStatus(t, rec, http.StatusBadRequest)
			expectErrorCode(t, env, ErrCodeValidationFailed)

			var fields []validation.FieldError
			if err := json.Unmarshal(env.Error.Details, &fields); err != nil {
				t.Fatalf("decode details: %v", err)
			}
			if len(fields) == 0 || fields[0].Field != tt.wantField {
				t.Errorf("fields = %+v, want first field %s", fields, tt.wantField)
			}
		})
	}
}

func TestBranchEndpoints_IgnoreAlgorithm(t *testing.T) {
	t.Parallel()
	a := newTestAPI(t)

	rec, _ := a.do(t, http.MethodGet, "/api/v1/recommendations/content?algorithm=random", nil)
	expectStatus(t, rec, http.StatusOK)
}

func TestGetStats(t *testing.T) {
	t.Parallel()
	a := newTestAPI(t)
	seedCorpus(t, a.backend)

	rec, env := a.do(t, http.MethodGet, "/api/v1/recommendations/stats", nil)
	expectStatus(t, rec, http.StatusOK)

	stats := decodeData[recommend.Stats](t, env)
	if stats.TotalThreads != 6 {
		t.Errorf("total_threads = %d, want 6", stats.TotalThreads)
	}
	if stats.ReadThreads != 2 || stats.CompletedReads != 1 {
		t.Errorf("read/completed = %d/%d, want 2/1", stats.ReadThreads, stats.CompletedReads)
	}
	if stats.AvailableForRecommendation != 4 {
		t.Errorf("available = %d, want 4", stats.AvailableForRecommendation)
	}
}

func TestRecordClick(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       any
		wantStatus int
		wantCode   string
	}{
		{name: "valid", body: ClickRequest{ThreadID: "linux.do:3"}, wantStatus: http.StatusOK},
		{name: "trimmed", body: `{"thread_id":"  linux.do:4  "}`, wantStatus: http.StatusOK},
		{name: "missing id", body: `{}`, wantStatus: http.StatusBadRequest, wantCode: ErrCodeValidationFailed},
		{name: "malformed id", body: ClickRequest{ThreadID: "no-forum"}, wantStatus: http.StatusBadRequest, wantCode: ErrCodeValidationFailed},
		{name: "invalid json", body: `{"thread_id":`, wantStatus: http.StatusBadRequest, wantCode: ErrCodeBadRequest},
		{name: "empty body", body: ``, wantStatus: http.StatusBadRequest, wantCode: ErrCodeBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			a := newTestAPI(t)

			rec, env := a.do(t, http.MethodPost, "/api/v1/recommendations/click", tt.body)
			expectStatus(t, rec, tt.wantStatus)
			if tt.wantCode != "" {
				expectErrorCode(t, env, tt.wantCode)
			}
		})
	}
}

func TestClickedLifecycle(t *testing.T) {
	t.Parallel()
	a := newTestAPI(t)
	ctx := context.Background()

	rec, _ := a.do(t, http.MethodPost, "/api/v1/recommendations/click", ClickRequest{ThreadID: "linux.do:3"})
	expectStatus(t, rec, http.StatusOK)

	ids, err := a.backend.ClickedIDs(ctx)
	if err != nil || len(ids) != 1 || ids[0] != "linux.do:3" {
		t.Fatalf("ClickedIDs = %v, %v; want [linux.do:3]", ids, err)
	}

	rec, _ = a.do(t, http.MethodDelete, "/api/v1/recommendations/clicked", nil)
	expectStatus(t, rec, http.StatusOK)

	ids, err = a.backend.ClickedIDs(ctx)
	if err != nil || len(ids) != 0 {
		t.Fatalf("ClickedIDs after clear = %v, %v; want empty", ids, err)
	}
}

func TestCacheEndpoints(t *testing.T) {
	t.Parallel()
	a := newTestAPI(t)
	seedCorpus(t, a.backend)

	rec, _ := a.do(t, http.MethodGet, "/api/v1/recommendations/content", nil)
	expectStatus(t, rec, http.StatusOK)

	rec, env := a.do(t, http.MethodGet, "/api/v1/recommendations/cache", nil)
	expectStatus(t, rec, http.StatusOK)
	stats := decodeData[recommend.CacheStats](t, env)
	if stats.Size == 0 {
		t.Error("cache should hold similarity entries after a content request")
	}
	if stats.Capacity != recommend.DefaultCacheCapacity {
		t.Errorf("capacity = %d, want %d", stats.Capacity, recommend.DefaultCacheCapacity)
	}

	rec, env = a.do(t, http.MethodDelete, "/api/v1/recommendations/cache", nil)
	expectStatus(t, rec, http.StatusOK)
	if stats := decodeData[recommend.CacheStats](t, env); stats.Size != 0 {
		t.Errorf("size after clear = %d, want 0", stats.Size)
	}
}

func TestResetState(t *testing.T) {
	t.Parallel()
	a := newTestAPI(t)
	ctx := context.Background()

	if err := a.backend.SaveSettings(ctx, recommend.Settings{
		DislikedTags:        []string{"rust"},
		PreferredTags:       []string{"go"},
		RecommendationCount: 5,
		Algorithm:           "content",
	}); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}
	if err := a.backend.AddClicked(ctx, "linux.do:3"); err != nil {
		t.Fatalf("AddClicked: %v", err)
	}

	rec, _ := a.do(t, http.MethodPost, "/api/v1/recommendations/reset", nil)
	expectStatus(t, rec, http.StatusOK)

	settings, err := a.backend.GetSettings(ctx)
	if err != nil {
		t.Fatalf("GetSettings: %v", err)
	}
	if len(settings.DislikedTags) != 0 || len(settings.PreferredTags) != 0 || settings.RecommendationCount != 0 || settings.Algorithm != "" {
		t.Errorf("settings after reset = %+v, want zero", settings)
	}
	if ids, _ := a.backend.ClickedIDs(ctx); len(ids) != 0 {
		t.Errorf("clicked after reset = %v, want empty", ids)
	}
}

func TestRecommendationsResponse_ScoreBreakdown(t *testing.T) {
	t.Parallel()
	a := newTestAPI(t)
	seedCorpus(t, a.backend)

	rec, _ := a.do(t, http.MethodGet, "/api/v1/recommendations/content?limit=3", nil)
	expectStatus(t, rec, http.StatusOK)

	body := rec.Body.String()
	for _, key := range []string{`"scores"`, `"final_score"`, `"content_similarity"`, `"source"`} {
		if !strings.Contains(body, key) {
			t.Errorf("response missing %s: %s", key, body)
		}
	}
}
