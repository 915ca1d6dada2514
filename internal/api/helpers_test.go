// Threadrec - Forum Thread Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threadrec

package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/threadrec/internal/recommend"
	"github.com/tomtom215/threadrec/internal/store"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type testAPI struct {
	router  http.Handler
	engine  *recommend.Engine
	backend *store.BadgerStore
}

type testOption func(*MiddlewareConfig)

func newTestAPI(t *testing.T, opts ...testOption) *testAPI {
	t.Helper()

	backend, err := store.Open(store.Config{InMemory: true}, zerolog.Nop())
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = backend.Close() })

	return newTestAPIWithBackend(t, backend, opts...)
}

func newTestAPIWithBackend(t *testing.T, backend *store.BadgerStore, opts ...testOption) *testAPI {
	t.Helper()

	breaker := store.NewBreaker(backend, store.DefaultBreakerConfig(), zerolog.Nop())
	engine, err := recommend.NewEngine(recommend.DefaultConfig(), breaker, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	engine.SetClock(func() time.Time { return testNow })

	cfg := DefaultMiddlewareConfig()
	cfg.CORSAllowedOrigins = []string{"*"}
	cfg.RateLimitDisabled = true
	for _, opt := range opts {
		opt(cfg)
	}

	h := NewHandler(engine, breaker, DefaultLimits())
	return &testAPI{
		router:  NewRouter(h, NewMiddleware(cfg)),
		engine:  engine,
		backend: backend,
	}
}

// envelope mirrors APIResponse with the payload left undecoded.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
	Meta *APIMeta `json:"meta"`
}

func (a *testAPI) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)

	var env envelope
	if rec.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode envelope: %v\nbody: %s", err, rec.Body.String())
		}
	}
	return rec, env
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(env.Data, &out); err != nil {
		t.Fatalf("decode data: %v\ndata: %s", err, env.Data)
	}
	return out
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d\nbody: %s", rec.Code, want, rec.Body.String())
	}
}

func expectErrorCode(t *testing.T, env envelope, want string) {
	t.Helper()
	if env.Success {
		t.Fatal("success = true, want false")
	}
	if env.Error == nil || env.Error.Code != want {
		t.Fatalf("error = %+v, want code %s", env.Error, want)
	}
}

// seedCorpus stores a small two-forum corpus plus reads of the first two
// threads directly through the store.
func seedCorpus(t *testing.T, backend *store.BadgerStore) {
	t.Helper()
	ctx := context.Background()

	threads := []recommend.Thread{
		{ThreadID: "linux.do:1", ForumID: "linux.do", Title: "Go generics deep dive", Category: "dev", Tags: []string{"go", "generics"}, PublishedAt: testNow.Add(-48 * time.Hour), ReplyCount: 10, LikeCount: 5, ViewCount: 200},
		{ThreadID: "linux.do:2", ForumID: "linux.do", Title: "Rust ownership explained", Category: "dev", Tags: []string{"rust"}, PublishedAt: testNow.Add(-24 * time.Hour), ReplyCount: 3, ViewCount: 80},
		{ThreadID: "linux.do:3", ForumID: "linux.do", Title: "Go concurrency patterns", Category: "dev", Tags: []string{"go", "concurrency"}, PublishedAt: testNow.Add(-12 * time.Hour), ReplyCount: 25, LikeCount: 12, ViewCount: 900},
		{ThreadID: "linux.do:4", ForumID: "linux.do", Title: "Weekend hiking photos", Category: "life", Tags: []string{"hiking"}, PublishedAt: testNow.Add(-6 * time.Hour), ReplyCount: 2, ViewCount: 40},
		{ThreadID: "nodeseek:1", ForumID: "nodeseek", Title: "Go modules and workspaces", Category: "dev", Tags: []string{"go"}, PublishedAt: testNow.Add(-3 * time.Hour), ReplyCount: 7, LikeCount: 1, ViewCount: 120},
		{ThreadID: "nodeseek:2", ForumID: "nodeseek", Title: "VPS deals this week", Category: "deals", Tags: []string{"vps"}, PublishedAt: testNow.Add(-2 * time.Hour), ReplyCount: 40, LikeCount: 20, ViewCount: 3000},
	}
	if _, err := backend.PutThreads(ctx, threads); err != nil {
		t.Fatalf("PutThreads: %v", err)
	}

	events := []recommend.ReadEvent{
		{ThreadID: "linux.do:1", Completed: true, DwellMsEffective: 90_000, MaxScrollPct: 95, CreatedAt: testNow.Add(-2 * time.Hour), Category: "dev", Tags: []string{"go", "generics"}},
		{ThreadID: "linux.do:2", Completed: false, DwellMsEffective: 10_000, MaxScrollPct: 30, CreatedAt: testNow.Add(-time.Hour), Category: "dev", Tags: []string{"rust"}},
	}
	if _, err := backend.AppendReadEvents(ctx, events); err != nil {
		t.Fatalf("AppendReadEvents: %v", err)
	}
}
