// Threadrec - Forum Thread Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threadrec

package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/threadrec/internal/recommend"
)

// Limits bounds request parameters.
type Limits struct {
	// DefaultLimit is used when ?limit= is absent.
	DefaultLimit int

	// MaxLimit is the largest accepted ?limit= and recommendation_count.
	MaxLimit int

	// RequestTimeout bounds each engine call.
	RequestTimeout time.Duration
}

// DefaultLimits returns limit 10, max 50 and a 10 second timeout.
func DefaultLimits() Limits {
	return Limits{
		DefaultLimit:   recommend.DefaultLimit,
		MaxLimit:       50,
		RequestTimeout: 10 * time.Second,
	}
}

// Ingester is the write side of the store used by the ingest endpoints,
// plus Ping for health checks.
type Ingester interface {
	PutThreads(ctx context.Context, threads []recommend.Thread) (int, error)
	AppendReadEvents(ctx context.Context, events []recommend.ReadEvent) (int, error)
	Ping(ctx context.Context) error
}

// stateReporter is implemented by store.Breaker.
type stateReporter interface {
	State() string
}

// Handler serves all API endpoints.
type Handler struct {
	engine    *recommend.Engine
	store     Ingester
	limits    Limits
	startTime time.Time
	nowFunc   func() time.Time
}

// NewHandler creates a Handler. Zero fields in limits take their defaults.
func NewHandler(engine *recommend.Engine, store Ingester, limits Limits) *Handler {
	def := DefaultLimits()
	if limits.MaxLimit <= 0 {
		limits.MaxLimit = def.MaxLimit
	}
	if limits.DefaultLimit <= 0 {
		limits.DefaultLimit = def.DefaultLimit
	}
	if limits.DefaultLimit > limits.MaxLimit {
		limits.DefaultLimit = limits.MaxLimit
	}
	if limits.RequestTimeout <= 0 {
		limits.RequestTimeout = def.RequestTimeout
	}

	return &Handler{
		engine:    engine,
		store:     store,
		limits:    limits,
		startTime: time.Now(),
		nowFunc:   time.Now,
	}
}

// requestContext derives the per-request engine context.
func (h *Handler) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), h.limits.RequestTimeout)
}

// decodeJSON reads the whole body and unmarshals it into dst. Oversized
// bodies surface as *http.MaxBytesError.
func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return badRequest("request body is required", nil)
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return badRequest("request body is required", nil)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return badRequest("invalid JSON body", err)
	}
	return nil
}

// HealthStatus is the /api/v1/health payload.
type HealthStatus struct {
	Status        string               `json:"status"`
	Store         string               `json:"store"`
	StoreError    string               `json:"store_error,omitempty"`
	Breaker       string               `json:"breaker,omitempty"`
	Cache         recommend.CacheStats `json:"cache"`
	Requests      int64                `json:"requests"`
	Errors        int64                `json:"errors"`
	UptimeSeconds float64              `json:"uptime_seconds"`
}

// Health reports store reachability and engine counters. It answers 503
// when the store cannot be reached or its circuit breaker is open.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	requests, errs := h.engine.Counters()
	status := HealthStatus{
		Status:        "healthy",
		Store:         "ok",
		Cache:         h.engine.CacheStats(),
		Requests:      requests,
		Errors:        errs,
		UptimeSeconds: time.Since(h.startTime).Seconds(),
	}

	if err := h.store.Ping(ctx); err != nil {
		status.Status = "degraded"
		status.Store = "unavailable"
		status.StoreError = err.Error()
	}
	if sr, ok := h.store.(stateReporter); ok {
		status.Breaker = sr.State()
		if status.Breaker == "open" {
			status.Status = "degraded"
		}
	}

	code := http.StatusOK
	if status.Status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	NewResponseWriter(w, r).SuccessWithStatus(code, status)
}
