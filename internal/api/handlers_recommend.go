// Threadrec - Forum Thread Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threadrec

package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/tomtom215/threadrec/internal/logging"
	"github.com/tomtom215/threadrec/internal/middleware"
	"github.com/tomtom215/threadrec/internal/recommend"
	"github.com/tomtom215/threadrec/internal/validation"
)

// RecommendationsResponse is the payload of the recommendation endpoints.
type RecommendationsResponse struct {
	Recommendations []recommend.ScoredCandidate `json:"recommendations"`
	Count           int                         `json:"count"`
	Limit           int                         `json:"limit"`
	Forum           string                      `json:"forum"`
	ForceRefresh    bool                        `json:"force_refresh"`
	Algorithm       string                      `json:"algorithm,omitempty"`
}

// recommendQuery holds the parsed query string before conversion to a
// recommend.Request.
type recommendQuery struct {
	Limit        int    `json:"limit" validate:"min=1"`
	Forum        string `json:"forum" validate:"max=128"`
	ForceRefresh bool   `json:"force_refresh"`
	Algorithm    string `json:"algorithm" validate:"omitempty,algorithm"`
}

type recommendFunc func(ctx context.Context, req recommend.Request) ([]recommend.ScoredCandidate, error)

// GetRecommendations handles GET /api/v1/recommendations. The algorithm
// comes from ?algorithm= or, when absent, the reader's settings.
func (h *Handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	h.serveRecommendations(w, r, true, h.engine.Recommend)
}

// GetContentRecommendations handles GET /api/v1/recommendations/content.
func (h *Handler) GetContentRecommendations(w http.ResponseWriter, r *http.Request) {
	h.serveRecommendations(w, r, false, h.engine.RecommendByContent)
}

// GetTagRecommendations handles GET /api/v1/recommendations/tags.
func (h *Handler) GetTagRecommendations(w http.ResponseWriter, r *http.Request) {
	h.serveRecommendations(w, r, false, h.engine.RecommendByTags)
}

// GetMixedRecommendations handles GET /api/v1/recommendations/mixed.
func (h *Handler) GetMixedRecommendations(w http.ResponseWriter, r *http.Request) {
	h.serveRecommendations(w, r, false, h.engine.RecommendMixed)
}

func (h *Handler) serveRecommendations(w http.ResponseWriter, r *http.Request, allowAlgorithm bool, fn recommendFunc) {
	rw := NewResponseWriter(w, r)

	req, err := h.parseRecommendQuery(r, allowAlgorithm)
	if err != nil {
		rw.HandleError(err)
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	// Read first so the reported limit is the one the engine applies.
	settings, err := h.engine.Settings(ctx)
	if err != nil {
		rw.HandleError(err)
		return
	}

	recs, err := fn(ctx, req)
	if err != nil {
		rw.HandleError(err)
		return
	}

	forum := req.Forum
	if forum == "" {
		forum = recommend.ForumAll
	}
	logging.Ctx(r.Context()).Debug().
		Int("count", len(recs)).
		Str("forum", forum).
		Msg("Recommendations served")

	rw.Success(RecommendationsResponse{
		Recommendations: recs,
		Count:           len(recs),
		Limit:           settings.EffectiveLimit(req.Limit),
		Forum:           forum,
		ForceRefresh:    req.ForceRefresh,
		Algorithm:       req.Algorithm,
	})
}

// parseRecommendQuery reads limit, forum, force_refresh and, when
// allowAlgorithm is set, algorithm.
func (h *Handler) parseRecommendQuery(r *http.Request, allowAlgorithm bool) (recommend.Request, error) {
	values := r.URL.Query()
	q := recommendQuery{
		Limit: h.limits.DefaultLimit,
		Forum: strings.TrimSpace(values.Get("forum")),
	}

	var fields []validation.FieldError
	if raw := values.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			fields = append(fields, validation.FieldError{
				Field: "limit", Tag: "number", Message: "limit must be an integer",
			})
		} else {
			q.Limit = n
		}
	}
	if raw := values.Get("force_refresh"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			fields = append(fields, validation.FieldError{
				Field: "force_refresh", Tag: "boolean", Message: "force_refresh must be true or false",
			})
		} else {
			q.ForceRefresh = b
		}
	}
	if allowAlgorithm {
		q.Algorithm = strings.TrimSpace(values.Get("algorithm"))
	}
	if len(fields) > 0 {
		return recommend.Request{}, &validation.Error{Fields: fields}
	}

	if err := validation.ValidateStruct(q); err != nil {
		return recommend.Request{}, err
	}
	if q.Limit > h.limits.MaxLimit {
		return recommend.Request{}, &validation.Error{Fields: []validation.FieldError{{
			Field:   "limit",
			Tag:     "max",
			Param:   strconv.Itoa(h.limits.MaxLimit),
			Message: fmt.Sprintf("limit must be at most %d", h.limits.MaxLimit),
		}}}
	}

	return recommend.Request{
		Limit:        q.Limit,
		Forum:        q.Forum,
		ForceRefresh: q.ForceRefresh,
		Algorithm:    q.Algorithm,
		RequestID:    middleware.GetRequestID(r.Context()),
	}, nil
}

// GetStats handles GET /api/v1/recommendations/stats.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	ctx, cancel := h.requestContext(r)
	defer cancel()

	stats, err := h.engine.Stats(ctx)
	if err != nil {
		rw.HandleError(err)
		return
	}
	rw.Success(stats)
}

// ClickRequest is the body of POST /api/v1/recommendations/click.
type ClickRequest struct {
	ThreadID string `json:"thread_id" validate:"required,thread_id"`
}

// RecordClick handles POST /api/v1/recommendations/click. Clicked threads
// are excluded from the tag branch until the next forced refresh.
func (h *Handler) RecordClick(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req ClickRequest
	if err := decodeJSON(r, &req); err != nil {
		rw.HandleError(err)
		return
	}
	req.ThreadID = strings.TrimSpace(req.ThreadID)
	if err := validation.ValidateStruct(req); err != nil {
		rw.HandleError(err)
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	if err := h.engine.RecordClick(ctx, req.ThreadID); err != nil {
		rw.HandleError(err)
		return
	}
	rw.Success(map[string]any{"thread_id": req.ThreadID, "clicked": true})
}

// ClearClicked handles DELETE /api/v1/recommendations/clicked.
func (h *Handler) ClearClicked(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	ctx, cancel := h.requestContext(r)
	defer cancel()

	if err := h.engine.ClearClicked(ctx); err != nil {
		rw.HandleError(err)
		return
	}
	rw.Success(map[string]bool{"cleared": true})
}

// GetCacheStats handles GET /api/v1/recommendations/cache.
func (h *Handler) GetCacheStats(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, r, h.engine.CacheStats())
}

// ClearCache handles DELETE /api/v1/recommendations/cache and returns the
// emptied cache's stats.
func (h *Handler) ClearCache(w http.ResponseWriter, r *http.Request) {
	h.engine.ClearSimilarityCache()
	logging.Ctx(r.Context()).Info().Msg("Similarity cache cleared via API")
	WriteSuccess(w, r, h.engine.CacheStats())
}

// ResetState handles POST /api/v1/recommendations/reset.
func (h *Handler) ResetState(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	ctx, cancel := h.requestContext(r)
	defer cancel()

	if err := h.engine.ResetState(ctx); err != nil {
		rw.HandleError(err)
		return
	}
	rw.Success(map[string]bool{"reset": true})
}
