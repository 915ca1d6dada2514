// Threadrec - Forum Thread Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threadrec

package api

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/threadrec/internal/logging"
	"github.com/tomtom215/threadrec/internal/recommend"
	"github.com/tomtom215/threadrec/internal/validation"
)

// DislikeRequest is the body of POST /api/v1/dislikes. Exactly one of
// ThreadID and ThreadIDs must be set.
type DislikeRequest struct {
	ThreadID  string   `json:"thread_id" validate:"required_without=ThreadIDs,omitempty,thread_id"`
	ThreadIDs []string `json:"thread_ids" validate:"excluded_with=ThreadID,omitempty,min=1,max=500,dive,thread_id"`
	Reason    string   `json:"reason" validate:"max=500"`
}

// DislikeBatchResponse reports a batch dislike.
type DislikeBatchResponse struct {
	Requested int                    `json:"requested"`
	Added     int                    `json:"added"`
	Errors    []recommend.BatchError `json:"errors"`
}

// ListDislikes handles GET /api/v1/dislikes.
func (h *Handler) ListDislikes(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	ctx, cancel := h.requestContext(r)
	defer cancel()

	entries, err := h.engine.ListDislikes(ctx)
	if err != nil {
		rw.HandleError(err)
		return
	}
	rw.Success(map[string]any{
		"dislikes": entries,
		"count":    len(entries),
	})
}

// AddDislikes handles POST /api/v1/dislikes for a single thread_id or a
// thread_ids batch. A single new dislike answers 201, a repeated one 200.
func (h *Handler) AddDislikes(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req DislikeRequest
	if err := decodeJSON(r, &req); err != nil {
		rw.HandleError(err)
		return
	}
	if err := validateDislikeRequest(&req); err != nil {
		rw.HandleError(err)
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	if req.ThreadID != "" {
		added, err := h.engine.AddDislike(ctx, req.ThreadID, req.Reason)
		if err != nil {
			rw.HandleError(err)
			return
		}
		data := map[string]any{"thread_id": req.ThreadID, "added": added}
		if added {
			rw.Created(data)
		} else {
			rw.Success(data)
		}
		return
	}

	added, failures := h.engine.AddDislikes(ctx, req.ThreadIDs, req.Reason)
	if failures == nil {
		failures = []recommend.BatchError{}
	}
	if len(failures) > 0 {
		logging.Ctx(r.Context()).Warn().
			Int("requested", len(req.ThreadIDs)).
			Int("failed", len(failures)).
			Msg("Batch dislike partially failed")
	}
	rw.Success(DislikeBatchResponse{
		Requested: len(req.ThreadIDs),
		Added:     added,
		Errors:    failures,
	})
}

func validateDislikeRequest(req *DislikeRequest) error {
	req.ThreadID = strings.TrimSpace(req.ThreadID)
	for i := range req.ThreadIDs {
		req.ThreadIDs[i] = strings.TrimSpace(req.ThreadIDs[i])
	}
	return validation.ValidateStruct(req)
}

// RemoveDislike handles DELETE /api/v1/dislikes/{threadID}.
func (h *Handler) RemoveDislike(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	threadID, err := url.PathUnescape(chi.URLParam(r, "threadID"))
	if err != nil || strings.TrimSpace(threadID) == "" {
		rw.BadRequest("Invalid thread ID")
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	if err := h.engine.RemoveDislike(ctx, threadID); err != nil {
		rw.HandleError(err)
		return
	}
	rw.Success(map[string]any{"thread_id": threadID, "removed": true})
}
