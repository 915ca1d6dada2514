// Threadrec - Forum Thread Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threadrec

package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/tomtom215/threadrec/internal/logging"
	"github.com/tomtom215/threadrec/internal/recommend"
	"github.com/tomtom215/threadrec/internal/validation"
)

// SettingsRequest is the body of PUT /api/v1/settings. It replaces the
// stored settings entirely.
type SettingsRequest struct {
	DislikedTags        []string `json:"disliked_tags" validate:"max=100,dive,max=64"`
	PreferredTags       []string `json:"preferred_tags" validate:"max=100,dive,max=64"`
	RecommendationCount int      `json:"recommendation_count" validate:"gte=0"`
	Algorithm           string   `json:"algorithm" validate:"omitempty,algorithm"`
}

// GetSettings handles GET /api/v1/settings.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	ctx, cancel := h.requestContext(r)
	defer cancel()

	settings, err := h.engine.Settings(ctx)
	if err != nil {
		rw.HandleError(err)
		return
	}
	rw.Success(normalizeSettings(settings))
}

// UpdateSettings handles PUT /api/v1/settings.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req SettingsRequest
	if err := decodeJSON(r, &req); err != nil {
		rw.HandleError(err)
		return
	}
	if err := validation.ValidateStruct(req); err != nil {
		rw.HandleError(err)
		return
	}
	if req.RecommendationCount > h.limits.MaxLimit {
		rw.ValidationError(&validation.Error{Fields: []validation.FieldError{{
			Field:   "recommendation_count",
			Tag:     "max",
			Param:   strconv.Itoa(h.limits.MaxLimit),
			Message: fmt.Sprintf("recommendation_count must be at most %d", h.limits.MaxLimit),
		}}})
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	saved, err := h.engine.UpdateSettings(ctx, recommend.Settings{
		DislikedTags:        req.DislikedTags,
		PreferredTags:       req.PreferredTags,
		RecommendationCount: req.RecommendationCount,
		Algorithm:           req.Algorithm,
	})
	if err != nil {
		rw.HandleError(err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Int("disliked_tags", len(saved.DislikedTags)).
		Int("preferred_tags", len(saved.PreferredTags)).
		Str("algorithm", saved.Algorithm).
		Msg("Settings updated")
	rw.Success(normalizeSettings(saved))
}

// normalizeSettings renders nil tag lists as empty JSON arrays.
//
//nolint:gocritic // hugeParam: settings passed by value
func normalizeSettings(s recommend.Settings) recommend.Settings {
	if s.DislikedTags == nil {
		s.DislikedTags = []string{}
	}
	if s.PreferredTags == nil {
		s.PreferredTags = []string{}
	}
	return s
}
