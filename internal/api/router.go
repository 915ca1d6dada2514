// Threadrec - Forum Thread Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threadrec

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/threadrec/internal/middleware"
)

// NewRouter wires h behind the middleware stack described in the package
// documentation. A nil mw uses DefaultMiddlewareConfig.
func NewRouter(h *Handler, mw *Middleware) http.Handler {
	if mw == nil {
		mw = NewMiddleware(nil)
	}

	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(chiMiddleware(middleware.RequestID))
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(mw.CORS())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusNotFound, ErrCodeNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Method not allowed")
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(SecurityHeaders())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))

		// Health stays outside the rate-limited group.
		r.Get("/health", h.Health)

		r.Group(func(r chi.Router) {
			r.Use(mw.RateLimit("api"))
			r.Use(mw.MaxBody())

			r.Route("/recommendations", func(r chi.Router) {
				r.Get("/", h.GetRecommendations)
				r.Get("/content", h.GetContentRecommendations)
				r.Get("/tags", h.GetTagRecommendations)
				r.Get("/mixed", h.GetMixedRecommendations)
				r.Get("/stats", h.GetStats)
				r.Post("/click", h.RecordClick)
				r.Delete("/clicked", h.ClearClicked)
				r.Get("/cache", h.GetCacheStats)
				r.Delete("/cache", h.ClearCache)
				r.Post("/reset", h.ResetState)
			})

			r.Route("/dislikes", func(r chi.Router) {
				r.Get("/", h.ListDislikes)
				r.Post("/", h.AddDislikes)
				r.Delete("/{threadID}", h.RemoveDislike)
			})

			r.Get("/settings", h.GetSettings)
			r.Put("/settings", h.UpdateSettings)

			r.Post("/threads", h.IngestThreads)
			r.Post("/events", h.IngestEvents)
		})
	})

	return r
}
