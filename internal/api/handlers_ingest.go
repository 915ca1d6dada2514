// Threadrec - Forum Thread Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threadrec

package api

import (
	"net/http"

	"github.com/tomtom215/threadrec/internal/logging"
	"github.com/tomtom215/threadrec/internal/metrics"
	"github.com/tomtom215/threadrec/internal/recommend"
	"github.com/tomtom215/threadrec/internal/validation"
)

type threadBatch struct {
	Threads []recommend.Thread `json:"threads" validate:"required,min=1,max=1000,dive"`
}

type eventBatch struct {
	Events []recommend.ReadEvent `json:"events" validate:"required,min=1,max=5000,dive"`
}

// IngestResponse reports how many records were stored.
type IngestResponse struct {
	Accepted int `json:"accepted"`
}

// IngestThreads handles POST /api/v1/threads. The body is a JSON array of
// threads; existing ids are overwritten. Threads without created_at are
// stamped with the ingest time.
func (h *Handler) IngestThreads(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var batch threadBatch
	if err := decodeJSON(r, &batch.Threads); err != nil {
		rw.HandleError(err)
		return
	}
	if err := validation.ValidateStruct(batch); err != nil {
		rw.HandleError(err)
		return
	}

	now := h.nowFunc()
	for i := range batch.Threads {
		if batch.Threads[i].CreatedAt.IsZero() {
			batch.Threads[i].CreatedAt = now
		}
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	n, err := h.store.PutThreads(ctx, batch.Threads)
	if err != nil {
		rw.HandleError(err)
		return
	}
	metrics.RecordIngest("thread", n)
	logging.Ctx(r.Context()).Debug().Int("accepted", n).Msg("Threads ingested")
	rw.Created(IngestResponse{Accepted: n})
}

// IngestEvents handles POST /api/v1/events. The body is a JSON array of
// finalized read events.
func (h *Handler) IngestEvents(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var batch eventBatch
	if err := decodeJSON(r, &batch.Events); err != nil {
		rw.HandleError(err)
		return
	}
	if err := validation.ValidateStruct(batch); err != nil {
		rw.HandleError(err)
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	n, err := h.store.AppendReadEvents(ctx, batch.Events)
	if err != nil {
		rw.HandleError(err)
		return
	}
	metrics.RecordIngest("event", n)
	logging.Ctx(r.Context()).Debug().Int("accepted", n).Msg("Read events ingested")
	rw.Created(IngestResponse{Accepted: n})
}
