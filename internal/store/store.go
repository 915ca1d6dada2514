// Threadrec - Forum Thread Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threadrec

// Package store persists threads, reading history, dislikes, settings and
// the clicked set for the recommendation engine.
//
// BadgerStore is the only backend. It runs on disk or, with
// Config.InMemory, entirely in memory for tests and ephemeral deployments.
// Breaker decorates any Backend with a circuit breaker so a failing disk
// turns into fast ErrStoreUnavailable errors instead of piling up requests.
package store

import (
	"context"
	"errors"

	"github.com/tomtom215/threadrec/internal/recommend"
)

// ErrStoreUnavailable is returned while the circuit breaker is open.
var ErrStoreUnavailable = errors.New("store unavailable")

// Backend is the engine's collaborator surface plus the write and
// maintenance operations used by the API and supervisor.
type Backend interface {
	recommend.Store

	// PutThreads upserts threads by ThreadID.
	PutThreads(ctx context.Context, threads []recommend.Thread) (int, error)

	// AppendReadEvents stores events in arrival order.
	AppendReadEvents(ctx context.Context, events []recommend.ReadEvent) (int, error)

	// Ping reports whether the backend can serve reads.
	Ping(ctx context.Context) error

	Close() error
}
