// Threadrec - Forum Thread Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threadrec

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/threadrec/internal/metrics"
	"github.com/tomtom215/threadrec/internal/recommend"
)

// BreakerConfig tunes the store circuit breaker.
type BreakerConfig struct {
	// MaxRequests is the number of trial calls allowed while half-open.
	MaxRequests uint32 `koanf:"max_requests" validate:"min=1"`

	// Interval resets the failure counts while closed.
	Interval time.Duration `koanf:"interval" validate:"min=0"`

	// Timeout is how long the breaker stays open before probing again.
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`

	// MinRequests and FailureRatio decide when to trip.
	MinRequests  uint32  `koanf:"min_requests" validate:"min=1"`
	FailureRatio float64 `koanf:"failure_ratio" validate:"gt=0,lte=1"`
}

// DefaultBreakerConfig opens after 60% failures over at least 10 calls.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:  3,
		Interval:     time.Minute,
		Timeout:      30 * time.Second,
		MinRequests:  10,
		FailureRatio: 0.6,
	}
}

// Breaker wraps a Backend with a circuit breaker. Reads and writes share
// one breaker since they hit the same database.
type Breaker struct {
	next   Backend
	cb     *gobreaker.CircuitBreaker[any]
	name   string
	logger zerolog.Logger
}

var _ Backend = (*Breaker)(nil)

// NewBreaker decorates next.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewBreaker(next Backend, cfg BreakerConfig, logger zerolog.Logger) *Breaker {
	name := "store"
	logger = logger.With().Str("component", "store_breaker").Logger()

	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)

	b := &Breaker{next: next, name: name, logger: logger}
	b.cb = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			trip := ratio >= cfg.FailureRatio
			if trip {
				logger.Warn().Uint32("failures", counts.TotalFailures).Float64("failure_rate", ratio*100).Msg("Opening store circuit")
			}
			return trip
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr, toStr := stateToString(from), stateToString(to)
			logger.Info().Str("from", fromStr).Str("to", toStr).Msg("Store circuit state transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
		IsSuccessful: isSuccessful,
	})
	return b
}

// isSuccessful keeps caller-side outcomes from tripping the breaker.
func isSuccessful(err error) bool {
	return err == nil ||
		errors.Is(err, recommend.ErrNotFound) ||
		errors.Is(err, recommend.ErrInvalidThreadID) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// State returns the breaker state name: closed, half-open or open.
func (b *Breaker) State() string {
	return stateToString(b.cb.State())
}

// call runs fn through the breaker and converts rejections into
// ErrStoreUnavailable.
func call[T any](b *Breaker, op string, fn func() (T, error)) (T, error) {
	result, err := b.cb.Execute(func() (any, error) {
		return fn()
	})

	var zero T
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
			b.logger.Warn().Str("op", op).Err(err).Msg("Store call rejected")
			return zero, fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
		}
		if isSuccessful(err) {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
			metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(b.name).Set(float64(b.cb.Counts().ConsecutiveFailures))
		}
		return zero, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(b.name).Set(0)

	if result == nil {
		return zero, nil
	}
	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("%s: circuit breaker: unexpected result type %T", op, result)
	}
	return typed, nil
}

func exec(b *Breaker, op string, fn func() error) error {
	_, err := call(b, op, func() (any, error) {
		return nil, fn()
	})
	return err
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

func (b *Breaker) AllThreads(ctx context.Context) ([]recommend.Thread, error) {
	return call(b, "all_threads", func() ([]recommend.Thread, error) {
		return b.next.AllThreads(ctx)
	})
}

func (b *Breaker) AllReadEvents(ctx context.Context) ([]recommend.ReadEvent, error) {
	return call(b, "all_events", func() ([]recommend.ReadEvent, error) {
		return b.next.AllReadEvents(ctx)
	})
}

func (b *Breaker) AllDislikedThreads(ctx context.Context) ([]recommend.DislikedThread, error) {
	return call(b, "all_disliked", func() ([]recommend.DislikedThread, error) {
		return b.next.AllDislikedThreads(ctx)
	})
}

func (b *Breaker) GetThread(ctx context.Context, threadID string) (recommend.Thread, error) {
	return call(b, "get_thread", func() (recommend.Thread, error) {
		return b.next.GetThread(ctx, threadID)
	})
}

func (b *Breaker) PutDisliked(ctx context.Context, d recommend.DislikedThread) (bool, error) {
	return call(b, "put_disliked", func() (bool, error) {
		return b.next.PutDisliked(ctx, d)
	})
}

func (b *Breaker) DeleteDisliked(ctx context.Context, threadID string) error {
	return exec(b, "delete_disliked", func() error {
		return b.next.DeleteDisliked(ctx, threadID)
	})
}

func (b *Breaker) GetSettings(ctx context.Context) (recommend.Settings, error) {
	return call(b, "get_settings", func() (recommend.Settings, error) {
		return b.next.GetSettings(ctx)
	})
}

func (b *Breaker) SaveSettings(ctx context.Context, s recommend.Settings) error {
	return exec(b, "save_settings", func() error {
		return b.next.SaveSettings(ctx, s)
	})
}

func (b *Breaker) ClickedIDs(ctx context.Context) ([]string, error) {
	return call(b, "clicked_ids", func() ([]string, error) {
		return b.next.ClickedIDs(ctx)
	})
}

func (b *Breaker) AddClicked(ctx context.Context, threadID string) error {
	return exec(b, "add_clicked", func() error {
		return b.next.AddClicked(ctx, threadID)
	})
}

func (b *Breaker) ClearClicked(ctx context.Context) error {
	return exec(b, "clear_clicked", func() error {
		return b.next.ClearClicked(ctx)
	})
}

func (b *Breaker) PutThreads(ctx context.Context, threads []recommend.Thread) (int, error) {
	return call(b, "put_threads", func() (int, error) {
		return b.next.PutThreads(ctx, threads)
	})
}

func (b *Breaker) AppendReadEvents(ctx context.Context, events []recommend.ReadEvent) (int, error) {
	return call(b, "append_events", func() (int, error) {
		return b.next.AppendReadEvents(ctx, events)
	})
}

// Ping bypasses the breaker so health checks always see the real backend.
func (b *Breaker) Ping(ctx context.Context) error {
	return b.next.Ping(ctx)
}

func (b *Breaker) Close() error {
	return b.next.Close()
}
