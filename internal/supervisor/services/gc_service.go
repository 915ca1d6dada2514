// Threadrec - Forum Thread Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threadrec

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// maxGCPasses bounds the rewrite passes run per tick.
const maxGCPasses = 10

// GarbageCollector runs one value log GC pass and reports whether a file
// was rewritten. Satisfied by *store.BadgerStore.
type GarbageCollector interface {
	RunGC() (bool, error)
}

// ValueLogGCService calls RunGC on an interval. Each tick repeats the pass
// while files keep being rewritten, up to maxGCPasses.
type ValueLogGCService struct {
	gc       GarbageCollector
	interval time.Duration
	logger   zerolog.Logger
	name     string
}

// NewValueLogGCService creates the service. A non-positive interval
// becomes 10 minutes.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewValueLogGCService(gc GarbageCollector, interval time.Duration, logger zerolog.Logger) *ValueLogGCService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &ValueLogGCService{
		gc:       gc,
		interval: interval,
		logger:   logger.With().Str("service", "value-log-gc").Logger(),
		name:     "value-log-gc",
	}
}

// Serve implements suture.Service. GC errors are logged and retried on the
// next tick rather than failing the service.
func (s *ValueLogGCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.collect(ctx)
		}
	}
}

func (s *ValueLogGCService) collect(ctx context.Context) {
	start := time.Now()
	passes := 0
	for passes < maxGCPasses && ctx.Err() == nil {
		rewritten, err := s.gc.RunGC()
		if err != nil {
			s.logger.Warn().Err(err).Int("passes", passes).Msg("value log GC failed")
			return
		}
		if !rewritten {
			break
		}
		passes++
	}
	if passes > 0 {
		s.logger.Info().Int("passes", passes).Dur("duration", time.Since(start)).Msg("value log GC rewrote files")
	}
}

// String implements fmt.Stringer for suture event logs.
func (s *ValueLogGCService) String() string {
	return s.name
}
