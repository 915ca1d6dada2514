// Threadrec - Forum Thread Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threadrec

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/threadrec/internal/metrics"
	"github.com/tomtom215/threadrec/internal/recommend"
)

// CacheEngine is the part of recommend.Engine the service maintains.
type CacheEngine interface {
	CacheStats() recommend.CacheStats
	ClearSimilarityCache()
}

// CacheObserver receives cache snapshots. Satisfied by metrics.Recorder.
type CacheObserver interface {
	ObserveCache(stats recommend.CacheStats)
}

// CacheMaintenanceConfig schedules the service. A zero interval disables
// that job.
type CacheMaintenanceConfig struct {
	ReportInterval time.Duration
	FlushInterval  time.Duration
}

// CacheMaintenanceService reports similarity cache statistics and
// optionally flushes the cache periodically.
type CacheMaintenanceService struct {
	engine   CacheEngine
	observer CacheObserver
	config   CacheMaintenanceConfig
	logger   zerolog.Logger
	name     string
}

// NewCacheMaintenanceService creates the service.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewCacheMaintenanceService(engine CacheEngine, observer CacheObserver, cfg CacheMaintenanceConfig, logger zerolog.Logger) *CacheMaintenanceService {
	return &CacheMaintenanceService{
		engine:   engine,
		observer: observer,
		config:   cfg,
		logger:   logger.With().Str("service", "cache-maintenance").Logger(),
		name:     "cache-maintenance",
	}
}

// Serve implements suture.Service.
func (s *CacheMaintenanceService) Serve(ctx context.Context) error {
	s.logger.Info().
		Dur("report_interval", s.config.ReportInterval).
		Dur("flush_interval", s.config.FlushInterval).
		Msg("cache maintenance starting")

	// A nil channel never fires, which disables the job.
	var reportC, flushC <-chan time.Time
	if s.config.ReportInterval > 0 {
		t := time.NewTicker(s.config.ReportInterval)
		defer t.Stop()
		reportC = t.C
	}
	if s.config.FlushInterval > 0 {
		t := time.NewTicker(s.config.FlushInterval)
		defer t.Stop()
		flushC = t.C
	}

	s.report()
	for {
		select {
		case <-ctx.Done():
			s.report()
			s.logger.Info().Msg("cache maintenance stopping")
			return ctx.Err()

		case <-reportC:
			s.report()

		case <-flushC:
			s.flush()
		}
	}
}

func (s *CacheMaintenanceService) report() {
	if s.observer == nil {
		return
	}
	s.observer.ObserveCache(s.engine.CacheStats())
}

func (s *CacheMaintenanceService) flush() {
	before := s.engine.CacheStats()
	s.engine.ClearSimilarityCache()
	metrics.SimilarityCacheFlushes.Inc()
	s.logger.Debug().Int("entries", before.Size).Msg("similarity cache flushed")
}

// String implements fmt.Stringer for suture event logs.
func (s *CacheMaintenanceService) String() string {
	return s.name
}
