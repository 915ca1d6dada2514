// Threadrec - Forum Thread Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threadrec

package recommend

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Note: This package has no dependencies on other internal packages.
// Collaborators are injected through the Store interface so the storage
// layer can import recommend types without cycles.

// Storage supplies the read-only thread, event and dislike snapshots and
// persists dislike changes.
type Storage interface {
	AllThreads(ctx context.Context) ([]Thread, error)
	AllReadEvents(ctx context.Context) ([]ReadEvent, error)
	AllDislikedThreads(ctx context.Context) ([]DislikedThread, error)

	// GetThread returns ErrNotFound for unknown ids.
	GetThread(ctx context.Context, threadID string) (Thread, error)

	// PutDisliked stores d and reports whether it was newly added.
	PutDisliked(ctx context.Context, d DislikedThread) (bool, error)

	// DeleteDisliked returns ErrNotFound if threadID was not disliked.
	DeleteDisliked(ctx context.Context, threadID string) error
}

// SettingsStore persists the reader's preferences.
type SettingsStore interface {
	GetSettings(ctx context.Context) (Settings, error)
	SaveSettings(ctx context.Context, s Settings) error
}

// ClickedSet persists the ids of recommendations the reader opened.
type ClickedSet interface {
	ClickedIDs(ctx context.Context) ([]string, error)
	AddClicked(ctx context.Context, threadID string) error
	ClearClicked(ctx context.Context) error
}

// Store is the full collaborator surface used by the engine.
type Store interface {
	Storage
	SettingsStore
	ClickedSet
}

// Recorder receives per-request measurements. Implementations must be
// safe for concurrent use.
type Recorder interface {
	ObserveBranch(branch string, d time.Duration, results int, err error)
	ObservePrefilter(total, kept int)
	ObserveCache(stats CacheStats)
}

type nopRecorder struct{}

func (nopRecorder) ObserveBranch(string, time.Duration, int, error) {}
func (nopRecorder) ObservePrefilter(int, int)                       {}
func (nopRecorder) ObserveCache(CacheStats)                         {}

// Branch names reported to the Recorder and in logs.
const (
	BranchContent = "content"
	BranchTags    = "tags"
	BranchMixed   = "mixed"
	BranchPopular = "popular"
)

// DefaultLimit is used when a request carries no positive limit.
const DefaultLimit = 10

// Engine produces thread recommendations from collaborator snapshots.
// It is safe for concurrent use.
type Engine struct {
	config *Config
	logger zerolog.Logger
	store  Store

	cache *SimilarityCache

	// Random source for force-refresh shuffling (protected by rngMu)
	rng   *rand.Rand
	rngMu sync.Mutex

	now      func() time.Time
	recorder Recorder

	requestCount atomic.Int64
	errorCount   atomic.Int64
}

// NewEngine creates a recommendation engine backed by store.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, store Store, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if store == nil {
		return nil, ErrNoStorage
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = 42
	}

	return &Engine{
		config:   cfg.Clone(),
		logger:   logger.With().Str("component", "recommend").Logger(),
		store:    store,
		cache:    NewSimilarityCache(cfg.CacheCapacity),
		rng:      rand.New(rand.NewSource(seed)), //nolint:gosec // math/rand is fine for recommendation shuffling
		now:      time.Now,
		recorder: nopRecorder{},
	}, nil
}

// SetClock replaces the time source. Intended for tests.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

// SetRecorder installs a measurement sink.
func (e *Engine) SetRecorder(r Recorder) {
	if r == nil {
		r = nopRecorder{}
	}
	e.recorder = r
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() *Config {
	return e.config.Clone()
}

// shuffle is a Shuffler drawing from the engine's guarded random source.
func (e *Engine) shuffle(n int, swap func(i, j int)) {
	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	e.rng.Shuffle(n, swap)
}

// snapshot is the immutable per-request view of collaborator data.
type snapshot struct {
	threads  []Thread
	events   []ReadEvent
	disliked []DislikedThread
	settings Settings
	clicked  idSet
	now      time.Time
}

// load fetches one consistent snapshot from the collaborators.
func (e *Engine) load(ctx context.Context) (*snapshot, error) {
	threads, err := e.store.AllThreads(ctx)
	if err != nil {
		return nil, fmt.Errorf("load threads: %w", err)
	}
	events, err := e.store.AllReadEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("load read events: %w", err)
	}
	disliked, err := e.store.AllDislikedThreads(ctx)
	if err != nil {
		return nil, fmt.Errorf("load disliked threads: %w", err)
	}
	settings, err := e.store.GetSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	clicked, err := e.store.ClickedIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("load clicked ids: %w", err)
	}
	return &snapshot{
		threads:  threads,
		events:   events,
		disliked: disliked,
		settings: settings,
		clicked:  newIDSet(clicked),
		now:      e.now(),
	}, nil
}

// RecommendByContent runs the multi-factor content branch.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) RecommendByContent(ctx context.Context, req Request) ([]ScoredCandidate, error) {
	return e.run(ctx, BranchContent, req, func(snap *snapshot, req Request) []ScoredCandidate {
		return e.contentBranch(snap, req)
	})
}

// RecommendByTags runs the tag-frequency branch.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) RecommendByTags(ctx context.Context, req Request) ([]ScoredCandidate, error) {
	return e.run(ctx, BranchTags, req, func(snap *snapshot, req Request) []ScoredCandidate {
		return e.tagBranch(snap, req)
	})
}

// RecommendMixed merges the content and tag branches. On force refresh
// the clicked set is cleared first.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) RecommendMixed(ctx context.Context, req Request) ([]ScoredCandidate, error) {
	if req.ForceRefresh {
		e.clearClickedForRefresh(ctx, req)
	}
	return e.run(ctx, BranchMixed, req, func(snap *snapshot, req Request) []ScoredCandidate {
		return e.mixed(snap, req)
	})
}

// Recommend dispatches on the algorithm named by the request, or by the
// reader's settings when the request names none.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) Recommend(ctx context.Context, req Request) ([]ScoredCandidate, error) {
	var requested Algorithm
	if req.Algorithm != "" {
		alg, err := ParseAlgorithm(req.Algorithm)
		if err != nil {
			return []ScoredCandidate{}, err
		}
		requested = alg
	}

	settings, err := e.store.GetSettings(ctx)
	if err != nil {
		e.errorCount.Add(1)
		logger := e.requestLogger(req)
		logger.Error().Err(err).Msg("failed to load settings")
		return []ScoredCandidate{}, fmt.Errorf("load settings: %w", err)
	}

	alg := requested
	if req.Algorithm == "" {
		alg, err = ParseAlgorithm(settings.Algorithm)
		if err != nil {
			logger := e.requestLogger(req)
			logger.Warn().Err(err).Msg("ignoring invalid algorithm setting")
			alg = AlgorithmMixed
		}
	}

	switch alg {
	case AlgorithmContent:
		return e.RecommendByContent(ctx, req)
	case AlgorithmBehavior:
		return e.RecommendByTags(ctx, req)
	case AlgorithmPopular:
		if req.ForceRefresh {
			e.clearClickedForRefresh(ctx, req)
		}
		return e.run(ctx, BranchPopular, req, func(snap *snapshot, req Request) []ScoredCandidate {
			return e.popular(snap, req)
		})
	default:
		return e.RecommendMixed(ctx, req)
	}
}

// run normalizes req, loads a snapshot and executes branch. A positive
// Settings.RecommendationCount replaces the request limit for every
// branch. Collaborator failures yield an empty list and a wrapped error.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) run(ctx context.Context, name string, req Request, branch func(*snapshot, Request) []ScoredCandidate) ([]ScoredCandidate, error) {
	start := time.Now()
	e.requestCount.Add(1)

	req = e.prepareRequest(req)
	logger := e.requestLogger(req)

	snap, err := e.load(ctx)
	if err != nil {
		e.errorCount.Add(1)
		logger.Error().Err(err).Str("branch", name).Msg("failed to load recommendation data")
		e.recorder.ObserveBranch(name, time.Since(start), 0, err)
		return []ScoredCandidate{}, err
	}

	if limit := snap.settings.EffectiveLimit(req.Limit); limit != req.Limit {
		req.Limit = limit
		logger = e.requestLogger(req)
	}

	recs := branch(snap, req)
	if recs == nil {
		recs = []ScoredCandidate{}
	}

	elapsed := time.Since(start)
	e.recorder.ObserveBranch(name, elapsed, len(recs), nil)
	e.recorder.ObserveCache(e.cache.Stats())

	logger.Debug().
		Str("branch", name).
		Int("threads", len(snap.threads)).
		Int("read_events", len(snap.events)).
		Int("returned", len(recs)).
		Dur("latency", elapsed).
		Msg("recommendation complete")

	return recs, nil
}

//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) prepareRequest(req Request) Request {
	if req.Limit <= 0 {
		req.Limit = DefaultLimit
	}
	if req.Forum == "" {
		req.Forum = ForumAll
	}
	return req
}

//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) requestLogger(req Request) zerolog.Logger {
	ctx := e.logger.With().
		Str("forum", req.Forum).
		Int("limit", req.Limit).
		Bool("force_refresh", req.ForceRefresh)
	if req.RequestID != "" {
		ctx = ctx.Str("request_id", req.RequestID)
	}
	return ctx.Logger()
}

//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) clearClickedForRefresh(ctx context.Context, req Request) {
	if err := e.store.ClearClicked(ctx); err != nil {
		logger := e.requestLogger(req)
		logger.Warn().Err(err).Msg("failed to clear clicked recommendations")
	}
}

// ClearSimilarityCache drops all memoized similarity values.
func (e *Engine) ClearSimilarityCache() {
	e.cache.Clear()
	e.recorder.ObserveCache(e.cache.Stats())
	e.logger.Info().Msg("similarity cache cleared")
}

// CacheStats reports similarity cache occupancy.
func (e *Engine) CacheStats() CacheStats {
	return e.cache.Stats()
}

// RecordClick adds threadID to the clicked set.
func (e *Engine) RecordClick(ctx context.Context, threadID string) error {
	if threadID == "" {
		return ErrInvalidThreadID
	}
	if err := e.store.AddClicked(ctx, threadID); err != nil {
		return fmt.Errorf("record click: %w", err)
	}
	return nil
}

// ClearClicked empties the clicked set.
func (e *Engine) ClearClicked(ctx context.Context) error {
	if err := e.store.ClearClicked(ctx); err != nil {
		return fmt.Errorf("clear clicked: %w", err)
	}
	return nil
}

// ResetState clears the similarity cache, the clicked set, the disliked
// and preferred tags, and the recommendation count and algorithm settings.
// Dislikes of individual threads and reading history are kept.
func (e *Engine) ResetState(ctx context.Context) error {
	e.cache.Clear()

	if err := e.store.ClearClicked(ctx); err != nil {
		return fmt.Errorf("clear clicked: %w", err)
	}

	settings, err := e.store.GetSettings(ctx)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	settings.DislikedTags = nil
	settings.PreferredTags = nil
	settings.RecommendationCount = 0
	settings.Algorithm = ""
	if err := e.store.SaveSettings(ctx, settings); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}

	e.recorder.ObserveCache(e.cache.Stats())
	e.logger.Info().Msg("recommendation state reset")
	return nil
}

// Counters returns the number of handled requests and failed requests.
func (e *Engine) Counters() (requests, errors int64) {
	return e.requestCount.Load(), e.errorCount.Load()
}
