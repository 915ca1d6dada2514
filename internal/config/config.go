// Threadrec - Forum Thread Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threadrec

package config

import (
	"fmt"
	"time"
	_ "time/tzdata" // embedded zone database for recommend.timezone

	"github.com/tomtom215/threadrec/internal/recommend"
	"github.com/tomtom215/threadrec/internal/store"
)

// Config is the full process configuration.
type Config struct {
	Server      ServerConfig      `koanf:"server"`
	Store       StoreConfig       `koanf:"store"`
	Recommend   RecommendConfig   `koanf:"recommend"`
	Security    SecurityConfig    `koanf:"security"`
	Logging     LoggingConfig     `koanf:"logging"`
	Maintenance MaintenanceConfig `koanf:"maintenance"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"gt=0"`
	IdleTimeout     time.Duration `koanf:"idle_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
}

// Addr returns host:port for http.Server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// StoreConfig selects and tunes the badger backend.
type StoreConfig struct {
	Path           string  `koanf:"path"`
	InMemory       bool    `koanf:"in_memory"`
	SyncWrites     bool    `koanf:"sync_writes"`
	GCDiscardRatio float64 `koanf:"gc_discard_ratio" validate:"gt=0,lt=1"`

	Breaker store.BreakerConfig `koanf:"breaker"`
}

// Badger returns the store.Config for Open.
func (s StoreConfig) Badger() store.Config {
	return store.Config{
		Path:           s.Path,
		InMemory:       s.InMemory,
		SyncWrites:     s.SyncWrites,
		GCDiscardRatio: s.GCDiscardRatio,
	}
}

// RecommendConfig exposes the engine tunables operators are expected to
// change. Everything else keeps recommend.DefaultConfig values.
type RecommendConfig struct {
	// DefaultLimit and MaxLimit bound the ?limit= query parameter.
	DefaultLimit int `koanf:"default_limit" validate:"min=1"`
	MaxLimit     int `koanf:"max_limit" validate:"min=1"`

	CacheCapacity        int           `koanf:"cache_capacity" validate:"min=1"`
	Seed                 int64         `koanf:"seed"`
	Timezone             string        `koanf:"timezone"`
	CandidateWindow      time.Duration `koanf:"candidate_window" validate:"gt=0"`
	MinCandidates        int           `koanf:"min_candidates" validate:"min=0"`
	MaxCandidates        int           `koanf:"max_candidates" validate:"min=1"`
	MaxScored            int           `koanf:"max_scored" validate:"min=1"`
	DecayDays            float64       `koanf:"decay_days" validate:"gt=0"`
	ContentShare         float64       `koanf:"content_share" validate:"gte=0,lte=1"`
	TagShare             float64       `koanf:"tag_share" validate:"gte=0,lte=1"`
	AuthorAffinityWeight float64       `koanf:"author_affinity_weight" validate:"gte=0,lte=1"`
}

// Engine builds the engine configuration from the defaults plus these
// overrides.
func (r RecommendConfig) Engine() (*recommend.Config, error) {
	cfg := recommend.DefaultConfig()
	cfg.CacheCapacity = r.CacheCapacity
	cfg.Seed = r.Seed
	cfg.AuthorAffinityWeight = r.AuthorAffinityWeight
	cfg.Prefilter.Window = r.CandidateWindow
	cfg.Prefilter.MinCandidates = r.MinCandidates
	cfg.Prefilter.MaxCandidates = r.MaxCandidates
	cfg.Ranking.MaxScored = r.MaxScored
	cfg.Profile.DecayDays = r.DecayDays
	cfg.Mixer.ContentShare = r.ContentShare
	cfg.Mixer.TagShare = r.TagShare

	if r.Timezone != "" {
		loc, err := time.LoadLocation(r.Timezone)
		if err != nil {
			return nil, fmt.Errorf("recommend.timezone %q: %w", r.Timezone, err)
		}
		cfg.Location = loc
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("recommend: %w", err)
	}
	return cfg, nil
}

// SecurityConfig holds CORS and rate limiting.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs" validate:"min=1"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window" validate:"gt=0"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	MaxBodyBytes      int64         `koanf:"max_body_bytes" validate:"min=1024"`
}

// LoggingConfig mirrors logging.Config without the writer.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// MaintenanceConfig schedules background services. A zero interval
// disables the corresponding job.
type MaintenanceConfig struct {
	CacheReportInterval time.Duration `koanf:"cache_report_interval" validate:"min=0"`
	CacheFlushInterval  time.Duration `koanf:"cache_flush_interval" validate:"min=0"`
	ValueLogGCInterval  time.Duration `koanf:"value_log_gc_interval" validate:"min=0"`
}

func defaultConfig() *Config {
	engine := recommend.DefaultConfig()
	badger := store.DefaultConfig()

	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8787,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     2 * time.Minute,
			ShutdownTimeout: 10 * time.Second,
		},
		Store: StoreConfig{
			Path:           badger.Path,
			SyncWrites:     badger.SyncWrites,
			GCDiscardRatio: badger.GCDiscardRatio,
			Breaker:        store.DefaultBreakerConfig(),
		},
		Recommend: RecommendConfig{
			DefaultLimit:         recommend.DefaultLimit,
			MaxLimit:             50,
			CacheCapacity:        engine.CacheCapacity,
			Seed:                 engine.Seed,
			CandidateWindow:      engine.Prefilter.Window,
			MinCandidates:        engine.Prefilter.MinCandidates,
			MaxCandidates:        engine.Prefilter.MaxCandidates,
			MaxScored:            engine.Ranking.MaxScored,
			DecayDays:            engine.Profile.DecayDays,
			ContentShare:         engine.Mixer.ContentShare,
			TagShare:             engine.Mixer.TagShare,
			AuthorAffinityWeight: engine.AuthorAffinityWeight,
		},
		Security: SecurityConfig{
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   120,
			RateLimitWindow: time.Minute,
			MaxBodyBytes:    8 << 20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Maintenance: MaintenanceConfig{
			CacheReportInterval: 30 * time.Second,
			ValueLogGCInterval:  10 * time.Minute,
		},
	}
}
