// Threadrec - Forum Thread Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threadrec

package recommend

import (
	"fmt"
	"math"
	"time"
)

// Config contains all tunables of the recommendation engine. The defaults
// reproduce the reference behavior exactly; most deployments only touch
// Seed, Location and the cache capacity.
type Config struct {
	// Prefilter bounds the working set before scoring.
	Prefilter PrefilterConfig `json:"prefilter"`

	// Profile controls behavior-profile aggregation.
	Profile ProfileConfig `json:"profile"`

	// Ranking controls thresholds, shuffling and fallback.
	Ranking RankingConfig `json:"ranking"`

	// Mixer controls the split between content and tag branches.
	Mixer MixerConfig `json:"mixer"`

	// WeightTiers maps completed-read counts to factor weights.
	// Tiers are evaluated in order; the first with Completed < MaxCompleted wins,
	// and a tier with MaxCompleted <= 0 matches everything.
	WeightTiers []WeightTier `json:"weight_tiers"`

	// AuthorAffinityWeight adds weight × author affinity to the final score.
	// Zero keeps the reference scoring unchanged.
	AuthorAffinityWeight float64 `json:"author_affinity_weight"`

	// CacheCapacity is the similarity cache eviction threshold.
	CacheCapacity int `json:"cache_capacity"`

	// Seed is the random seed for force-refresh shuffling.
	// If zero, a fixed default seed is used.
	Seed int64 `json:"seed"`

	// Location is the time zone used for hour-of-day features.
	// Nil means time.Local.
	Location *time.Location `json:"-"`
}

// PrefilterConfig bounds candidate selection.
type PrefilterConfig struct {
	// Window is how far back a thread may have been published.
	Window time.Duration `json:"window"`

	// MinCandidates triggers the relaxed tag pass when the strict pass
	// yields fewer threads.
	MinCandidates int `json:"min_candidates"`

	// MaxCandidates truncates the newest-first working set.
	MaxCandidates int `json:"max_candidates"`

	// MinContainmentLen is the shortest string that counts as a substring
	// match under strict disliked-tag matching.
	MinContainmentLen int `json:"min_containment_len"`
}

// ProfileConfig controls behavior-profile aggregation.
type ProfileConfig struct {
	// DecayDays is the exponential decay constant in days.
	DecayDays float64 `json:"decay_days"`

	// RecentWindow bounds the unweighted recent-preference pass.
	RecentWindow time.Duration `json:"recent_window"`

	TopCategories       int `json:"top_categories"`
	TopTags             int `json:"top_tags"`
	TopHours            int `json:"top_hours"`
	RecentTopCategories int `json:"recent_top_categories"`
	RecentTopTags       int `json:"recent_top_tags"`
}

// RankingConfig controls the ranker and the content branch caps.
type RankingConfig struct {
	// MaxScored caps the candidates scored per content-branch call.
	MaxScored int `json:"max_scored"`

	// ScoreThreshold is the primary survival threshold.
	ScoreThreshold float64 `json:"score_threshold"`

	// MinSurvivors relaxes the threshold to zero when fewer survive.
	MinSurvivors int `json:"min_survivors"`

	// KeepTopFraction is the share left untouched by force-refresh shuffling.
	KeepTopFraction float64 `json:"keep_top_fraction"`

	// FallbackBelow triggers backfill when fewer results remain.
	FallbackBelow int `json:"fallback_below"`

	// FallbackCount is the number of newest unread threads offered as backfill.
	FallbackCount int `json:"fallback_count"`

	// HistoryContentChars is how much stripped body text each completed
	// read contributes to the reading-history text.
	HistoryContentChars int `json:"history_content_chars"`

	// TopTagCount is the number of favorite tags the tag branch follows.
	TopTagCount int `json:"top_tag_count"`
}

// MixerConfig splits the limit between branches.
type MixerConfig struct {
	ContentShare float64 `json:"content_share"`
	TagShare     float64 `json:"tag_share"`

	// PopularOversample multiplies the limit for the popular algorithm.
	PopularOversample int `json:"popular_oversample"`
}

// DefaultConfig returns the reference configuration.
func DefaultConfig() *Config {
	return &Config{
		Prefilter: PrefilterConfig{
			Window:            30 * 24 * time.Hour,
			MinCandidates:     50,
			MaxCandidates:     500,
			MinContainmentLen: 3,
		},
		Profile: ProfileConfig{
			DecayDays:           30,
			RecentWindow:        7 * 24 * time.Hour,
			TopCategories:       5,
			TopTags:             10,
			TopHours:            6,
			RecentTopCategories: 3,
			RecentTopTags:       5,
		},
		Ranking: RankingConfig{
			MaxScored:           200,
			ScoreThreshold:      0.01,
			MinSurvivors:        5,
			KeepTopFraction:     0.5,
			FallbackBelow:       3,
			FallbackCount:       5,
			HistoryContentChars: 200,
			TopTagCount:         5,
		},
		Mixer: MixerConfig{
			ContentShare:      0.7,
			TagShare:          0.3,
			PopularOversample: 2,
		},
		WeightTiers:   DefaultWeightTiers(),
		CacheCapacity: DefaultCacheCapacity,
		Seed:          42,
	}
}

// Validate checks the configuration for values the engine cannot run with.
func (c *Config) Validate() error {
	if c.Prefilter.Window <= 0 {
		return fmt.Errorf("prefilter.window must be positive, got %v", c.Prefilter.Window)
	}
	if c.Prefilter.MaxCandidates < 1 {
		return fmt.Errorf("prefilter.max_candidates must be positive, got %d", c.Prefilter.MaxCandidates)
	}
	if c.Prefilter.MinCandidates < 0 {
		return fmt.Errorf("prefilter.min_candidates must be non-negative, got %d", c.Prefilter.MinCandidates)
	}

	if c.Profile.DecayDays <= 0 {
		return fmt.Errorf("profile.decay_days must be positive, got %f", c.Profile.DecayDays)
	}

	if c.Ranking.MaxScored < 1 {
		return fmt.Errorf("ranking.max_scored must be positive, got %d", c.Ranking.MaxScored)
	}
	if c.Ranking.KeepTopFraction < 0 || c.Ranking.KeepTopFraction > 1 {
		return fmt.Errorf("ranking.keep_top_fraction must be in [0, 1], got %f", c.Ranking.KeepTopFraction)
	}

	if c.Mixer.ContentShare < 0 || c.Mixer.TagShare < 0 {
		return fmt.Errorf("mixer shares must be non-negative, got %f/%f", c.Mixer.ContentShare, c.Mixer.TagShare)
	}
	if c.Mixer.PopularOversample < 1 {
		return fmt.Errorf("mixer.popular_oversample must be positive, got %d", c.Mixer.PopularOversample)
	}

	if len(c.WeightTiers) == 0 {
		return fmt.Errorf("weight_tiers must not be empty")
	}
	for i, tier := range c.WeightTiers {
		if sum := tier.Weights.Sum(); math.Abs(sum-1) > 1e-9 {
			return fmt.Errorf("weight_tiers[%d] weights must sum to 1, got %f", i, sum)
		}
	}

	if c.CacheCapacity < 1 {
		return fmt.Errorf("cache_capacity must be positive, got %d", c.CacheCapacity)
	}
	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	out := *c
	out.WeightTiers = append([]WeightTier(nil), c.WeightTiers...)
	return &out
}

func (c *Config) location() *time.Location {
	if c.Location == nil {
		return time.Local
	}
	return c.Location
}
