// Threadrec - Forum Thread Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threadrec

package recommend

import (
	"context"
	"fmt"
	"strings"
)

// Stats summarizes the corpus and the reader's history.
func (e *Engine) Stats(ctx context.Context) (Stats, error) {
	snap, err := e.load(ctx)
	if err != nil {
		return Stats{}, err
	}
	return computeStats(snap, e.cache.Len()), nil
}

func computeStats(snap *snapshot, cacheSize int) Stats {
	read := readIDs(snap.events)
	disliked := dislikedIDs(snap.disliked)

	s := Stats{
		TotalThreads:    len(snap.threads),
		ReadThreads:     len(read),
		ReadEvents:      len(snap.events),
		CompletedReads:  completedCount(snap.events),
		DislikedThreads: len(snap.disliked),
		CacheSize:       cacheSize,
	}

	// A thread read several times, or both read and disliked, is
	// unavailable once.
	for i := range snap.threads {
		id := snap.threads[i].ThreadID
		if !read.has(id) && !disliked.has(id) {
			s.AvailableForRecommendation++
		}
	}

	if n := len(snap.events); n > 0 {
		var dwell, scroll float64
		for i := range snap.events {
			dwell += float64(snap.events[i].DwellMsEffective)
			scroll += snap.events[i].MaxScrollPct
		}
		s.CompletionRate = float64(s.CompletedReads) / float64(n)
		s.AvgDwellMs = dwell / float64(n)
		s.AvgScrollDepth = scroll / float64(n)
	}
	return s
}

// Settings returns the reader's preferences.
func (e *Engine) Settings(ctx context.Context) (Settings, error) {
	s, err := e.store.GetSettings(ctx)
	if err != nil {
		return Settings{}, fmt.Errorf("load settings: %w", err)
	}
	return s, nil
}

// UpdateSettings validates and persists s. Tags are trimmed and empty tags
// dropped; the algorithm name is normalized.
//
//nolint:gocritic // hugeParam: settings passed by value
func (e *Engine) UpdateSettings(ctx context.Context, s Settings) (Settings, error) {
	alg, err := ParseAlgorithm(s.Algorithm)
	if err != nil {
		return Settings{}, err
	}
	if s.Algorithm != "" {
		s.Algorithm = alg.String()
	}
	s.DislikedTags = cleanTags(s.DislikedTags)
	s.PreferredTags = cleanTags(s.PreferredTags)
	if s.RecommendationCount < 0 {
		s.RecommendationCount = 0
	}

	if err := e.store.SaveSettings(ctx, s); err != nil {
		return Settings{}, fmt.Errorf("save settings: %w", err)
	}
	return s, nil
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
