// Threadrec - Forum Thread Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threadrec

package recommend

import (
	"math"
	"sort"
)

// Shuffler permutes n elements through swap. rand.Rand.Shuffle satisfies it.
type Shuffler func(n int, swap func(i, j int))

// Rank thresholds, orders, optionally shuffles and backfills scored
// candidates. The pool supplies fallback threads and must already exclude
// read and disliked threads.
func Rank(cfg RankingConfig, scored []ScoredCandidate, pool []Thread, limit int, forceRefresh bool, shuffle Shuffler) []ScoredCandidate {
	ranked := threshold(scored, cfg.ScoreThreshold)
	if len(ranked) < cfg.MinSurvivors {
		ranked = threshold(scored, 0)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].FinalScore > ranked[j].FinalScore
	})

	if forceRefresh && len(ranked) > limit {
		shuffleTail(len(ranked), cfg.KeepTopFraction, shuffle, func(i, j int) {
			ranked[i], ranked[j] = ranked[j], ranked[i]
		})
	}
	ranked = truncate(ranked, limit)

	if len(ranked) >= cfg.FallbackBelow {
		return ranked
	}

	newest := append([]Thread(nil), pool...)
	SortByPublishTimeDesc(newest)
	if len(newest) > cfg.FallbackCount {
		newest = newest[:cfg.FallbackCount]
	}
	for i := range newest {
		ranked = append(ranked, ScoredCandidate{Thread: newest[i], Source: SourceFallback})
	}
	return truncate(dedupe(ranked), limit)
}

func threshold(scored []ScoredCandidate, floor float64) []ScoredCandidate {
	out := make([]ScoredCandidate, 0, len(scored))
	for i := range scored {
		if scored[i].FinalScore > floor {
			out = append(out, scored[i])
		}
	}
	return out
}

// shuffleTail keeps the first ceil(n*keep) positions and shuffles the rest.
func shuffleTail(n int, keep float64, shuffle Shuffler, swap func(i, j int)) {
	top := int(math.Ceil(float64(n) * keep))
	if top >= n || shuffle == nil {
		return
	}
	shuffle(n-top, func(i, j int) { swap(top+i, top+j) })
}

func truncate[T any](items []T, limit int) []T {
	if limit >= 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

// dedupe drops later candidates whose ThreadID was already seen.
func dedupe(items []ScoredCandidate) []ScoredCandidate {
	seen := make(idSet, len(items))
	out := items[:0]
	for i := range items {
		if seen.has(items[i].ThreadID) {
			continue
		}
		seen[items[i].ThreadID] = struct{}{}
		out = append(out, items[i])
	}
	return out
}
