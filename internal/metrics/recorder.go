// Threadrec - Forum Thread Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threadrec

package metrics

import (
	"sync"
	"time"

	"github.com/tomtom215/threadrec/internal/recommend"
)

// Recorder feeds engine measurements into the package collectors. It
// satisfies recommend.Recorder.
type Recorder struct {
	mu         sync.Mutex
	lastHits   int64
	lastMisses int64
}

var _ recommend.Recorder = (*Recorder)(nil)

// NewRecorder returns a Recorder with no cache history.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) ObserveBranch(branch string, d time.Duration, results int, err error) {
	outcome := "ok"
	switch {
	case err != nil:
		outcome = "error"
	case results == 0:
		outcome = "empty"
	}
	RecommendRequests.WithLabelValues(branch, outcome).Inc()
	RecommendDuration.WithLabelValues(branch).Observe(d.Seconds())
	if err == nil {
		RecommendResults.WithLabelValues(branch).Observe(float64(results))
	}
}

func (r *Recorder) ObservePrefilter(total, kept int) {
	PrefilterCandidates.WithLabelValues("total").Observe(float64(total))
	PrefilterCandidates.WithLabelValues("kept").Observe(float64(kept))
}

// ObserveCache converts the cache's cumulative hit and miss totals into
// counter increments. A total lower than the last one seen means the cache
// was cleared, and the new total is counted in full.
func (r *Recorder) ObserveCache(stats recommend.CacheStats) {
	SimilarityCacheSize.Set(float64(stats.Size))

	r.mu.Lock()
	hits := delta(stats.Hits, r.lastHits)
	misses := delta(stats.Misses, r.lastMisses)
	r.lastHits, r.lastMisses = stats.Hits, stats.Misses
	r.mu.Unlock()

	if hits > 0 {
		SimilarityCacheHits.Add(float64(hits))
	}
	if misses > 0 {
		SimilarityCacheMisses.Add(float64(misses))
	}
}

func delta(current, last int64) int64 {
	if current < last {
		return current
	}
	return current - last
}
