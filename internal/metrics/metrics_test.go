// Threadrec - Forum Thread Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threadrec

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	io_prometheus_client "github.com/prometheus/client_model/go"

	"github.com/tomtom215/threadrec/internal/recommend"
)

// Collectors are process-global, so every assertion compares a delta
// against the value read before the call.

func TestRecordAPIRequest(t *testing.T) {
	counter := APIRequestsTotal.WithLabelValues("GET", "/api/v1/recommendations", "200")
	before := testutil.ToFloat64(counter)

	RecordAPIRequest("GET", "/api/v1/recommendations", 200, 15*time.Millisecond)

	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Errorf("api_requests_total delta = %v, want 1", got)
	}
	if n := testutil.CollectAndCount(APIRequestDuration); n == 0 {
		t.Error("expected api duration series to be collected")
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)

	TrackActiveRequest(true)
	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests) - before; got != 2 {
		t.Errorf("active delta after two starts = %v, want 2", got)
	}
	TrackActiveRequest(false)
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != before {
		t.Errorf("active = %v after matching ends, want %v", got, before)
	}
}

func TestRecordStoreOperation(t *testing.T) {
	errs := StoreErrors.WithLabelValues("all_threads")
	before := testutil.ToFloat64(errs)

	RecordStoreOperation("all_threads", time.Millisecond, nil)
	RecordStoreOperation("all_threads", time.Millisecond, errors.New("badger: closed"))

	if got := testutil.ToFloat64(errs) - before; got != 1 {
		t.Errorf("store_errors_total delta = %v, want 1", got)
	}
}

func TestRecordIngest(t *testing.T) {
	c := IngestedRecords.WithLabelValues("thread")
	before := testutil.ToFloat64(c)

	RecordIngest("thread", 3)
	RecordIngest("thread", 0)

	if got := testutil.ToFloat64(c) - before; got != 3 {
		t.Errorf("ingested delta = %v, want 3", got)
	}
}

func TestRecorder_ObserveBranch(t *testing.T) {
	r := NewRecorder()
	tests := []struct {
		name    string
		results int
		err     error
		outcome string
	}{
		{"results", 4, nil, "ok"},
		{"empty", 0, nil, "empty"},
		{"failure", 0, errors.New("store down"), "error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := RecommendRequests.WithLabelValues(recommend.BranchContent, tt.outcome)
			before := testutil.ToFloat64(c)

			r.ObserveBranch(recommend.BranchContent, 2*time.Millisecond, tt.results, tt.err)

			if got := testutil.ToFloat64(c) - before; got != 1 {
				t.Errorf("requests{outcome=%s} delta = %v, want 1", tt.outcome, got)
			}
		})
	}
}

// sampleCount reads the number of observations in a histogram series.
func sampleCount(t *testing.T, obs prometheus.Observer) uint64 {
	t.Helper()
	metric, ok := obs.(prometheus.Metric)
	if !ok {
		t.Fatalf("observer %T is not a metric", obs)
	}
	var m io_prometheus_client.Metric
	if err := metric.Write(&m); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	return m.GetHistogram().GetSampleCount()
}

func TestRecorder_ObservePrefilter(t *testing.T) {
	total := PrefilterCandidates.WithLabelValues("total")
	kept := PrefilterCandidates.WithLabelValues("kept")
	totalBefore, keptBefore := sampleCount(t, total), sampleCount(t, kept)

	NewRecorder().ObservePrefilter(1200, 500)

	if got := sampleCount(t, total) - totalBefore; got != 1 {
		t.Errorf("total samples delta = %d, want 1", got)
	}
	if got := sampleCount(t, kept) - keptBefore; got != 1 {
		t.Errorf("kept samples delta = %d, want 1", got)
	}
}

func TestRecorder_ObserveBranchDuration(t *testing.T) {
	hist := RecommendDuration.WithLabelValues(recommend.BranchTags)
	before := sampleCount(t, hist)

	NewRecorder().ObserveBranch(recommend.BranchTags, 3*time.Millisecond, 2, nil)

	if got := sampleCount(t, hist) - before; got != 1 {
		t.Errorf("duration samples delta = %d, want 1", got)
	}
}

func TestRecorder_ObserveCacheDeltas(t *testing.T) {
	r := NewRecorder()
	hits0 := testutil.ToFloat64(SimilarityCacheHits)
	misses0 := testutil.ToFloat64(SimilarityCacheMisses)

	r.ObserveCache(recommend.CacheStats{Size: 10, Capacity: 1000, Hits: 5, Misses: 10})
	r.ObserveCache(recommend.CacheStats{Size: 12, Capacity: 1000, Hits: 8, Misses: 12})

	if got := testutil.ToFloat64(SimilarityCacheSize); got != 12 {
		t.Errorf("cache size gauge = %v, want 12", got)
	}
	if got := testutil.ToFloat64(SimilarityCacheHits) - hits0; got != 8 {
		t.Errorf("hits delta = %v, want 8", got)
	}
	if got := testutil.ToFloat64(SimilarityCacheMisses) - misses0; got != 12 {
		t.Errorf("misses delta = %v, want 12", got)
	}

	// Cleared cache: counters restart from zero and are not subtracted.
	r.ObserveCache(recommend.CacheStats{Size: 1, Capacity: 1000, Hits: 1, Misses: 1})
	if got := testutil.ToFloat64(SimilarityCacheHits) - hits0; got != 9 {
		t.Errorf("hits delta after clear = %v, want 9", got)
	}
}

func TestDelta(t *testing.T) {
	t.Parallel()

	tests := []struct{ current, last, want int64 }{
		{10, 4, 6},
		{4, 4, 0},
		{3, 9, 3},
		{0, 0, 0},
	}
	for _, tt := range tests {
		if got := delta(tt.current, tt.last); got != tt.want {
			t.Errorf("delta(%d, %d) = %d, want %d", tt.current, tt.last, got, tt.want)
		}
	}
}
