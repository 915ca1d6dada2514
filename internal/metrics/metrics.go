// Threadrec - Forum Thread Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threadrec

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Recommendation engine
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "threadrec_recommend_requests_total",
			Help: "Total number of recommendation branch executions",
		},
		[]string{"branch", "outcome"}, // outcome: "ok", "empty", "error"
	)

	RecommendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "threadrec_recommend_duration_seconds",
			Help:    "Recommendation branch latency in seconds",
			Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"branch"},
	)

	RecommendResults = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "threadrec_recommend_results",
			Help:    "Number of recommendations returned per branch execution",
			Buckets: []float64{0, 1, 3, 5, 10, 20, 50, 100},
		},
		[]string{"branch"},
	)

	PrefilterCandidates = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "threadrec_prefilter_candidates",
			Help:    "Thread counts entering and leaving the candidate pre-filter",
			Buckets: []float64{0, 10, 50, 100, 250, 500, 1000, 5000, 10000},
		},
		[]string{"stage"}, // "total", "kept"
	)

	// Similarity cache
	SimilarityCacheSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "threadrec_similarity_cache_entries",
			Help: "Current number of cached similarity scores",
		},
	)

	SimilarityCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "threadrec_similarity_cache_hits_total",
			Help: "Total number of similarity cache hits",
		},
	)

	SimilarityCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "threadrec_similarity_cache_misses_total",
			Help: "Total number of similarity cache misses",
		},
	)

	SimilarityCacheFlushes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "threadrec_similarity_cache_flushes_total",
			Help: "Total number of scheduled similarity cache flushes",
		},
	)

	// Store
	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "threadrec_store_operation_duration_seconds",
			Help:    "Duration of store operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "threadrec_store_errors_total",
			Help: "Total number of failed store operations",
		},
		[]string{"operation"},
	)

	StoreValueLogGC = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "threadrec_store_value_log_gc_total",
			Help: "Badger value log GC passes by result",
		},
		[]string{"result"}, // "rewritten", "noop", "error"
	)

	IngestedRecords = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "threadrec_ingested_records_total",
			Help: "Total number of records written through the ingest API",
		},
		[]string{"kind"}, // "thread", "event"
	)

	// Circuit breaker
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "threadrec_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "threadrec_circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "threadrec_circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "threadrec_circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// HTTP API
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "threadrec_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "threadrec_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "threadrec_api_active_requests",
			Help: "Current number of in-flight API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "threadrec_api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)
)

// RecordAPIRequest records one finished API request.
func RecordAPIRequest(method, endpoint string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordStoreOperation records latency for a store call and counts failures.
func RecordStoreOperation(operation string, duration time.Duration, err error) {
	StoreOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		StoreErrors.WithLabelValues(operation).Inc()
	}
}

// RecordValueLogGC counts one badger GC pass.
func RecordValueLogGC(result string) {
	StoreValueLogGC.WithLabelValues(result).Inc()
}

// RecordIngest counts records accepted by the ingest endpoints.
func RecordIngest(kind string, n int) {
	if n > 0 {
		IngestedRecords.WithLabelValues(kind).Add(float64(n))
	}
}
