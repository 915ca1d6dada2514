// Threadrec - Forum Thread Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threadrec

// Package metrics defines the Prometheus collectors exported on /metrics.
//
// Collectors are registered with the default registry through promauto at
// package init, so importing the package is enough to expose them.
//
// # Families
//
//   - threadrec_recommend_*: branch executions by outcome, latency, result counts
//   - threadrec_prefilter_candidates: pre-filter input and output sizes
//   - threadrec_similarity_cache_*: cache entries, hits, misses, flushes
//   - threadrec_store_*: operation latency, errors, badger value log GC
//   - threadrec_circuit_breaker_*: store breaker state and request results
//   - threadrec_api_*: HTTP requests, latency, in-flight, rate-limit rejections
//
// # Engine integration
//
// Recorder implements recommend.Recorder:
//
//	engine.SetRecorder(metrics.NewRecorder())
//
// Example queries:
//
//	# p95 latency of the mixed branch
//	histogram_quantile(0.95, sum(rate(threadrec_recommend_duration_seconds_bucket{branch="mixed"}[5m])) by (le))
//
//	# similarity cache hit ratio
//	rate(threadrec_similarity_cache_hits_total[5m])
//	  / (rate(threadrec_similarity_cache_hits_total[5m]) + rate(threadrec_similarity_cache_misses_total[5m]))
package metrics
