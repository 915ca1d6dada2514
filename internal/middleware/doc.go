// Threadrec - Forum Thread Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threadrec

/*
Package middleware provides the HTTP middleware shared by the API router.

Key Components:

  - RequestID: accepts or generates an X-Request-ID and stores it, together
    with a request-scoped zerolog logger, in the request context
  - PrometheusMetrics: request count, latency and in-flight instrumentation
    labelled by chi route pattern
  - MaxBody: caps request bodies with http.MaxBytesReader

All middleware uses the http.HandlerFunc form; the api package adapts them to
chi with a small wrapper:

	r.Use(chiMiddleware(middleware.PrometheusMetrics))

Route patterns rather than raw paths are used as metric labels, so
/api/v1/dislikes/{threadID} produces one series regardless of the id.
*/
package middleware
