// Threadrec - Forum Thread Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threadrec

/*
Package api serves the recommendation engine over HTTP.

The router is built on chi with this global stack, in order:

  - RequestID: X-Request-ID propagation plus a request-scoped logger
  - RealIP: client address from X-Forwarded-For / X-Real-IP
  - Recoverer: panic recovery
  - CORS: go-chi/cors, global so OPTIONS preflight is answered

Everything under /api/v1 additionally gets security headers and Prometheus
instrumentation. All routes except /api/v1/health are rate limited per client
IP with go-chi/httprate and have their request bodies capped.

Endpoints:

	GET    /api/v1/health
	GET    /metrics
	GET    /api/v1/recommendations?limit=&forum=&force_refresh=&algorithm=
	GET    /api/v1/recommendations/content
	GET    /api/v1/recommendations/tags
	GET    /api/v1/recommendations/mixed
	GET    /api/v1/recommendations/stats
	POST   /api/v1/recommendations/click
	DELETE /api/v1/recommendations/clicked
	GET    /api/v1/recommendations/cache
	DELETE /api/v1/recommendations/cache
	POST   /api/v1/recommendations/reset
	GET    /api/v1/dislikes
	POST   /api/v1/dislikes
	DELETE /api/v1/dislikes/{threadID}
	GET    /api/v1/settings
	PUT    /api/v1/settings
	POST   /api/v1/threads
	POST   /api/v1/events

Every JSON response uses the APIResponse envelope:

	{"success": true, "data": {...}, "meta": {"request_id": "...", "timestamp": "..."}}
	{"success": false, "error": {"code": "VALIDATION_FAILED", "message": "...", "details": [...]}}

Errors from the engine and store are mapped to status codes in one place,
ResponseWriter.HandleError: validation failures are 400, unknown threads 404,
an open store circuit breaker 503.
*/
package api
