// Threadrec - Forum Thread Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threadrec

/*
Package services adapts threadrec components to suture.Service.

  - HTTPServerService: runs an *http.Server and shuts it down gracefully
    when the supervisor context is canceled
  - CacheMaintenanceService: publishes similarity cache statistics to the
    metrics recorder and optionally flushes the cache on a schedule
  - ValueLogGCService: runs badger value log garbage collection periodically

Every service returns ctx.Err() on cancellation and implements fmt.Stringer
so supervisor events name it.
*/
package services
