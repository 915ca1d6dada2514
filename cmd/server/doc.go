// Threadrec - Forum Thread Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threadrec

/*
Package main is the entry point for the threadrec server.

threadrec recommends forum threads to a single reader from their local
reading history. Threads and read events are ingested over the HTTP API and
kept in an embedded BadgerDB store; recommendations are computed on demand.

# Application Architecture

	RootSupervisor ("threadrec")
	├── DataSupervisor ("data-layer")
	│   └── ValueLogGCService (on-disk store only)
	├── MaintenanceSupervisor ("maintenance-layer")
	│   └── CacheMaintenanceService
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Component initialization order:

 1. Configuration: Koanf v2 with defaults, config file and environment
 2. Logging: zerolog with JSON or console output
 3. Store: BadgerDB behind a gobreaker circuit breaker
 4. Engine: recommendation engine with Prometheus recorder
 5. HTTP: chi router with CORS, rate limiting and request IDs
 6. Supervisor Tree: suture v4 with sutureslog event logging

# Configuration

	Priority: Environment variables > Config file > Defaults

Common environment variables:

	HTTP_PORT=8787
	BADGER_PATH=/data/threadrec
	BADGER_IN_MEMORY=false
	RECOMMEND_TIMEZONE=Asia/Shanghai
	CORS_ORIGINS=https://linux.do,https://www.nodeseek.com
	LOG_LEVEL=info
	LOG_FORMAT=json

The config file is found at $CONFIG_PATH, ./config.yaml or
/etc/threadrec/config.yaml.

# Signal Handling

SIGINT and SIGTERM cancel the supervisor context. The HTTP server drains
in-flight requests for server.shutdown_timeout, then the store is closed.
*/
package main
