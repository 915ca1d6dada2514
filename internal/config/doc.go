// Threadrec - Forum Thread Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threadrec

/*
Package config loads Threadrec configuration with koanf.

# Layers

Defaults come from defaultConfig via the structs provider. A YAML file
(CONFIG_PATH, then ./config.yaml, ./config.yml, /etc/threadrec/config.yaml)
overrides them, and environment variables override both. Only variables in
the mapping table are read, so unrelated environment never leaks in.

# Environment Variables

Server:
  - HTTP_HOST, HTTP_PORT (default 0.0.0.0:8787)
  - HTTP_READ_TIMEOUT, HTTP_WRITE_TIMEOUT, HTTP_IDLE_TIMEOUT, HTTP_SHUTDOWN_TIMEOUT

Store:
  - BADGER_PATH (default ./data/threadrec), BADGER_IN_MEMORY, BADGER_SYNC_WRITES
  - BADGER_GC_DISCARD_RATIO, STORE_BREAKER_TIMEOUT

Recommendation engine:
  - RECOMMEND_DEFAULT_LIMIT (10), RECOMMEND_MAX_LIMIT (50)
  - RECOMMEND_CACHE_CAPACITY (1000), RECOMMEND_SEED (42), RECOMMEND_TIMEZONE
  - RECOMMEND_CANDIDATE_WINDOW (720h), RECOMMEND_MIN_CANDIDATES, RECOMMEND_MAX_CANDIDATES
  - RECOMMEND_MAX_SCORED, RECOMMEND_DECAY_DAYS
  - RECOMMEND_CONTENT_SHARE, RECOMMEND_TAG_SHARE, RECOMMEND_AUTHOR_AFFINITY_WEIGHT

Security:
  - CORS_ORIGINS (comma separated), RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW
  - DISABLE_RATE_LIMIT, MAX_BODY_BYTES

Logging:
  - LOG_LEVEL, LOG_FORMAT (json|console), LOG_CALLER

Maintenance:
  - CACHE_REPORT_INTERVAL, CACHE_FLUSH_INTERVAL (0 disables), VALUE_LOG_GC_INTERVAL

# Example YAML

	server:
	  port: 8787
	store:
	  path: /var/lib/threadrec
	recommend:
	  timezone: Asia/Shanghai
	  author_affinity_weight: 0.05
	security:
	  cors_origins: ["https://linux.do", "https://www.nodeseek.com"]
*/
package config
