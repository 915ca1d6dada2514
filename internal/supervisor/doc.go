// Threadrec - Forum Thread Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threadrec

/*
Package supervisor runs threadrec's long-lived services under suture v4.

# Overview

Services are grouped into three child supervisors so a crash in one layer
restarts only that layer:

	RootSupervisor ("threadrec")
	├── DataSupervisor ("data-layer")
	│   └── ValueLogGCService (on-disk badger only)
	├── MaintenanceSupervisor ("maintenance-layer")
	│   └── CacheMaintenanceService
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Supervisor events (service start, failure, backoff) are logged through
sutureslog. Callers pass a *slog.Logger, normally built from the process
zerolog logger with logging.NewSlogLogger so all output shares one format.

# Usage

	slogger := logging.NewSlogLogger(logging.WithComponent("supervisor"))
	tree, err := supervisor.NewSupervisorTree(slogger, supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddDataService(services.NewValueLogGCService(db, 10*time.Minute, logger))
	tree.AddMaintenanceService(services.NewCacheMaintenanceService(engine, recorder, cfg, logger))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second, logger))

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    return err
	}

Serve blocks until ctx is canceled. Each service receives the cancellation
and has TreeConfig.ShutdownTimeout to return; UnstoppedServiceReport lists
the ones that did not.
*/
package supervisor
