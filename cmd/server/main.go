// Threadrec - Forum Thread Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threadrec

package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/threadrec/internal/api"
	"github.com/tomtom215/threadrec/internal/config"
	"github.com/tomtom215/threadrec/internal/logging"
	"github.com/tomtom215/threadrec/internal/metrics"
	"github.com/tomtom215/threadrec/internal/recommend"
	"github.com/tomtom215/threadrec/internal/store"
	"github.com/tomtom215/threadrec/internal/supervisor"
	"github.com/tomtom215/threadrec/internal/supervisor/services"
)

func main() {
	os.Exit(run())
}

// run wires every component and blocks until shutdown. It returns the
// process exit code so deferred cleanup runs before os.Exit.
func run() int {
	cfg, err := config.Load()
	if err != nil {
		logging.Error().Err(err).Msg("Failed to load configuration")
		return 1
	}

	logger := logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Output:    os.Stderr,
	})

	logger.Info().
		Str("addr", cfg.Server.Addr()).
		Str("store_path", cfg.Store.Path).
		Bool("in_memory", cfg.Store.InMemory).
		Msg("Starting threadrec")

	// === STORE ===
	db, err := store.Open(cfg.Store.Badger(), logging.WithComponent("store"))
	if err != nil {
		logger.Error().Err(err).Msg("Failed to open store")
		return 1
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error().Err(err).Msg("Error closing store")
		}
	}()
	backend := store.NewBreaker(db, cfg.Store.Breaker, logger)

	// === ENGINE ===
	engineCfg, err := cfg.Recommend.Engine()
	if err != nil {
		logger.Error().Err(err).Msg("Invalid recommendation settings")
		return 1
	}
	engine, err := recommend.NewEngine(engineCfg, backend, logging.WithComponent("recommend"))
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create recommendation engine")
		return 1
	}
	recorder := metrics.NewRecorder()
	engine.SetRecorder(recorder)

	// === HTTP ===
	limits := api.DefaultLimits()
	limits.DefaultLimit = cfg.Recommend.DefaultLimit
	limits.MaxLimit = cfg.Recommend.MaxLimit

	mwConfig := api.DefaultMiddlewareConfig()
	mwConfig.CORSAllowedOrigins = cfg.Security.CORSOrigins
	mwConfig.RateLimitRequests = cfg.Security.RateLimitReqs
	mwConfig.RateLimitWindow = cfg.Security.RateLimitWindow
	mwConfig.RateLimitDisabled = cfg.Security.RateLimitDisabled
	mwConfig.MaxBodyBytes = cfg.Security.MaxBodyBytes

	router := api.NewRouter(api.NewHandler(engine, backend, limits), api.NewMiddleware(mwConfig))
	server := services.NewServer(cfg.Server.Addr(), router,
		cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.IdleTimeout)

	// === SUPERVISOR TREE ===
	tree, err := supervisor.NewSupervisorTree(
		logging.NewSlogLogger(logging.WithComponent("supervisor")),
		supervisor.TreeConfig{ShutdownTimeout: cfg.Server.ShutdownTimeout + cfg.Server.ShutdownTimeout/2},
	)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create supervisor tree")
		return 1
	}

	if !cfg.Store.InMemory && cfg.Maintenance.ValueLogGCInterval > 0 {
		tree.AddDataService(services.NewValueLogGCService(db, cfg.Maintenance.ValueLogGCInterval, logger))
	}
	tree.AddMaintenanceService(services.NewCacheMaintenanceService(engine, recorder, services.CacheMaintenanceConfig{
		ReportInterval: cfg.Maintenance.CacheReportInterval,
		FlushInterval:  cfg.Maintenance.CacheFlushInterval,
	}, logger))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout, logger))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info().Msg("Starting supervisor tree")
	exitCode := 0
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("Supervisor tree error")
		exitCode = 1
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logger.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logger.Info().Msg("threadrec stopped")
	return exitCode
}
