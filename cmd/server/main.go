// Basketd - Market Basket Recommendation Service
// Copyright 2026 Basketd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/basketd/basketd

// Package main is the entry point for the basketd server.
//
// Basketd serves market-basket recommendations over a REST API. An upstream
// miner periodically exports association rules and co-occurrence counts as a
// JSON file; basketd imports that file, publishes it as an immutable
// in-memory model, and answers cart queries against it.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: layered settings from defaults, config.yaml, and
//     environment variables (Koanf v2)
//  2. Snapshot store (optional): BadgerDB mirror of the last good import,
//     so a restart does not depend on the export file being present
//  3. Recommendation engine: scoring, thresholds, response cache
//  4. Model manager: import, versioning, hot reload
//  5. HTTP server: REST API under /api/v1 plus health and metrics endpoints
//
// Components run under a suture supervisor tree with two layers, so a
// crashing model watcher is restarted without disturbing the HTTP server.
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins): environment variables, config file (config.yaml),
// built-in defaults. Commonly used variables:
//
//	export MODEL_PATH=/data/model.json
//	export HTTP_PORT=8080
//	export LOG_LEVEL=debug
//	export MODEL_WATCH_ENABLED=true
//	./basketd
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM: it stops
// accepting new connections, drains in-flight requests within the
// configured shutdown timeout, and closes the snapshot store.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/basketd/basketd/internal/api"
	"github.com/basketd/basketd/internal/config"
	"github.com/basketd/basketd/internal/logging"
	"github.com/basketd/basketd/internal/model"
	"github.com/basketd/basketd/internal/modelstore"
	"github.com/basketd/basketd/internal/recommend"
	"github.com/basketd/basketd/internal/supervisor"
	"github.com/basketd/basketd/internal/supervisor/services"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("addr", cfg.Server.Addr()).
		Str("model_path", cfg.Model.Path).
		Bool("snapshots", cfg.Model.SnapshotEnabled).
		Bool("watch", cfg.Model.WatchEnabled).
		Msg("Configuration loaded")

	// Optional snapshot store. The service runs without it; only restart
	// recovery degrades.
	var store *modelstore.Store
	if cfg.Model.SnapshotEnabled {
		s, db, err := modelstore.Open(cfg.Model.SnapshotDir)
		if err != nil {
			logging.Fatal().Err(err).Str("dir", cfg.Model.SnapshotDir).Msg("Failed to open snapshot store")
		}
		defer func() {
			if err := db.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing snapshot store")
			}
		}()
		store = s
		logging.Info().Str("dir", cfg.Model.SnapshotDir).Msg("Snapshot store opened")
	}

	engineCfg := cfg.Engine
	engine, err := recommend.NewEngine(&engineCfg, logging.Logger())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create recommendation engine")
	}

	manager := model.NewManager(cfg.Model.Path, engine, store, logging.Logger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// A missing model is not fatal: the API serves degraded (empty
	// recommendations, not-ready health) until a reload succeeds.
	if err := manager.Bootstrap(ctx); err != nil {
		if errors.Is(err, model.ErrNoSource) {
			logging.Warn().Err(err).Msg("No model available, starting degraded")
		} else {
			logging.Fatal().Err(err).Msg("Failed to bootstrap model")
		}
	}

	handler := api.NewHandler(engine, manager, cfg.API)
	router := api.NewRouter(handler, cfg.API)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Bridge zerolog to slog for sutureslog compatibility
	slogLogger := logging.NewSlogLogger()

	tree, err := supervisor.NewTree(slogLogger, supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	if cfg.Model.WatchEnabled {
		tree.AddDataService(services.NewModelWatcherService(manager, cfg.Model.WatchInterval, logging.Logger()))
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Str("addr", cfg.Server.Addr()).Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Drain until the supervisor has fully stopped
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Application stopped gracefully")
}
