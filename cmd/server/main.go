// Forkcast - Personalized Recipe Recommendation Service
// Copyright 2026 Forkcast contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/forkcast/forkcast

// Package main is the entry point for the Forkcast server application.
//
// Forkcast is a self-hosted recipe recommendation service. It scores a
// recipe catalog against each user's dietary restrictions, pantry
// contents, calorie budget and learned tag preferences, and serves
// ranked recommendations over a REST API.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: settings from config file and environment (Koanf v2)
//  2. Database: DuckDB storage for the catalog, user data and feedback
//  3. Recommendation Engine: scoring strategies and response cache
//  4. HTTP Server: REST API with Prometheus metrics
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins):
//   - Environment variables with the FORKCAST_ prefix
//   - Config file (config.yaml, or CONFIG_PATH)
//   - Built-in defaults
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM:
//   - Stops accepting new connections
//   - Waits for in-flight requests to complete (configurable timeout)
//   - Closes the database connection
//
// # Example Usage
//
// Development with demo data:
//
//	export FORKCAST_DATABASE_PATH=:memory:
//	export FORKCAST_DATABASE_SEED_DEMO_DATA=true
//	export FORKCAST_LOGGING_FORMAT=console
//	./forkcast
//
// Production:
//
//	export FORKCAST_SERVER_ENVIRONMENT=production
//	export FORKCAST_DATABASE_PATH=/data/forkcast.duckdb
//	./forkcast
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/forkcast/forkcast/internal/api"
	"github.com/forkcast/forkcast/internal/config"
	"github.com/forkcast/forkcast/internal/database"
	"github.com/forkcast/forkcast/internal/logging"
	"github.com/forkcast/forkcast/internal/recommend"
)

func main() {
	// Load configuration first to get logging settings.
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	logging.Info().
		Str("environment", cfg.Server.Environment).
		Str("listen", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)).
		Msg("starting forkcast")

	if err := run(cfg); err != nil {
		logging.Fatal().Err(err).Msg("server exited with error")
	}
}

func run(cfg *config.Config) error {
	db, err := database.New(cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Warn().Err(err).Msg("error closing database")
		}
	}()

	engine, err := recommend.NewEngine(&cfg.Recommend, logging.Logger())
	if err != nil {
		return fmt.Errorf("create engine: %w", err)
	}
	engine.SetDataProvider(database.NewRecipeDataProvider(db))

	handler := api.NewHandler(engine, db)
	router := api.NewRouter(handler, cfg.API)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logging.Info().Msg("shutdown signal received, draining connections")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logging.Info().Msg("server stopped")
	return nil
}
