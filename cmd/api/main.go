// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Api is the entry point for the mirrorstash HTTP API server.

The server mirrors one or more upstream media-catalog GraphQL servers into a
local Postgres store, applies per-user access-control overlays, and serves a
read-optimized REST surface in front of the mirror.

Usage:

	go run cmd/api/main.go [flags]

The flags/environment variables are:

	SERVER_PORT     Port to listen on (default: 8080)
	ENVIRONMENT     deployment environment (development, production)
	DATABASE_URL    Postgres connection string (required)
	REDIS_URL       Redis connection string (required)

Startup Sequence:

 1. Logger: Initialize structured JSON logging (slog).
 2. Config: Load and validate environment variables.
 3. Storage: Establish connections to Postgres and Redis.
 4. Migration: Run idempotent schema updates.
 5. Wiring: Inject dependencies into domain services/handlers.
 6. Scheduler: Start the background sync cron.
 7. Server: Bind HTTP listener and handle graceful shutdown.

No business logic lives here. This file is strictly for orchestration and wiring.
*/
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mirrorstash/mirrorstash/internal/api"
	"github.com/mirrorstash/mirrorstash/internal/exclusion"
	"github.com/mirrorstash/mirrorstash/internal/hydrate"
	"github.com/mirrorstash/mirrorstash/internal/mirror/model"
	"github.com/mirrorstash/mirrorstash/internal/mirror/store"
	"github.com/mirrorstash/mirrorstash/internal/platform/config"
	"github.com/mirrorstash/mirrorstash/internal/platform/constants"
	"github.com/mirrorstash/mirrorstash/internal/platform/migration"
	pgstore "github.com/mirrorstash/mirrorstash/internal/platform/postgres"
	redisstore "github.com/mirrorstash/mirrorstash/internal/platform/redis"
	"github.com/mirrorstash/mirrorstash/internal/platform/sec"
	"github.com/mirrorstash/mirrorstash/internal/prober"
	"github.com/mirrorstash/mirrorstash/internal/scheduler"
	"github.com/mirrorstash/mirrorstash/internal/sync"
	"github.com/mirrorstash/mirrorstash/internal/upstream"
)

func main() {
	if err := run(); err != nil {
		slog.Error("application_startup_failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	// # 1. Logger
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries for trace correlation
	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("mirrorstash_service_initializing")

	// # 2. Configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	// Adjust log level if debug mode is explicitly enabled
	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Root context for startup. A 30s deadline prevents the app from hanging.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// # 3. PostgreSQL
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// # 4. Redis
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// # 5. Migrations
	if err := migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	// # 6. Platform Services
	jwtSvc, err := sec.NewTokenService(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, constants.AuthIssuer)
	if err != nil {
		return fmt.Errorf("initialize jwt service: %w", err)
	}

	// # 7. Health Wiring
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
	}, log)

	// # 8. Mirror Store & Instance Registry
	st := store.New(pool)

	if err := seedInstances(startupCtx, st, cfg.InstanceSeedJSON, log); err != nil {
		return fmt.Errorf("seed instance registry: %w", err)
	}
	instances, err := st.ListInstances(startupCtx)
	if err != nil {
		return fmt.Errorf("list instances: %w", err)
	}
	log.Info("instances_loaded", slog.Int("count", len(instances)))

	registry := upstream.NewRegistry(instances)

	// # 9. Domain Engines
	exclEngine := exclusion.New(st, log)
	syncEngine := sync.New(registry, st, exclEngine, rdb, log)
	sched := scheduler.New(syncEngine, st, log, cfg.SyncIntervalMinutes)
	hyd := hydrate.New(st)
	prb := prober.New(log, prober.WithConcurrency(cfg.ProberConcurrency))

	// # 10. API Handler Assembly
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Scene:     api.NewSceneHandler(st, hyd),
		Image:     api.NewImageHandler(st, hyd),
		Gallery:   api.NewGalleryHandler(st, hyd),
		Performer: api.NewPerformerHandler(st, hyd),
		Studio:    api.NewStudioHandler(st, hyd),
		Tag:       api.NewTagHandler(st, hyd),
		Group:     api.NewGroupHandler(st, hyd),
		Sync:      api.NewSyncHandler(st, syncEngine, sched, registry),
		Hidden:    api.NewHiddenHandler(exclEngine),
		Prober:    api.NewProberHandler(st, prb),
	}

	// Create a background context for the whole application lifecycle
	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	// # 11. Scheduler
	if err := sched.Start(appCtx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	defer sched.Stop()

	server := api.NewServer(appCtx, cfg, log, jwtSvc, handlers)

	// # 12. Lifecycle Handling
	shutdownErr := make(chan error, 1)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			shutdownErr <- fmt.Errorf("http_server_crash: %w", err)
		}
	}()

	log.Info("mirrorstash_api_running", slog.String("port", cfg.ServerPort))

	// Block until signal or error
	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-shutdownErr:
		return err
	}

	// Start Graceful Shutdown Sequence
	appCancel() // Signal background workers (scheduler, in-flight syncs) to stop

	log.Info("shutting_down_api_server", slog.Duration("timeout", constants.ShutdownTimeout))
	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		return fmt.Errorf("server_shutdown_failed: %w", err)
	}

	log.Info("graceful_shutdown_complete")
	return nil
}

// instanceSeed mirrors [model.InstanceConfig] but exposes APIKey for JSON
// decoding — InstanceConfig itself marks that field json:"-" so it's never
// echoed back to a client.
type instanceSeed struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	BaseURL     string `json:"base_url"`
	APIKey      string `json:"api_key"`
	Enabled     bool   `json:"enabled"`
	Priority    int    `json:"priority"`
}

// seedInstances bootstraps the instance registry from INSTANCE_SEED_JSON on
// first boot. Once a row exists for an id the table is authoritative and
// SeedInstance is a no-op for that id.
func seedInstances(ctx context.Context, st *store.Store, seedJSON string, log *slog.Logger) error {
	if seedJSON == "" {
		return nil
	}
	var seeds []instanceSeed
	if err := json.Unmarshal([]byte(seedJSON), &seeds); err != nil {
		return fmt.Errorf("parse INSTANCE_SEED_JSON: %w", err)
	}
	for _, s := range seeds {
		cfg := model.InstanceConfig{
			ID:          s.ID,
			DisplayName: s.DisplayName,
			BaseURL:     s.BaseURL,
			APIKey:      s.APIKey,
			Enabled:     s.Enabled,
			Priority:    s.Priority,
		}
		if err := st.SeedInstance(ctx, cfg); err != nil {
			return fmt.Errorf("seed instance %q: %w", cfg.ID, err)
		}
		log.Info("instance_seeded", slog.String("instance", cfg.ID))
	}
	return nil
}
