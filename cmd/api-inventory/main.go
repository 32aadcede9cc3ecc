/*
 * Copyright (c) 2025 Alessandro Faranda Gancio (dba TraceApi)
 *
 * This source code is licensed under the Business Source License 1.1.
 *
 * Change Date: 2027-11-28
 * Change License: AGPL-3.0
 */

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/TraceApi/roastery-core/internal/config"
	"github.com/TraceApi/roastery-core/internal/core/ports"
	"github.com/TraceApi/roastery-core/internal/core/service"
	"github.com/TraceApi/roastery-core/internal/platform/bus"
	"github.com/TraceApi/roastery-core/internal/platform/cache"
	"github.com/TraceApi/roastery-core/internal/platform/logger"
	"github.com/TraceApi/roastery-core/internal/platform/storage"
	"github.com/TraceApi/roastery-core/internal/platform/storage/s3"
	"github.com/TraceApi/roastery-core/internal/scheduler"
	"github.com/TraceApi/roastery-core/internal/transport/rest"
	authmw "github.com/TraceApi/roastery-core/internal/transport/rest/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"go.uber.org/zap"
)

func main() {
	// 1. Configuration
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}
	log := logger.Must(logger.New(cfg.Environment, cfg.LogLevel)).Named("api-inventory")
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Infrastructure
	store, closeStore, err := storage.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to open storage", zap.Error(err))
	}
	defer closeStore()

	deps := service.Dependencies{Store: store, Logger: log, ReportCacheTTL: cfg.ReportCacheTTL}
	redisStore := cache.NewRedisStore(cfg.RedisAddr)
	defer redisStore.Close()
	if err := redisStore.Ping(ctx); err != nil {
		log.Warn("redis unreachable; running without cache, idempotency and events", zap.Error(err))
	} else {
		events := bus.NewRedisEventBus(cfg.RedisAddr)
		defer events.Close()
		deps.Cache = redisStore
		deps.Events = events
	}

	// 3. Wiring
	svc := rest.Services{
		Origins:  service.NewOriginService(deps),
		Green:    service.NewGreenCoffeeService(deps),
		Roasting: service.NewRoastingService(deps),
		Recipes:  service.NewRecipeService(deps),
		Blending: service.NewBlendingService(deps),
		Sales:    service.NewSalesService(deps),
		Reports:  service.NewReportService(deps),
	}

	if cfg.SnapshotCron != "" {
		sched, err := startScheduler(ctx, cfg, svc.Reports, log)
		if err != nil {
			log.Error("report snapshots disabled", zap.Error(err))
		} else {
			defer sched.Stop()
		}
	}

	// 4. Router
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(httprate.LimitByIP(cfg.RateLimitPerMinute, time.Minute))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Route("/v1", func(r chi.Router) {
		r.Use(authmw.AuthMiddleware(cfg.JWTSecret, log))
		rest.RegisterInventoryRoutes(r, svc, rest.MustSchemas(), log)
	})

	// 5. Serve until interrupted
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	if err := rest.Serve(ctx, srv, log); err != nil {
		log.Error("server failed", zap.Error(err))
	}
}

func startScheduler(ctx context.Context, cfg *config.Config, reports ports.ReportService, log *zap.Logger) (*scheduler.Scheduler, error) {
	blobs, err := s3.NewBlobStore(ctx, s3.Config{
		Endpoint:  cfg.S3Endpoint,
		Region:    cfg.S3Region,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		Bucket:    cfg.S3Bucket,
	})
	if err != nil {
		return nil, err
	}
	sched := scheduler.NewScheduler(reports, blobs, logger.Named(log, "scheduler"))
	if err := sched.Start(cfg.SnapshotCron); err != nil {
		return nil, err
	}
	return sched, nil
}
