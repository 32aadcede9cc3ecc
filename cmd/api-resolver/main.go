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
	"github.com/TraceApi/roastery-core/internal/platform/cache"
	"github.com/TraceApi/roastery-core/internal/platform/logger"
	"github.com/TraceApi/roastery-core/internal/platform/storage"
	"github.com/TraceApi/roastery-core/internal/transport/rest"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"go.uber.org/zap"
)

func main() {
	// 1. Config
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}
	log := logger.Must(logger.New(cfg.Environment, cfg.LogLevel)).Named("api-resolver")
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Infrastructure
	store, closeStore, err := storage.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to open storage", zap.Error(err))
	}
	defer closeStore()

	var authRepo ports.AuthRepository
	redisStore := cache.NewRedisStore(cfg.RedisAddr)
	defer redisStore.Close()
	if err := redisStore.Ping(ctx); err != nil {
		log.Warn("redis unreachable; API keys disabled", zap.Error(err))
	} else {
		authRepo = redisStore
	}

	// 3. Wiring (same services as the inventory API, read-only handlers)
	lineage := service.NewLineageService(service.Dependencies{Store: store, Logger: log})
	handler := rest.NewResolverHandler(lineage, authRepo, log, cfg)

	// 4. Router
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(httprate.LimitByIP(cfg.RateLimitPerMinute, time.Minute))
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler.RegisterResolverRoutes(r)

	// 5. Start
	srv := &http.Server{Addr: ":" + cfg.ResolverPort, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	log.Info("public base url", zap.String("public_base_url", cfg.PublicBaseURL))
	if err := rest.Serve(ctx, srv, log); err != nil {
		log.Error("server failed", zap.Error(err))
	}
}
