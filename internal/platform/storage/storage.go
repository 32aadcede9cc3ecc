/*
 * Copyright (c) 2025 Alessandro Faranda Gancio (dba TraceApi)
 *
 * This source code is licensed under the Business Source License 1.1.
 *
 * Change Date: 2027-11-28
 * Change License: AGPL-3.0
 */

// Package storage selects the record store configured for a binary.
package storage

import (
	"context"
	"fmt"

	"github.com/TraceApi/roastery-core/internal/config"
	"github.com/TraceApi/roastery-core/internal/core/ports"
	"github.com/TraceApi/roastery-core/internal/platform/storage/memory"
	"github.com/TraceApi/roastery-core/internal/platform/storage/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Open returns the configured store and a function that releases it.
func Open(ctx context.Context, cfg *config.Config, log *zap.Logger) (ports.Store, func(), error) {
	switch cfg.StorageDriver {
	case config.StorageDriverMemory:
		log.Warn("using in-memory storage; records are lost on restart")
		return memory.NewStore(), func() {}, nil
	case config.StorageDriverPostgres:
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("unable to connect to database: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("database unreachable: %w", err)
		}
		log.Info("connected to postgres")
		return postgres.NewStore(pool), pool.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}
