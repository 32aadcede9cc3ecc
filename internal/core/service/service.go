/*
 * Copyright (c) 2025 Alessandro Faranda Gancio (dba TraceApi)
 *
 * This source code is licensed under the Business Source License 1.1.
 *
 * Change Date: 2027-11-28
 * Change License: AGPL-3.0
 */

package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/TraceApi/roastery-core/internal/core/domain"
	"github.com/TraceApi/roastery-core/internal/core/ports"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// StockSummaryCacheKey holds the cached stock summary, tagged with the stock
// version it was read under. StockVersionCacheKey changes on every committed
// stock movement, so a summary filled concurrently with a commit is never served.
const (
	StockSummaryCacheKey = "report:stock-summary"
	StockVersionCacheKey = "report:stock-version"
)

// Dependencies wires the services. Cache and Events are optional.
type Dependencies struct {
	Store  ports.Store
	Cache  ports.CacheRepository
	Events ports.EventBus
	Logger *zap.Logger

	// Clock and Suffix default to UTC wall time and a random 4 digit number.
	Clock  func() time.Time
	Suffix func() int

	ReportCacheTTL time.Duration
}

// base carries what every service needs to run a unit of work.
type base struct {
	store  ports.Store
	cache  ports.CacheRepository
	events ports.EventBus
	log    *zap.Logger
	now    func() time.Time
	suffix func() int
}

func newBase(deps Dependencies, component string) base {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	b := base{
		store:  deps.Store,
		cache:  deps.Cache,
		events: deps.Events,
		log:    log.Named(component),
		now:    deps.Clock,
		suffix: deps.Suffix,
	}
	if b.now == nil {
		b.now = func() time.Time { return time.Now().UTC() }
	}
	if b.suffix == nil {
		b.suffix = func() int { return 1000 + rand.IntN(9000) }
	}
	return b
}

// journal collects the stock movements of one unit of work. They are only
// published once the unit of work has committed.
type journal struct {
	op    string
	at    time.Time
	moves []domain.StockMovement
}

func (j *journal) record(stage domain.Stage, id uuid.UUID, code string, delta decimal.Decimal) {
	if delta.IsZero() {
		return
	}
	j.moves = append(j.moves, domain.StockMovement{
		Operation: j.op,
		Stage:     stage,
		BatchID:   id,
		BatchCode: code,
		DeltaKg:   delta,
		At:        j.at,
	})
}

type unitOfWork func(ctx context.Context, repos ports.Repositories, j *journal) error

// mutate runs fn atomically. Domain errors are returned as they are; anything
// else is logged and reported as domain.ErrOperationFailed.
func (b base) mutate(ctx context.Context, op string, fn unitOfWork) error {
	j := &journal{op: op, at: b.now()}
	err := b.store.WithinTx(ctx, func(ctx context.Context, repos ports.Repositories) error {
		j.moves = j.moves[:0]
		return fn(ctx, repos, j)
	})
	if err != nil {
		return b.fail(op, err)
	}
	b.afterCommit(ctx, j)
	return nil
}

func (b base) fail(op string, err error) error {
	if domain.IsDomainError(err) {
		return err
	}
	b.log.Error("operation failed", zap.String("op", op), zap.Error(err))
	return fmt.Errorf("%s: %w", op, domain.ErrOperationFailed)
}

func (b base) afterCommit(ctx context.Context, j *journal) {
	if len(j.moves) == 0 {
		return
	}
	if b.cache != nil {
		if err := b.cache.Set(ctx, StockVersionCacheKey, uuid.NewString(), 0); err != nil {
			b.log.Warn("failed to invalidate stock summary", zap.Error(err))
		}
	}
	if b.events == nil {
		return
	}
	if err := b.events.PublishMovements(ctx, j.moves); err != nil {
		b.log.Warn("failed to publish stock movements",
			zap.String("op", j.op), zap.Int("count", len(j.moves)), zap.Error(err))
	}
}

// requireStock fails with an InsufficientStockError when available < requested.
func requireStock(stage domain.Stage, id uuid.UUID, code string, available, requested decimal.Decimal) error {
	if available.LessThan(requested) {
		return &domain.InsufficientStockError{
			Stage:     stage,
			BatchID:   id,
			BatchCode: code,
			Available: available,
			Requested: requested,
		}
	}
	return nil
}

func dependencyError(resource string, id uuid.UUID, dependent string, count int) error {
	return &domain.DependencyError{Resource: resource, ID: id, Dependent: dependent, Count: count}
}
