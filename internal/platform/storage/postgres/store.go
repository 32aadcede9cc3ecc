/*
 * Copyright (c) 2025 Alessandro Faranda Gancio (dba TraceApi)
 *
 * This source code is licensed under the Business Source License 1.1.
 *
 * Change Date: 2027-11-28
 * Change License: AGPL-3.0
 */

package postgres

import (
	"context"

	"github.com/TraceApi/roastery-core/internal/core/ports"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is satisfied by both the pool and an open transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// WithinTx runs fn in a transaction. Reads through repos lock the rows they
// return until the transaction ends.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repos ports.Repositories) error) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(ctx, repositories{q: tx, lock: true})
	})
}

func (s *Store) Origins() ports.OriginRepository              { return s.repos().Origins() }
func (s *Store) GreenBatches() ports.GreenBatchRepository     { return s.repos().GreenBatches() }
func (s *Store) RoastedBatches() ports.RoastedBatchRepository { return s.repos().RoastedBatches() }
func (s *Store) Recipes() ports.RecipeRepository              { return s.repos().Recipes() }
func (s *Store) BlendedBatches() ports.BlendedBatchRepository { return s.repos().BlendedBatches() }
func (s *Store) Sales() ports.SaleRepository                  { return s.repos().Sales() }
func (s *Store) Reports() ports.ReportRepository              { return s.repos().Reports() }

func (s *Store) repos() repositories {
	return repositories{q: s.pool}
}

type repositories struct {
	q    querier
	lock bool
}

// forUpdate appends a row lock to single-table reads made inside a transaction.
func (r repositories) forUpdate(query string) string {
	if r.lock {
		return query + " FOR UPDATE"
	}
	return query
}

func (r repositories) Origins() ports.OriginRepository              { return originRepo{r} }
func (r repositories) GreenBatches() ports.GreenBatchRepository     { return greenRepo{r} }
func (r repositories) RoastedBatches() ports.RoastedBatchRepository { return roastedRepo{r} }
func (r repositories) Recipes() ports.RecipeRepository              { return recipeRepo{r} }
func (r repositories) BlendedBatches() ports.BlendedBatchRepository { return blendRepo{r} }
func (r repositories) Sales() ports.SaleRepository                  { return saleRepo{r} }
func (r repositories) Reports() ports.ReportRepository              { return reportRepo{r} }
