/*
 * Copyright (c) 2025 Alessandro Faranda Gancio (dba TraceApi)
 *
 * This source code is licensed under the Business Source License 1.1.
 *
 * Change Date: 2027-11-28
 * Change License: AGPL-3.0
 */

// Package memory is a process-local ports.Store. A unit of work runs against a
// deep copy of the ledgers that replaces the live copy only when it succeeds.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/TraceApi/roastery-core/internal/core/domain"
	"github.com/TraceApi/roastery-core/internal/core/ports"
	"github.com/google/uuid"
)

type state struct {
	origins map[uuid.UUID]domain.Origin
	green   map[uuid.UUID]domain.GreenBatch
	roasted map[uuid.UUID]domain.RoastedBatch
	recipes map[uuid.UUID]domain.Recipe
	blends  map[uuid.UUID]domain.BlendedBatch
	sales   map[uuid.UUID]domain.Sale
}

func newState() *state {
	return &state{
		origins: map[uuid.UUID]domain.Origin{},
		green:   map[uuid.UUID]domain.GreenBatch{},
		roasted: map[uuid.UUID]domain.RoastedBatch{},
		recipes: map[uuid.UUID]domain.Recipe{},
		blends:  map[uuid.UUID]domain.BlendedBatch{},
		sales:   map[uuid.UUID]domain.Sale{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.origins {
		c.origins[k] = cloneOrigin(v)
	}
	for k, v := range s.green {
		c.green[k] = v
	}
	for k, v := range s.roasted {
		c.roasted[k] = v
	}
	for k, v := range s.recipes {
		c.recipes[k] = cloneRecipe(v)
	}
	for k, v := range s.blends {
		c.blends[k] = cloneBlend(v)
	}
	for k, v := range s.sales {
		c.sales[k] = v
	}
	return c
}

func cloneOrigin(o domain.Origin) domain.Origin {
	o.SuppliersOrFarms = slices.Clone(o.SuppliersOrFarms)
	return o
}

func cloneRecipe(r domain.Recipe) domain.Recipe {
	r.Components = slices.Clone(r.Components)
	return r
}

func cloneBlend(b domain.BlendedBatch) domain.BlendedBatch {
	if b.RecipeID != nil {
		id := *b.RecipeID
		b.RecipeID = &id
	}
	components := make([]domain.BlendComponent, len(b.Components))
	for i, c := range b.Components {
		c.Allocations = slices.Clone(c.Allocations)
		components[i] = c
	}
	b.Components = components
	return b
}

// Store keeps all ledgers in memory. Mutations are serialised.
type Store struct {
	mu sync.Mutex
	st *state
}

var _ ports.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{st: newState()}
}

// WithinTx runs fn against a private copy of the ledgers and publishes the
// copy only if fn succeeds.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repos ports.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	work := s.st.clone()
	if err := fn(ctx, repositories{tx: work}); err != nil {
		return err
	}
	s.st = work
	return nil
}

func (s *Store) Origins() ports.OriginRepository             { return repositories{store: s}.Origins() }
func (s *Store) GreenBatches() ports.GreenBatchRepository     { return repositories{store: s}.GreenBatches() }
func (s *Store) RoastedBatches() ports.RoastedBatchRepository { return repositories{store: s}.RoastedBatches() }
func (s *Store) Recipes() ports.RecipeRepository              { return repositories{store: s}.Recipes() }
func (s *Store) BlendedBatches() ports.BlendedBatchRepository { return repositories{store: s}.BlendedBatches() }
func (s *Store) Sales() ports.SaleRepository                  { return repositories{store: s}.Sales() }
func (s *Store) Reports() ports.ReportRepository              { return repositories{store: s}.Reports() }

// repositories is bound either to the live store (store set) or to the working
// copy of an open transaction (tx set).
type repositories struct {
	store *Store
	tx    *state
}

func (r repositories) with(fn func(st *state) error) error {
	if r.tx != nil {
		return fn(r.tx)
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return fn(r.store.st)
}

func (r repositories) Origins() ports.OriginRepository             { return originRepo{r} }
func (r repositories) GreenBatches() ports.GreenBatchRepository     { return greenRepo{r} }
func (r repositories) RoastedBatches() ports.RoastedBatchRepository { return roastedRepo{r} }
func (r repositories) Recipes() ports.RecipeRepository              { return recipeRepo{r} }
func (r repositories) BlendedBatches() ports.BlendedBatchRepository { return blendRepo{r} }
func (r repositories) Sales() ports.SaleRepository                  { return saleRepo{r} }
func (r repositories) Reports() ports.ReportRepository              { return reportRepo{r} }
