/*
 * Copyright (c) 2025 Alessandro Faranda Gancio (dba TraceApi)
 *
 * This source code is licensed under the Business Source License 1.1.
 *
 * Change Date: 2027-11-28
 * Change License: AGPL-3.0
 */

package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/TraceApi/roastery-core/internal/core/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// newestFirst orders records like the Postgres store (created_at DESC).
func newestFirst[T any](items []*T, createdAt func(*T) time.Time, id func(*T) uuid.UUID) []*T {
	slices.SortFunc(items, func(a, b *T) int {
		if c := createdAt(b).Compare(createdAt(a)); c != 0 {
			return c
		}
		return cmp.Compare(id(a).String(), id(b).String())
	})
	return items
}

func notFound(kind string, id any) error {
	return fmt.Errorf("%s %v: %w", kind, id, domain.ErrNotFound)
}

func adjust(current, delta decimal.Decimal) (decimal.Decimal, error) {
	next := current.Add(delta)
	if next.IsNegative() {
		return current, fmt.Errorf("%w: stock would drop to %s kg", domain.ErrInsufficientStock, next.StringFixed(2))
	}
	return next, nil
}

// --- Origins ---

type originRepo struct{ r repositories }

func (o originRepo) List(ctx context.Context) ([]*domain.Origin, error) {
	var out []*domain.Origin
	err := o.r.with(func(st *state) error {
		for _, v := range st.origins {
			c := cloneOrigin(v)
			out = append(out, &c)
		}
		return nil
	})
	return newestFirst(out, func(v *domain.Origin) time.Time { return v.CreatedAt }, func(v *domain.Origin) uuid.UUID { return v.ID }), err
}

func (o originRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Origin, error) {
	var out *domain.Origin
	err := o.r.with(func(st *state) error {
		v, ok := st.origins[id]
		if !ok {
			return notFound("origin", id)
		}
		c := cloneOrigin(v)
		out = &c
		return nil
	})
	return out, err
}

func (o originRepo) Create(ctx context.Context, origin *domain.Origin) error {
	return o.r.with(func(st *state) error {
		if _, ok := st.origins[origin.ID]; ok {
			return fmt.Errorf("origin %s: %w", origin.ID, domain.ErrConflict)
		}
		st.origins[origin.ID] = cloneOrigin(*origin)
		return nil
	})
}

func (o originRepo) Update(ctx context.Context, origin *domain.Origin) error {
	return o.r.with(func(st *state) error {
		if _, ok := st.origins[origin.ID]; !ok {
			return notFound("origin", origin.ID)
		}
		st.origins[origin.ID] = cloneOrigin(*origin)
		return nil
	})
}

func (o originRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return o.r.with(func(st *state) error {
		if _, ok := st.origins[id]; !ok {
			return notFound("origin", id)
		}
		delete(st.origins, id)
		return nil
	})
}

// --- Green batches ---

type greenRepo struct{ r repositories }

func (g greenRepo) list(filter func(domain.GreenBatch) bool) ([]*domain.GreenBatch, error) {
	var out []*domain.GreenBatch
	err := g.r.with(func(st *state) error {
		for _, v := range st.green {
			if filter(v) {
				c := v
				out = append(out, &c)
			}
		}
		return nil
	})
	return newestFirst(out, func(v *domain.GreenBatch) time.Time { return v.CreatedAt }, func(v *domain.GreenBatch) uuid.UUID { return v.ID }), err
}

func (g greenRepo) List(ctx context.Context) ([]*domain.GreenBatch, error) {
	return g.list(func(domain.GreenBatch) bool { return true })
}

func (g greenRepo) ListByOrigin(ctx context.Context, originID uuid.UUID) ([]*domain.GreenBatch, error) {
	return g.list(func(v domain.GreenBatch) bool { return v.OriginID == originID })
}

func (g greenRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.GreenBatch, error) {
	var out *domain.GreenBatch
	err := g.r.with(func(st *state) error {
		v, ok := st.green[id]
		if !ok {
			return notFound("green batch", id)
		}
		out = &v
		return nil
	})
	return out, err
}

func (g greenRepo) FindByCode(ctx context.Context, batchCode string, originID uuid.UUID) (*domain.GreenBatch, error) {
	found, err := g.list(func(v domain.GreenBatch) bool { return v.BatchCode == batchCode && v.OriginID == originID })
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, notFound("green batch", batchCode)
	}
	return found[0], nil
}

func (g greenRepo) Create(ctx context.Context, batch *domain.GreenBatch) error {
	return g.r.with(func(st *state) error {
		if _, ok := st.origins[batch.OriginID]; !ok {
			return notFound("origin", batch.OriginID)
		}
		for _, v := range st.green {
			if v.ID == batch.ID || (v.BatchCode == batch.BatchCode && v.OriginID == batch.OriginID) {
				return fmt.Errorf("green batch %s: %w", batch.BatchCode, domain.ErrConflict)
			}
		}
		st.green[batch.ID] = *batch
		return nil
	})
}

func (g greenRepo) Update(ctx context.Context, batch *domain.GreenBatch) error {
	return g.r.with(func(st *state) error {
		if _, ok := st.green[batch.ID]; !ok {
			return notFound("green batch", batch.ID)
		}
		st.green[batch.ID] = *batch
		return nil
	})
}

func (g greenRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return g.r.with(func(st *state) error {
		if _, ok := st.green[id]; !ok {
			return notFound("green batch", id)
		}
		delete(st.green, id)
		return nil
	})
}

func (g greenRepo) AdjustStock(ctx context.Context, id uuid.UUID, delta decimal.Decimal) error {
	return g.r.with(func(st *state) error {
		v, ok := st.green[id]
		if !ok {
			return notFound("green batch", id)
		}
		next, err := adjust(v.QuantityKg, delta)
		if err != nil {
			return err
		}
		v.QuantityKg = next
		st.green[id] = v
		return nil
	})
}

// --- Roasted batches ---

type roastedRepo struct{ r repositories }

func (ro roastedRepo) list(filter func(domain.RoastedBatch) bool) ([]*domain.RoastedBatch, error) {
	var out []*domain.RoastedBatch
	err := ro.r.with(func(st *state) error {
		for _, v := range st.roasted {
			if filter(v) {
				c := v
				out = append(out, &c)
			}
		}
		return nil
	})
	return newestFirst(out, func(v *domain.RoastedBatch) time.Time { return v.CreatedAt }, func(v *domain.RoastedBatch) uuid.UUID { return v.ID }), err
}

func (ro roastedRepo) List(ctx context.Context) ([]*domain.RoastedBatch, error) {
	return ro.list(func(domain.RoastedBatch) bool { return true })
}

func (ro roastedRepo) ListByGreenBatch(ctx context.Context, greenBatchID uuid.UUID) ([]*domain.RoastedBatch, error) {
	return ro.list(func(v domain.RoastedBatch) bool { return v.GreenBatchID == greenBatchID })
}

func (ro roastedRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.RoastedBatch, error) {
	var out *domain.RoastedBatch
	err := ro.r.with(func(st *state) error {
		v, ok := st.roasted[id]
		if !ok {
			return notFound("roasted batch", id)
		}
		out = &v
		return nil
	})
	return out, err
}

func (ro roastedRepo) GetByCode(ctx context.Context, batchCode string) (*domain.RoastedBatch, error) {
	found, err := ro.list(func(v domain.RoastedBatch) bool { return v.BatchCode == batchCode })
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, notFound("roasted batch", batchCode)
	}
	return found[0], nil
}

func (ro roastedRepo) Create(ctx context.Context, batch *domain.RoastedBatch) error {
	return ro.r.with(func(st *state) error {
		if _, ok := st.green[batch.GreenBatchID]; !ok {
			return notFound("green batch", batch.GreenBatchID)
		}
		if _, ok := st.roasted[batch.ID]; ok {
			return fmt.Errorf("roasted batch %s: %w", batch.ID, domain.ErrConflict)
		}
		st.roasted[batch.ID] = *batch
		return nil
	})
}

func (ro roastedRepo) Update(ctx context.Context, batch *domain.RoastedBatch) error {
	return ro.r.with(func(st *state) error {
		if _, ok := st.roasted[batch.ID]; !ok {
			return notFound("roasted batch", batch.ID)
		}
		if _, ok := st.green[batch.GreenBatchID]; !ok {
			return notFound("green batch", batch.GreenBatchID)
		}
		st.roasted[batch.ID] = *batch
		return nil
	})
}

func (ro roastedRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return ro.r.with(func(st *state) error {
		if _, ok := st.roasted[id]; !ok {
			return notFound("roasted batch", id)
		}
		delete(st.roasted, id)
		return nil
	})
}

func (ro roastedRepo) AdjustStock(ctx context.Context, id uuid.UUID, delta decimal.Decimal) error {
	return ro.r.with(func(st *state) error {
		v, ok := st.roasted[id]
		if !ok {
			return notFound("roasted batch", id)
		}
		next, err := adjust(v.StockKg, delta)
		if err != nil {
			return err
		}
		v.StockKg = next
		st.roasted[id] = v
		return nil
	})
}

// --- Recipes ---

type recipeRepo struct{ r repositories }

func (rc recipeRepo) List(ctx context.Context) ([]*domain.Recipe, error) {
	var out []*domain.Recipe
	err := rc.r.with(func(st *state) error {
		for _, v := range st.recipes {
			c := cloneRecipe(v)
			out = append(out, &c)
		}
		return nil
	})
	return newestFirst(out, func(v *domain.Recipe) time.Time { return v.CreatedAt }, func(v *domain.Recipe) uuid.UUID { return v.ID }), err
}

func (rc recipeRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Recipe, error) {
	var out *domain.Recipe
	err := rc.r.with(func(st *state) error {
		v, ok := st.recipes[id]
		if !ok {
			return notFound("recipe", id)
		}
		c := cloneRecipe(v)
		out = &c
		return nil
	})
	return out, err
}

func (rc recipeRepo) Create(ctx context.Context, recipe *domain.Recipe) error {
	return rc.r.with(func(st *state) error {
		if _, ok := st.recipes[recipe.ID]; ok {
			return fmt.Errorf("recipe %s: %w", recipe.ID, domain.ErrConflict)
		}
		st.recipes[recipe.ID] = cloneRecipe(*recipe)
		return nil
	})
}

func (rc recipeRepo) Update(ctx context.Context, recipe *domain.Recipe) error {
	return rc.r.with(func(st *state) error {
		if _, ok := st.recipes[recipe.ID]; !ok {
			return notFound("recipe", recipe.ID)
		}
		st.recipes[recipe.ID] = cloneRecipe(*recipe)
		return nil
	})
}

func (rc recipeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return rc.r.with(func(st *state) error {
		if _, ok := st.recipes[id]; !ok {
			return notFound("recipe", id)
		}
		delete(st.recipes, id)
		return nil
	})
}

func (rc recipeRepo) CountByOrigin(ctx context.Context, originID uuid.UUID) (int, error) {
	count := 0
	err := rc.r.with(func(st *state) error {
		for _, v := range st.recipes {
			if v.UsesOrigin(originID) {
				count++
			}
		}
		return nil
	})
	return count, err
}

// --- Blended batches ---

type blendRepo struct{ r repositories }

func (b blendRepo) list(filter func(domain.BlendedBatch) bool) ([]*domain.BlendedBatch, error) {
	var out []*domain.BlendedBatch
	err := b.r.with(func(st *state) error {
		for _, v := range st.blends {
			if filter(v) {
				c := cloneBlend(v)
				out = append(out, &c)
			}
		}
		return nil
	})
	return newestFirst(out, func(v *domain.BlendedBatch) time.Time { return v.CreatedAt }, func(v *domain.BlendedBatch) uuid.UUID { return v.ID }), err
}

func (b blendRepo) List(ctx context.Context) ([]*domain.BlendedBatch, error) {
	return b.list(func(domain.BlendedBatch) bool { return true })
}

func (b blendRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.BlendedBatch, error) {
	var out *domain.BlendedBatch
	err := b.r.with(func(st *state) error {
		v, ok := st.blends[id]
		if !ok {
			return notFound("blended batch", id)
		}
		c := cloneBlend(v)
		out = &c
		return nil
	})
	return out, err
}

func (b blendRepo) GetByCode(ctx context.Context, batchCode string) (*domain.BlendedBatch, error) {
	found, err := b.list(func(v domain.BlendedBatch) bool { return v.BatchCode == batchCode })
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, notFound("blended batch", batchCode)
	}
	return found[0], nil
}

// checkRefs mirrors the foreign keys of the Postgres schema.
func (b blendRepo) checkRefs(st *state, blend *domain.BlendedBatch) error {
	if blend.RecipeID != nil {
		if _, ok := st.recipes[*blend.RecipeID]; !ok {
			return notFound("recipe", *blend.RecipeID)
		}
	}
	for _, c := range blend.Components {
		for _, a := range c.Allocations {
			if _, ok := st.roasted[a.RoastedBatchID]; !ok {
				return notFound("roasted batch", a.RoastedBatchID)
			}
		}
	}
	return nil
}

func (b blendRepo) Create(ctx context.Context, blend *domain.BlendedBatch) error {
	return b.r.with(func(st *state) error {
		if _, ok := st.blends[blend.ID]; ok {
			return fmt.Errorf("blended batch %s: %w", blend.ID, domain.ErrConflict)
		}
		if err := b.checkRefs(st, blend); err != nil {
			return err
		}
		st.blends[blend.ID] = cloneBlend(*blend)
		return nil
	})
}

func (b blendRepo) Update(ctx context.Context, blend *domain.BlendedBatch) error {
	return b.r.with(func(st *state) error {
		if _, ok := st.blends[blend.ID]; !ok {
			return notFound("blended batch", blend.ID)
		}
		if err := b.checkRefs(st, blend); err != nil {
			return err
		}
		st.blends[blend.ID] = cloneBlend(*blend)
		return nil
	})
}

func (b blendRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return b.r.with(func(st *state) error {
		if _, ok := st.blends[id]; !ok {
			return notFound("blended batch", id)
		}
		delete(st.blends, id)
		return nil
	})
}

func (b blendRepo) AdjustStock(ctx context.Context, id uuid.UUID, delta decimal.Decimal) error {
	return b.r.with(func(st *state) error {
		v, ok := st.blends[id]
		if !ok {
			return notFound("blended batch", id)
		}
		next, err := adjust(v.StockKg, delta)
		if err != nil {
			return err
		}
		v.StockKg = next
		st.blends[id] = v
		return nil
	})
}

func (b blendRepo) CountAllocations(ctx context.Context, roastedBatchID uuid.UUID) (int, error) {
	count := 0
	err := b.r.with(func(st *state) error {
		for _, v := range st.blends {
			for _, c := range v.Components {
				for _, a := range c.Allocations {
					if a.RoastedBatchID == roastedBatchID {
						count++
					}
				}
			}
		}
		return nil
	})
	return count, err
}

func (b blendRepo) ClearRecipe(ctx context.Context, recipeID uuid.UUID) error {
	return b.r.with(func(st *state) error {
		for id, v := range st.blends {
			if v.RecipeID != nil && *v.RecipeID == recipeID {
				v.RecipeID = nil
				st.blends[id] = v
			}
		}
		return nil
	})
}

// --- Sales ---

type saleRepo struct{ r repositories }

func (s saleRepo) List(ctx context.Context) ([]*domain.Sale, error) {
	var out []*domain.Sale
	err := s.r.with(func(st *state) error {
		for _, v := range st.sales {
			c := v
			out = append(out, &c)
		}
		return nil
	})
	return newestFirst(out, func(v *domain.Sale) time.Time { return v.CreatedAt }, func(v *domain.Sale) uuid.UUID { return v.ID }), err
}

func (s saleRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Sale, error) {
	var out *domain.Sale
	err := s.r.with(func(st *state) error {
		v, ok := st.sales[id]
		if !ok {
			return notFound("sale", id)
		}
		out = &v
		return nil
	})
	return out, err
}

func (s saleRepo) checkProduct(st *state, ref domain.ProductRef) error {
	switch ref.Type {
	case domain.ProductRoasted:
		if _, ok := st.roasted[ref.ID]; ok {
			return nil
		}
	case domain.ProductBlended:
		if _, ok := st.blends[ref.ID]; ok {
			return nil
		}
	}
	return notFound("product", ref)
}

func (s saleRepo) Create(ctx context.Context, sale *domain.Sale) error {
	return s.r.with(func(st *state) error {
		if _, ok := st.sales[sale.ID]; ok {
			return fmt.Errorf("sale %s: %w", sale.ID, domain.ErrConflict)
		}
		if err := s.checkProduct(st, sale.Product); err != nil {
			return err
		}
		st.sales[sale.ID] = *sale
		return nil
	})
}

func (s saleRepo) Update(ctx context.Context, sale *domain.Sale) error {
	return s.r.with(func(st *state) error {
		if _, ok := st.sales[sale.ID]; !ok {
			return notFound("sale", sale.ID)
		}
		if err := s.checkProduct(st, sale.Product); err != nil {
			return err
		}
		st.sales[sale.ID] = *sale
		return nil
	})
}

func (s saleRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return s.r.with(func(st *state) error {
		if _, ok := st.sales[id]; !ok {
			return notFound("sale", id)
		}
		delete(st.sales, id)
		return nil
	})
}

func (s saleRepo) CountByProduct(ctx context.Context, ref domain.ProductRef) (int, error) {
	count := 0
	err := s.r.with(func(st *state) error {
		for _, v := range st.sales {
			if v.Product == ref {
				count++
			}
		}
		return nil
	})
	return count, err
}
