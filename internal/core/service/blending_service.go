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
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/TraceApi/roastery-core/internal/core/domain"
	"github.com/TraceApi/roastery-core/internal/core/ports"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type blendingService struct {
	base
}

var _ ports.BlendingService = (*blendingService)(nil)

func NewBlendingService(deps Dependencies) ports.BlendingService {
	return &blendingService{base: newBase(deps, "blending")}
}

func (s *blendingService) ListBlendedBatches(ctx context.Context) ([]*domain.BlendedBatch, error) {
	blends, err := s.store.BlendedBatches().List(ctx)
	if err != nil {
		return nil, s.fail("list blends", err)
	}
	return blends, nil
}

func (s *blendingService) GetBlendedBatch(ctx context.Context, id uuid.UUID) (*domain.BlendedBatch, error) {
	blend, err := s.store.BlendedBatches().GetByID(ctx, id)
	if err != nil {
		return nil, s.fail("get blend", err)
	}
	return blend, nil
}

// PlanBlend seeds a blend from a recipe. Candidates are the roasted batches of
// each component's origin that still hold stock, oldest roast first.
func (s *blendingService) PlanBlend(ctx context.Context, recipeID uuid.UUID, totalKg decimal.Decimal) (*domain.BlendPlan, error) {
	if !totalKg.IsPositive() {
		return nil, fmt.Errorf("%w: blend quantity must be greater than zero", domain.ErrInvalidQuantity)
	}
	recipe, err := s.store.Recipes().GetByID(ctx, recipeID)
	if err != nil {
		return nil, s.fail("plan blend", err)
	}

	plan := &domain.BlendPlan{
		RecipeID:        recipe.ID,
		RecipeName:      recipe.Name,
		TotalQuantityKg: totalKg,
		Components:      make([]domain.PlanComponent, 0, len(recipe.Components)),
	}
	for _, c := range recipe.Components {
		origin, err := s.store.Origins().GetByID(ctx, c.OriginID)
		if err != nil {
			return nil, s.fail("plan blend", err)
		}
		candidates, err := roastsOfOrigin(ctx, s.store, c.OriginID)
		if err != nil {
			return nil, s.fail("plan blend", err)
		}

		component := domain.PlanComponent{
			OriginID:    c.OriginID,
			OriginName:  origin.Name,
			Percentage:  c.Percentage,
			RequiredKg:  domain.ShareOf(totalKg, c.Percentage),
			AvailableKg: decimal.Zero,
			Candidates:  candidates,
		}
		for _, r := range candidates {
			component.AvailableKg = component.AvailableKg.Add(r.StockKg)
		}
		plan.Components = append(plan.Components, component)
	}
	return plan, nil
}

func (s *blendingService) CreateBlend(ctx context.Context, in ports.BlendInput) (*domain.BlendedBatch, error) {
	blend := blendFromInput(uuid.New(), in)
	if err := blend.ValidateComposition(); err != nil {
		return nil, err
	}
	blend.StockKg = blend.TotalQuantityKg
	blend.CreatedAt = s.now()

	err := s.mutate(ctx, "blend", func(ctx context.Context, repos ports.Repositories, j *journal) error {
		recipe, err := lookupRecipe(ctx, repos, blend.RecipeID)
		if err != nil {
			return err
		}
		if err := allocate(ctx, repos, blend, j); err != nil {
			return err
		}
		if blend.BatchCode == "" {
			blend.BatchCode = domain.BlendBatchCode(codeSource(blend, recipe), blend.CreationDate, s.suffix())
		}
		if err := repos.BlendedBatches().Create(ctx, blend); err != nil {
			return err
		}
		j.record(domain.StageBlended, blend.ID, blend.BatchCode, blend.StockKg)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return blend, nil
}

// UpdateBlendedBatch gives back everything the stored blend took, then
// validates and allocates the new component tree against the restored stock.
// Both happen in one unit of work, so a rejected edit keeps the old consumption.
func (s *blendingService) UpdateBlendedBatch(ctx context.Context, id uuid.UUID, in ports.BlendInput) (*domain.BlendedBatch, error) {
	next := blendFromInput(id, in)
	if err := next.ValidateComposition(); err != nil {
		return nil, err
	}

	err := s.mutate(ctx, "update blend", func(ctx context.Context, repos ports.Repositories, j *journal) error {
		current, err := repos.BlendedBatches().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if next.BatchCode == "" {
			next.BatchCode = current.BatchCode
		}
		next.CreatedAt = current.CreatedAt

		sold := current.SoldKg()
		if err := requireStock(domain.StageBlended, id, next.BatchCode, next.TotalQuantityKg, sold); err != nil {
			return err
		}
		next.StockKg = next.TotalQuantityKg.Sub(sold)

		if _, err := lookupRecipe(ctx, repos, next.RecipeID); err != nil {
			return err
		}
		if err := release(ctx, repos, current, j); err != nil {
			return err
		}
		if err := allocate(ctx, repos, next, j); err != nil {
			return err
		}
		if err := repos.BlendedBatches().Update(ctx, next); err != nil {
			return err
		}
		j.record(domain.StageBlended, id, next.BatchCode, next.StockKg.Sub(current.StockKg))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return next, nil
}

func (s *blendingService) DeleteBlendedBatch(ctx context.Context, id uuid.UUID) error {
	return s.mutate(ctx, "delete blend", func(ctx context.Context, repos ports.Repositories, j *journal) error {
		blend, err := repos.BlendedBatches().GetByID(ctx, id)
		if err != nil {
			return err
		}
		sales, err := repos.Sales().CountByProduct(ctx, domain.ProductRef{Type: domain.ProductBlended, ID: id})
		if err != nil {
			return err
		}
		if sales > 0 {
			return dependencyError("blended batch", id, "sales", sales)
		}
		if err := release(ctx, repos, blend, j); err != nil {
			return err
		}
		if err := repos.BlendedBatches().Delete(ctx, id); err != nil {
			return err
		}
		j.record(domain.StageBlended, id, blend.BatchCode, blend.StockKg.Neg())
		return nil
	})
}

// allocate checks that every allocated roasted batch exists, belongs to its
// component's origin and covers everything the blend takes from it, and only
// then deducts, once per distinct batch.
func allocate(ctx context.Context, repos ports.Repositories, blend *domain.BlendedBatch, j *journal) error {
	batches := make(map[uuid.UUID]*domain.RoastedBatch)
	originOf := make(map[uuid.UUID]uuid.UUID)

	for i, c := range blend.Components {
		for _, a := range c.Allocations {
			roast, ok := batches[a.RoastedBatchID]
			if !ok {
				var err error
				roast, err = repos.RoastedBatches().GetByID(ctx, a.RoastedBatchID)
				if err != nil {
					return err
				}
				batches[roast.ID] = roast
			}

			originID, ok := originOf[roast.GreenBatchID]
			if !ok {
				green, err := repos.GreenBatches().GetByID(ctx, roast.GreenBatchID)
				if err != nil {
					return err
				}
				originID = green.OriginID
				originOf[green.ID] = originID
			}
			if originID != c.OriginID {
				return fmt.Errorf("%w: roasted batch %s is not from the origin of component %d",
					domain.ErrInvalidInput, roast.BatchCode, i+1)
			}
		}
	}

	usage := blend.UsageByBatch()
	for _, u := range usage {
		roast := batches[u.RoastedBatchID]
		if err := requireStock(domain.StageRoasted, roast.ID, roast.BatchCode, roast.StockKg, u.QuantityKg); err != nil {
			return err
		}
	}
	for _, u := range usage {
		roast := batches[u.RoastedBatchID]
		if err := repos.RoastedBatches().AdjustStock(ctx, roast.ID, u.QuantityKg.Neg()); err != nil {
			return err
		}
		j.record(domain.StageRoasted, roast.ID, roast.BatchCode, u.QuantityKg.Neg())
	}
	return nil
}

// release restores every roasted batch the blend took from.
func release(ctx context.Context, repos ports.Repositories, blend *domain.BlendedBatch, j *journal) error {
	for _, u := range blend.UsageByBatch() {
		roast, err := repos.RoastedBatches().GetByID(ctx, u.RoastedBatchID)
		if err != nil {
			return err
		}
		if err := repos.RoastedBatches().AdjustStock(ctx, roast.ID, u.QuantityKg); err != nil {
			return err
		}
		j.record(domain.StageRoasted, roast.ID, roast.BatchCode, u.QuantityKg)
	}
	return nil
}

func lookupRecipe(ctx context.Context, repos ports.Repositories, id *uuid.UUID) (*domain.Recipe, error) {
	if id == nil {
		return nil, nil
	}
	recipe, err := repos.Recipes().GetByID(ctx, *id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%w: recipe %s does not exist", domain.ErrInvalidInput, *id)
	}
	return recipe, err
}

// roastsOfOrigin lists the roasted batches of an origin that still hold stock.
func roastsOfOrigin(ctx context.Context, repos ports.Repositories, originID uuid.UUID) ([]*domain.RoastedBatch, error) {
	greens, err := repos.GreenBatches().ListByOrigin(ctx, originID)
	if err != nil {
		return nil, err
	}
	var out []*domain.RoastedBatch
	for _, g := range greens {
		roasts, err := repos.RoastedBatches().ListByGreenBatch(ctx, g.ID)
		if err != nil {
			return nil, err
		}
		for _, r := range roasts {
			if r.StockKg.IsPositive() {
				out = append(out, r)
			}
		}
	}
	slices.SortFunc(out, func(a, b *domain.RoastedBatch) int {
		if c := a.RoastDate.Compare(b.RoastDate.Time); c != 0 {
			return c
		}
		return strings.Compare(a.BatchCode, b.BatchCode)
	})
	return out, nil
}

func codeSource(blend *domain.BlendedBatch, recipe *domain.Recipe) string {
	if recipe != nil {
		return recipe.Name
	}
	return blend.Name
}

func blendFromInput(id uuid.UUID, in ports.BlendInput) *domain.BlendedBatch {
	return &domain.BlendedBatch{
		ID:              id,
		Name:            in.Name,
		BatchCode:       in.BatchCode,
		RecipeID:        in.RecipeID,
		TotalQuantityKg: in.TotalQuantityKg,
		CreationDate:    in.CreationDate,
		Components:      in.Components,
	}
}
