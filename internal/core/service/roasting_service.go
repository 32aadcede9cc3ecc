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

	"github.com/TraceApi/roastery-core/internal/core/domain"
	"github.com/TraceApi/roastery-core/internal/core/ports"
	"github.com/google/uuid"
)

type roastingService struct {
	base
}

var _ ports.RoastingService = (*roastingService)(nil)

func NewRoastingService(deps Dependencies) ports.RoastingService {
	return &roastingService{base: newBase(deps, "roasting")}
}

func (s *roastingService) ListRoastedBatches(ctx context.Context) ([]*domain.RoastedBatch, error) {
	batches, err := s.store.RoastedBatches().List(ctx)
	if err != nil {
		return nil, s.fail("list roasted batches", err)
	}
	return batches, nil
}

func (s *roastingService) GetRoastedBatch(ctx context.Context, id uuid.UUID) (*domain.RoastedBatch, error) {
	batch, err := s.store.RoastedBatches().GetByID(ctx, id)
	if err != nil {
		return nil, s.fail("get roasted batch", err)
	}
	return batch, nil
}

// RoastCoffee takes QuantityGreenKg from the green batch and records the roast.
func (s *roastingService) RoastCoffee(ctx context.Context, in ports.RoastInput) (*domain.RoastedBatch, error) {
	roast := roastFromInput(uuid.New(), in)
	if err := roast.Validate(); err != nil {
		return nil, err
	}
	roast.StockKg = roast.ResultantKg
	roast.CreatedAt = s.now()

	err := s.mutate(ctx, "roast", func(ctx context.Context, repos ports.Repositories, j *journal) error {
		green, err := repos.GreenBatches().GetByID(ctx, roast.GreenBatchID)
		if err != nil {
			return err
		}
		if err := requireStock(domain.StageGreen, green.ID, green.BatchCode, green.QuantityKg, roast.QuantityGreenKg); err != nil {
			return err
		}
		if roast.BatchCode == "" {
			origin, err := repos.Origins().GetByID(ctx, green.OriginID)
			if err != nil {
				return err
			}
			roast.BatchCode = domain.RoastBatchCode(origin.Name, roast.RoastDate, s.suffix())
		}

		if err := repos.GreenBatches().AdjustStock(ctx, green.ID, roast.QuantityGreenKg.Neg()); err != nil {
			return err
		}
		if err := repos.RoastedBatches().Create(ctx, roast); err != nil {
			return err
		}
		j.record(domain.StageGreen, green.ID, green.BatchCode, roast.QuantityGreenKg.Neg())
		j.record(domain.StageRoasted, roast.ID, roast.BatchCode, roast.StockKg)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return roast, nil
}

// UpdateRoastedBatch gives the original green quantity back to the original
// green batch, then takes the new quantity from the (possibly different)
// target batch as it stands after the restore.
func (s *roastingService) UpdateRoastedBatch(ctx context.Context, id uuid.UUID, in ports.RoastInput) (*domain.RoastedBatch, error) {
	next := roastFromInput(id, in)
	if err := next.Validate(); err != nil {
		return nil, err
	}

	err := s.mutate(ctx, "update roast", func(ctx context.Context, repos ports.Repositories, j *journal) error {
		current, err := repos.RoastedBatches().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if next.BatchCode == "" {
			next.BatchCode = current.BatchCode
		}
		next.CreatedAt = current.CreatedAt

		consumed := current.ConsumedKg()
		if err := requireStock(domain.StageRoasted, id, next.BatchCode, next.ResultantKg, consumed); err != nil {
			return err
		}
		next.StockKg = next.ResultantKg.Sub(consumed)

		source, err := repos.GreenBatches().GetByID(ctx, current.GreenBatchID)
		if err != nil {
			return err
		}
		if next.GreenBatchID != current.GreenBatchID {
			if err := s.checkOriginMove(ctx, repos, current, source, next.GreenBatchID); err != nil {
				return err
			}
		}

		if err := repos.GreenBatches().AdjustStock(ctx, source.ID, current.QuantityGreenKg); err != nil {
			return err
		}
		j.record(domain.StageGreen, source.ID, source.BatchCode, current.QuantityGreenKg)

		target, err := repos.GreenBatches().GetByID(ctx, next.GreenBatchID)
		if err != nil {
			return err
		}
		if err := requireStock(domain.StageGreen, target.ID, target.BatchCode, target.QuantityKg, next.QuantityGreenKg); err != nil {
			return err
		}
		if err := repos.GreenBatches().AdjustStock(ctx, target.ID, next.QuantityGreenKg.Neg()); err != nil {
			return err
		}
		j.record(domain.StageGreen, target.ID, target.BatchCode, next.QuantityGreenKg.Neg())

		if err := repos.RoastedBatches().Update(ctx, next); err != nil {
			return err
		}
		j.record(domain.StageRoasted, id, next.BatchCode, next.StockKg.Sub(current.StockKg))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return next, nil
}

// checkOriginMove rejects moving a roast that blends draw on to a green batch
// of another origin, since the blend components are bound to the old origin.
func (s *roastingService) checkOriginMove(ctx context.Context, repos ports.Repositories, current *domain.RoastedBatch, source *domain.GreenBatch, targetID uuid.UUID) error {
	allocations, err := repos.BlendedBatches().CountAllocations(ctx, current.ID)
	if err != nil || allocations == 0 {
		return err
	}
	target, err := repos.GreenBatches().GetByID(ctx, targetID)
	if err != nil {
		return err
	}
	if target.OriginID != source.OriginID {
		return fmt.Errorf("cannot move to another origin: %w",
			dependencyError("roasted batch", current.ID, "blend allocations", allocations))
	}
	return nil
}

func (s *roastingService) DeleteRoastedBatch(ctx context.Context, id uuid.UUID) error {
	return s.mutate(ctx, "delete roast", func(ctx context.Context, repos ports.Repositories, j *journal) error {
		roast, err := repos.RoastedBatches().GetByID(ctx, id)
		if err != nil {
			return err
		}
		allocations, err := repos.BlendedBatches().CountAllocations(ctx, id)
		if err != nil {
			return err
		}
		if allocations > 0 {
			return dependencyError("roasted batch", id, "blend allocations", allocations)
		}
		sales, err := repos.Sales().CountByProduct(ctx, domain.ProductRef{Type: domain.ProductRoasted, ID: id})
		if err != nil {
			return err
		}
		if sales > 0 {
			return dependencyError("roasted batch", id, "sales", sales)
		}

		green, err := repos.GreenBatches().GetByID(ctx, roast.GreenBatchID)
		if err != nil {
			return err
		}
		if err := repos.GreenBatches().AdjustStock(ctx, green.ID, roast.QuantityGreenKg); err != nil {
			return err
		}
		if err := repos.RoastedBatches().Delete(ctx, id); err != nil {
			return err
		}
		j.record(domain.StageGreen, green.ID, green.BatchCode, roast.QuantityGreenKg)
		j.record(domain.StageRoasted, id, roast.BatchCode, roast.StockKg.Neg())
		return nil
	})
}

func roastFromInput(id uuid.UUID, in ports.RoastInput) *domain.RoastedBatch {
	return &domain.RoastedBatch{
		ID:              id,
		GreenBatchID:    in.GreenBatchID,
		QuantityGreenKg: in.QuantityGreenKg,
		ResultantKg:     in.ResultantKg,
		RoastType:       in.RoastType,
		RoastDate:       in.RoastDate,
		BatchCode:       in.BatchCode,
	}
}
