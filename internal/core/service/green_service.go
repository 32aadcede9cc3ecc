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

	"github.com/TraceApi/roastery-core/internal/core/domain"
	"github.com/TraceApi/roastery-core/internal/core/ports"
	"github.com/google/uuid"
)

type greenCoffeeService struct {
	base
}

var _ ports.GreenCoffeeService = (*greenCoffeeService)(nil)

func NewGreenCoffeeService(deps Dependencies) ports.GreenCoffeeService {
	return &greenCoffeeService{base: newBase(deps, "green")}
}

func (s *greenCoffeeService) ListGreenBatches(ctx context.Context) ([]*domain.GreenBatch, error) {
	batches, err := s.store.GreenBatches().List(ctx)
	if err != nil {
		return nil, s.fail("list green batches", err)
	}
	return batches, nil
}

func (s *greenCoffeeService) GetGreenBatch(ctx context.Context, id uuid.UUID) (*domain.GreenBatch, error) {
	batch, err := s.store.GreenBatches().GetByID(ctx, id)
	if err != nil {
		return nil, s.fail("get green batch", err)
	}
	return batch, nil
}

func (s *greenCoffeeService) AddGreenBatch(ctx context.Context, in ports.GreenBatchInput) (*domain.GreenBatch, error) {
	batch := greenFromInput(uuid.New(), in)
	batch.QuantityKg = batch.ReceivedKg
	batch.CreatedAt = s.now()
	if err := batch.Validate(); err != nil {
		return nil, err
	}

	err := s.mutate(ctx, "add green batch", func(ctx context.Context, repos ports.Repositories, j *journal) error {
		if err := checkSupplier(ctx, repos, batch); err != nil {
			return err
		}
		if err := checkUniqueCode(ctx, repos, batch); err != nil {
			return err
		}
		if err := repos.GreenBatches().Create(ctx, batch); err != nil {
			return err
		}
		j.record(domain.StageGreen, batch.ID, batch.BatchCode, batch.QuantityKg)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return batch, nil
}

// UpdateGreenBatch keeps the mass already roasted: the remaining quantity
// becomes the new received quantity minus what roasts have taken.
func (s *greenCoffeeService) UpdateGreenBatch(ctx context.Context, id uuid.UUID, in ports.GreenBatchInput) (*domain.GreenBatch, error) {
	next := greenFromInput(id, in)
	if err := next.Validate(); err != nil {
		return nil, err
	}

	err := s.mutate(ctx, "update green batch", func(ctx context.Context, repos ports.Repositories, j *journal) error {
		current, err := repos.GreenBatches().GetByID(ctx, id)
		if err != nil {
			return err
		}

		if next.OriginID != current.OriginID {
			roasts, err := repos.RoastedBatches().ListByGreenBatch(ctx, id)
			if err != nil {
				return err
			}
			if len(roasts) > 0 {
				return fmt.Errorf("cannot move to another origin: %w",
					dependencyError("green batch", id, "roasted batches", len(roasts)))
			}
		}
		if err := checkSupplier(ctx, repos, next); err != nil {
			return err
		}
		if err := checkUniqueCode(ctx, repos, next); err != nil {
			return err
		}

		roasted := current.RoastedKg()
		if err := requireStock(domain.StageGreen, id, next.BatchCode, next.ReceivedKg, roasted); err != nil {
			return err
		}
		next.QuantityKg = next.ReceivedKg.Sub(roasted)
		next.CreatedAt = current.CreatedAt

		if err := repos.GreenBatches().Update(ctx, next); err != nil {
			return err
		}
		j.record(domain.StageGreen, id, next.BatchCode, next.QuantityKg.Sub(current.QuantityKg))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return next, nil
}

func (s *greenCoffeeService) DeleteGreenBatch(ctx context.Context, id uuid.UUID) error {
	return s.mutate(ctx, "delete green batch", func(ctx context.Context, repos ports.Repositories, j *journal) error {
		batch, err := repos.GreenBatches().GetByID(ctx, id)
		if err != nil {
			return err
		}
		roasts, err := repos.RoastedBatches().ListByGreenBatch(ctx, id)
		if err != nil {
			return err
		}
		if len(roasts) > 0 {
			return dependencyError("green batch", id, "roasted batches", len(roasts))
		}
		if err := repos.GreenBatches().Delete(ctx, id); err != nil {
			return err
		}
		j.record(domain.StageGreen, id, batch.BatchCode, batch.QuantityKg.Neg())
		return nil
	})
}

func greenFromInput(id uuid.UUID, in ports.GreenBatchInput) *domain.GreenBatch {
	return &domain.GreenBatch{
		ID:             id,
		OriginID:       in.OriginID,
		SupplierOrFarm: in.SupplierOrFarm,
		ReceivedKg:     in.QuantityKg,
		UnitPrice:      in.UnitPrice,
		EntryDate:      in.EntryDate,
		BatchCode:      in.BatchCode,
	}
}

// checkSupplier requires the batch's supplier to be listed on its origin.
func checkSupplier(ctx context.Context, repos ports.Repositories, batch *domain.GreenBatch) error {
	origin, err := repos.Origins().GetByID(ctx, batch.OriginID)
	if err != nil {
		return err
	}
	if len(origin.SuppliersOrFarms) == 0 {
		return fmt.Errorf("%w: origin %s has no suppliers or farms", domain.ErrInvalidInput, origin.Name)
	}
	if !origin.Supplies(batch.SupplierOrFarm) {
		return fmt.Errorf("%w: %q is not a supplier or farm of %s", domain.ErrInvalidInput, batch.SupplierOrFarm, origin.Name)
	}
	return nil
}

// checkUniqueCode enforces one batch per (batch code, origin).
func checkUniqueCode(ctx context.Context, repos ports.Repositories, batch *domain.GreenBatch) error {
	existing, err := repos.GreenBatches().FindByCode(ctx, batch.BatchCode, batch.OriginID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != batch.ID:
		return fmt.Errorf("%w: green batch %s already exists for this origin", domain.ErrConflict, batch.BatchCode)
	}
	return nil
}
