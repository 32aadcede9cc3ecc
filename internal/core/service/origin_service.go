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

type originService struct {
	base
}

var _ ports.OriginService = (*originService)(nil)

func NewOriginService(deps Dependencies) ports.OriginService {
	return &originService{base: newBase(deps, "origins")}
}

func (s *originService) ListOrigins(ctx context.Context) ([]*domain.Origin, error) {
	origins, err := s.store.Origins().List(ctx)
	if err != nil {
		return nil, s.fail("list origins", err)
	}
	return origins, nil
}

func (s *originService) GetOrigin(ctx context.Context, id uuid.UUID) (*domain.Origin, error) {
	origin, err := s.store.Origins().GetByID(ctx, id)
	if err != nil {
		return nil, s.fail("get origin", err)
	}
	return origin, nil
}

func (s *originService) AddOrigin(ctx context.Context, in ports.OriginInput) (*domain.Origin, error) {
	origin := originFromInput(uuid.New(), in)
	origin.CreatedAt = s.now()
	if err := origin.Validate(); err != nil {
		return nil, err
	}

	err := s.mutate(ctx, "add origin", func(ctx context.Context, repos ports.Repositories, _ *journal) error {
		return repos.Origins().Create(ctx, origin)
	})
	if err != nil {
		return nil, err
	}
	return origin, nil
}

// UpdateOrigin refuses to drop a supplier or farm that a green batch still names.
func (s *originService) UpdateOrigin(ctx context.Context, id uuid.UUID, in ports.OriginInput) (*domain.Origin, error) {
	next := originFromInput(id, in)
	if err := next.Validate(); err != nil {
		return nil, err
	}

	err := s.mutate(ctx, "update origin", func(ctx context.Context, repos ports.Repositories, _ *journal) error {
		current, err := repos.Origins().GetByID(ctx, id)
		if err != nil {
			return err
		}
		next.CreatedAt = current.CreatedAt

		if removed := current.RemovedSuppliers(next); len(removed) > 0 {
			batches, err := repos.GreenBatches().ListByOrigin(ctx, id)
			if err != nil {
				return err
			}
			for _, supplier := range removed {
				count := 0
				for _, b := range batches {
					if b.SupplierOrFarm == supplier {
						count++
					}
				}
				if count > 0 {
					return fmt.Errorf("supplier %q: %w", supplier,
						dependencyError("origin", id, "green batches", count))
				}
			}
		}
		return repos.Origins().Update(ctx, next)
	})
	if err != nil {
		return nil, err
	}
	return next, nil
}

func (s *originService) DeleteOrigin(ctx context.Context, id uuid.UUID) error {
	return s.mutate(ctx, "delete origin", func(ctx context.Context, repos ports.Repositories, _ *journal) error {
		if _, err := repos.Origins().GetByID(ctx, id); err != nil {
			return err
		}
		batches, err := repos.GreenBatches().ListByOrigin(ctx, id)
		if err != nil {
			return err
		}
		if len(batches) > 0 {
			return dependencyError("origin", id, "green batches", len(batches))
		}
		recipes, err := repos.Recipes().CountByOrigin(ctx, id)
		if err != nil {
			return err
		}
		if recipes > 0 {
			return dependencyError("origin", id, "recipes", recipes)
		}
		return repos.Origins().Delete(ctx, id)
	})
}

func originFromInput(id uuid.UUID, in ports.OriginInput) *domain.Origin {
	origin := &domain.Origin{
		ID:               id,
		Name:             in.Name,
		KilosPerBag:      in.KilosPerBag,
		SuppliersOrFarms: in.SuppliersOrFarms,
		Description:      in.Description,
	}
	origin.Normalize()
	return origin
}
