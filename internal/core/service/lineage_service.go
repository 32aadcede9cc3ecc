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
	"strings"

	"github.com/TraceApi/roastery-core/internal/core/domain"
	"github.com/TraceApi/roastery-core/internal/core/ports"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type lineageService struct {
	base
}

var _ ports.LineageService = (*lineageService)(nil)

func NewLineageService(deps Dependencies) ports.LineageService {
	return &lineageService{base: newBase(deps, "lineage")}
}

// Trace resolves a roasted or blended batch code down to its green lots.
// Supplier names and green prices are only included for restricted views.
func (s *lineageService) Trace(ctx context.Context, batchCode string) (*domain.Lineage, error) {
	batchCode = strings.TrimSpace(batchCode)
	if batchCode == "" {
		return nil, fmt.Errorf("%w: batch code is required", domain.ErrInvalidInput)
	}
	restricted := domain.IsRestrictedView(ctx)

	var lineage *domain.Lineage
	roast, err := s.store.RoastedBatches().GetByCode(ctx, batchCode)
	switch {
	case err == nil:
		lineage, err = s.traceRoast(ctx, roast, restricted)
	case errors.Is(err, domain.ErrNotFound):
		var blend *domain.BlendedBatch
		if blend, err = s.store.BlendedBatches().GetByCode(ctx, batchCode); err == nil {
			lineage, err = s.traceBlend(ctx, blend, restricted)
		}
	}
	if err != nil {
		return nil, s.fail("trace", err)
	}

	lineage.View = domain.ViewContextPublic
	if restricted {
		lineage.View = domain.ViewContextRestricted
	}
	return lineage, nil
}

func (s *lineageService) traceRoast(ctx context.Context, roast *domain.RoastedBatch, restricted bool) (*domain.Lineage, error) {
	source, originID, err := s.source(ctx, roast, roast.ResultantKg, restricted)
	if err != nil {
		return nil, err
	}
	origin, err := s.store.Origins().GetByID(ctx, originID)
	if err != nil {
		return nil, err
	}
	return &domain.Lineage{
		BatchCode:  roast.BatchCode,
		Stage:      domain.StageRoasted,
		Date:       roast.RoastDate,
		QuantityKg: roast.ResultantKg,
		Components: []domain.LineageComponent{{
			OriginName: origin.Name,
			Percentage: domain.Hundred,
			Sources:    []domain.LineageSource{source},
		}},
	}, nil
}

func (s *lineageService) traceBlend(ctx context.Context, blend *domain.BlendedBatch, restricted bool) (*domain.Lineage, error) {
	lineage := &domain.Lineage{
		BatchCode:  blend.BatchCode,
		Stage:      domain.StageBlended,
		Name:       blend.Name,
		Date:       blend.CreationDate,
		QuantityKg: blend.TotalQuantityKg,
		Components: make([]domain.LineageComponent, 0, len(blend.Components)),
	}
	for _, c := range blend.Components {
		origin, err := s.store.Origins().GetByID(ctx, c.OriginID)
		if err != nil {
			return nil, err
		}
		component := domain.LineageComponent{OriginName: origin.Name, Percentage: c.Percentage}
		for _, a := range c.Allocations {
			roast, err := s.store.RoastedBatches().GetByID(ctx, a.RoastedBatchID)
			if err != nil {
				return nil, err
			}
			source, _, err := s.source(ctx, roast, a.QuantityUsedKg, restricted)
			if err != nil {
				return nil, err
			}
			component.Sources = append(component.Sources, source)
		}
		lineage.Components = append(lineage.Components, component)
	}
	return lineage, nil
}

func (s *lineageService) source(ctx context.Context, roast *domain.RoastedBatch, used decimal.Decimal, restricted bool) (domain.LineageSource, uuid.UUID, error) {
	green, err := s.store.GreenBatches().GetByID(ctx, roast.GreenBatchID)
	if err != nil {
		return domain.LineageSource{}, uuid.Nil, err
	}
	src := domain.LineageSource{
		RoastedBatchCode: roast.BatchCode,
		RoastType:        roast.RoastType,
		RoastDate:        roast.RoastDate,
		QuantityUsedKg:   used,
		GreenBatchCode:   green.BatchCode,
		EntryDate:        green.EntryDate,
	}
	if restricted {
		price := green.UnitPrice
		src.SupplierOrFarm = green.SupplierOrFarm
		src.GreenUnitPrice = &price
	}
	return src, green.OriginID, nil
}
