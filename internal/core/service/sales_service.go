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
	"crypto/sha256"
	"encoding/hex"

	"github.com/TraceApi/roastery-core/internal/core/domain"
	"github.com/TraceApi/roastery-core/internal/core/ports"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type salesService struct {
	base
}

var _ ports.SalesService = (*salesService)(nil)

func NewSalesService(deps Dependencies) ports.SalesService {
	return &salesService{base: newBase(deps, "sales")}
}

func (s *salesService) ListSales(ctx context.Context) ([]*domain.Sale, error) {
	sales, err := s.store.Sales().List(ctx)
	if err != nil {
		return nil, s.fail("list sales", err)
	}
	return sales, nil
}

func (s *salesService) GetSale(ctx context.Context, id uuid.UUID) (*domain.Sale, error) {
	sale, err := s.store.Sales().GetByID(ctx, id)
	if err != nil {
		return nil, s.fail("get sale", err)
	}
	return sale, nil
}

// ListSellableProducts returns every roasted and blended batch with stock left.
func (s *salesService) ListSellableProducts(ctx context.Context) ([]domain.SellableProduct, error) {
	roasts, err := s.store.RoastedBatches().List(ctx)
	if err != nil {
		return nil, s.fail("list sellable products", err)
	}
	blends, err := s.store.BlendedBatches().List(ctx)
	if err != nil {
		return nil, s.fail("list sellable products", err)
	}

	originNames := make(map[uuid.UUID]string)
	var products []domain.SellableProduct
	for _, r := range roasts {
		if !r.StockKg.IsPositive() {
			continue
		}
		name, ok := originNames[r.GreenBatchID]
		if !ok {
			name = s.roastName(ctx, r)
			originNames[r.GreenBatchID] = name
		}
		products = append(products, domain.SellableProduct{
			Ref:       domain.ProductRef{Type: domain.ProductRoasted, ID: r.ID},
			Name:      name,
			BatchCode: r.BatchCode,
			StockKg:   r.StockKg,
		})
	}
	for _, b := range blends {
		if !b.StockKg.IsPositive() {
			continue
		}
		products = append(products, domain.SellableProduct{
			Ref:       domain.ProductRef{Type: domain.ProductBlended, ID: b.ID},
			Name:      b.Name,
			BatchCode: b.BatchCode,
			StockKg:   b.StockKg,
		})
	}
	return products, nil
}

// roastName labels a roast with its origin, falling back to the batch code.
func (s *salesService) roastName(ctx context.Context, r *domain.RoastedBatch) string {
	green, err := s.store.GreenBatches().GetByID(ctx, r.GreenBatchID)
	if err != nil {
		return r.BatchCode
	}
	origin, err := s.store.Origins().GetByID(ctx, green.OriginID)
	if err != nil {
		return r.BatchCode
	}
	return origin.Name
}

func (s *salesService) RecordSale(ctx context.Context, in ports.SaleInput) (*domain.Sale, error) {
	// 1. Idempotency check
	var keyHash string
	if in.IdempotencyKey != "" && s.cache != nil {
		sum := sha256.Sum256([]byte(in.IdempotencyKey))
		keyHash = hex.EncodeToString(sum[:])
		if existing := s.replay(ctx, keyHash); existing != nil {
			return existing, nil
		}
	}

	// 2. Validation
	sale := saleFromInput(uuid.New(), in)
	sale.CreatedAt = s.now()
	if err := sale.Validate(); err != nil {
		return nil, err
	}

	// 3. Deduct and record
	err := s.mutate(ctx, "sell", func(ctx context.Context, repos ports.Repositories, j *journal) error {
		product, err := resolveProduct(ctx, repos, sale.Product)
		if err != nil {
			return err
		}
		if err := take(ctx, product, sale.QuantityKg, j); err != nil {
			return err
		}
		sale.BatchCodeSold = product.BatchCode()
		return repos.Sales().Create(ctx, sale)
	})
	if err != nil {
		return nil, err
	}

	// 4. Remember the key. A failure here only costs the replay protection.
	if keyHash != "" {
		if err := s.cache.SetIdempotency(ctx, keyHash, sale.ID.String()); err != nil {
			s.log.Warn("failed to store idempotency key", zap.Error(err))
		}
	}
	return sale, nil
}

// replay returns the sale recorded under keyHash, if it still exists.
func (s *salesService) replay(ctx context.Context, keyHash string) *domain.Sale {
	existingID, err := s.cache.GetIdempotency(ctx, keyHash)
	if err != nil {
		return nil
	}
	id, err := uuid.Parse(existingID)
	if err != nil {
		return nil
	}
	sale, err := s.store.Sales().GetByID(ctx, id)
	if err != nil {
		return nil
	}
	return sale
}

// UpdateSale restores the original quantity to the original product before
// taking the new quantity from the (possibly different) target product.
func (s *salesService) UpdateSale(ctx context.Context, id uuid.UUID, in ports.SaleInput) (*domain.Sale, error) {
	next := saleFromInput(id, in)
	if err := next.Validate(); err != nil {
		return nil, err
	}

	err := s.mutate(ctx, "update sale", func(ctx context.Context, repos ports.Repositories, j *journal) error {
		current, err := repos.Sales().GetByID(ctx, id)
		if err != nil {
			return err
		}
		next.CreatedAt = current.CreatedAt

		original, err := resolveProduct(ctx, repos, current.Product)
		if err != nil {
			return err
		}
		if err := giveBack(ctx, original, current.QuantityKg, j); err != nil {
			return err
		}

		target, err := resolveProduct(ctx, repos, next.Product)
		if err != nil {
			return err
		}
		if err := take(ctx, target, next.QuantityKg, j); err != nil {
			return err
		}
		next.BatchCodeSold = target.BatchCode()
		return repos.Sales().Update(ctx, next)
	})
	if err != nil {
		return nil, err
	}
	return next, nil
}

func (s *salesService) DeleteSale(ctx context.Context, id uuid.UUID) error {
	return s.mutate(ctx, "delete sale", func(ctx context.Context, repos ports.Repositories, j *journal) error {
		sale, err := repos.Sales().GetByID(ctx, id)
		if err != nil {
			return err
		}
		product, err := resolveProduct(ctx, repos, sale.Product)
		if err != nil {
			return err
		}
		if err := giveBack(ctx, product, sale.QuantityKg, j); err != nil {
			return err
		}
		return repos.Sales().Delete(ctx, id)
	})
}

func saleFromInput(id uuid.UUID, in ports.SaleInput) *domain.Sale {
	return &domain.Sale{
		ID:         id,
		Product:    in.Product,
		QuantityKg: in.QuantityKg,
		UnitPrice:  in.UnitPrice,
		SaleDate:   in.SaleDate,
	}
}
