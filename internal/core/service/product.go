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
	"github.com/shopspring/decimal"
)

// stockedProduct is a sellable batch, whichever ledger it lives in.
type stockedProduct interface {
	Ref() domain.ProductRef
	BatchCode() string
	CurrentStock() decimal.Decimal
	AdjustStock(ctx context.Context, delta decimal.Decimal) error
}

type roastedProduct struct {
	batch *domain.RoastedBatch
	repo  ports.RoastedBatchRepository
}

func (p *roastedProduct) Ref() domain.ProductRef {
	return domain.ProductRef{Type: domain.ProductRoasted, ID: p.batch.ID}
}

func (p *roastedProduct) BatchCode() string             { return p.batch.BatchCode }
func (p *roastedProduct) CurrentStock() decimal.Decimal { return p.batch.StockKg }

func (p *roastedProduct) AdjustStock(ctx context.Context, delta decimal.Decimal) error {
	if err := p.repo.AdjustStock(ctx, p.batch.ID, delta); err != nil {
		return err
	}
	p.batch.StockKg = p.batch.StockKg.Add(delta)
	return nil
}

type blendedProduct struct {
	batch *domain.BlendedBatch
	repo  ports.BlendedBatchRepository
}

func (p *blendedProduct) Ref() domain.ProductRef {
	return domain.ProductRef{Type: domain.ProductBlended, ID: p.batch.ID}
}

func (p *blendedProduct) BatchCode() string             { return p.batch.BatchCode }
func (p *blendedProduct) CurrentStock() decimal.Decimal { return p.batch.StockKg }

func (p *blendedProduct) AdjustStock(ctx context.Context, delta decimal.Decimal) error {
	if err := p.repo.AdjustStock(ctx, p.batch.ID, delta); err != nil {
		return err
	}
	p.batch.StockKg = p.batch.StockKg.Add(delta)
	return nil
}

// resolveProduct reads the batch behind ref. Unknown batches are reported as
// domain.ErrProductNotFound.
func resolveProduct(ctx context.Context, repos ports.Repositories, ref domain.ProductRef) (stockedProduct, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}

	var (
		product stockedProduct
		err     error
	)
	switch ref.Type {
	case domain.ProductRoasted:
		var batch *domain.RoastedBatch
		if batch, err = repos.RoastedBatches().GetByID(ctx, ref.ID); err == nil {
			product = &roastedProduct{batch: batch, repo: repos.RoastedBatches()}
		}
	case domain.ProductBlended:
		var batch *domain.BlendedBatch
		if batch, err = repos.BlendedBatches().GetByID(ctx, ref.ID); err == nil {
			product = &blendedProduct{batch: batch, repo: repos.BlendedBatches()}
		}
	}
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%w %s", domain.ErrProductNotFound, ref)
	}
	if err != nil {
		return nil, err
	}
	return product, nil
}

// take deducts qty from the product after checking it has enough stock.
func take(ctx context.Context, p stockedProduct, qty decimal.Decimal, j *journal) error {
	ref := p.Ref()
	if err := requireStock(ref.Type.Stage(), ref.ID, p.BatchCode(), p.CurrentStock(), qty); err != nil {
		return err
	}
	if err := p.AdjustStock(ctx, qty.Neg()); err != nil {
		return err
	}
	j.record(ref.Type.Stage(), ref.ID, p.BatchCode(), qty.Neg())
	return nil
}

func giveBack(ctx context.Context, p stockedProduct, qty decimal.Decimal, j *journal) error {
	if err := p.AdjustStock(ctx, qty); err != nil {
		return err
	}
	ref := p.Ref()
	j.record(ref.Type.Stage(), ref.ID, p.BatchCode(), qty)
	return nil
}
