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
	"context"
	"slices"
	"strings"

	"github.com/TraceApi/roastery-core/internal/core/domain"
	"github.com/shopspring/decimal"
)

type reportRepo struct{ r repositories }

func (rp reportRepo) StockSummary(ctx context.Context) (*domain.StockSummary, error) {
	out := &domain.StockSummary{}
	err := rp.r.with(func(st *state) error {
		for _, g := range st.green {
			out.GreenKg = out.GreenKg.Add(g.QuantityKg)
		}
		for _, r := range st.roasted {
			out.RoastedKg = out.RoastedKg.Add(r.StockKg)
		}
		for _, b := range st.blends {
			out.BlendedKg = out.BlendedKg.Add(b.StockKg)
		}
		return nil
	})
	return out, err
}

func (rp reportRepo) MonthlySales(ctx context.Context) ([]domain.MonthlySales, error) {
	revenue := map[string]decimal.Decimal{}
	err := rp.r.with(func(st *state) error {
		for _, s := range st.sales {
			month := s.SaleDate.MonthKey()
			revenue[month] = revenue[month].Add(s.Revenue())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]domain.MonthlySales, 0, len(revenue))
	for month, total := range revenue {
		out = append(out, domain.MonthlySales{Month: month, Revenue: total})
	}
	slices.SortFunc(out, func(a, b domain.MonthlySales) int { return strings.Compare(a.Month, b.Month) })
	return out, nil
}

func (rp reportRepo) TopProducts(ctx context.Context, limit int) ([]domain.ProductSales, error) {
	sold := map[string]decimal.Decimal{}
	err := rp.r.with(func(st *state) error {
		for _, s := range st.sales {
			sold[s.BatchCodeSold] = sold[s.BatchCodeSold].Add(s.QuantityKg)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]domain.ProductSales, 0, len(sold))
	for code, qty := range sold {
		out = append(out, domain.ProductSales{BatchCode: code, QuantityKg: qty})
	}
	slices.SortFunc(out, func(a, b domain.ProductSales) int {
		if c := b.QuantityKg.Cmp(a.QuantityKg); c != 0 {
			return c
		}
		return strings.Compare(a.BatchCode, b.BatchCode)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (rp reportRepo) MassBalance(ctx context.Context) (*domain.MassBalance, error) {
	out := &domain.MassBalance{}
	err := rp.r.with(func(st *state) error {
		for _, g := range st.green {
			out.ReceivedKg = out.ReceivedKg.Add(g.ReceivedKg)
			out.GreenKg = out.GreenKg.Add(g.QuantityKg)
		}
		for _, r := range st.roasted {
			out.ShrinkageKg = out.ShrinkageKg.Add(r.ShrinkageKg)
			out.RoastedKg = out.RoastedKg.Add(r.StockKg)
		}
		for _, b := range st.blends {
			out.BlendedKg = out.BlendedKg.Add(b.StockKg)
		}
		for _, s := range st.sales {
			out.SoldKg = out.SoldKg.Add(s.QuantityKg)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	out.Settle()
	return out, nil
}
