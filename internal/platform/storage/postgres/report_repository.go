/*
 * Copyright (c) 2025 Alessandro Faranda Gancio (dba TraceApi)
 *
 * This source code is licensed under the Business Source License 1.1.
 *
 * Change Date: 2027-11-28
 * Change License: AGPL-3.0
 */

package postgres

import (
	"context"

	"github.com/TraceApi/roastery-core/internal/core/domain"
)

type reportRepo struct{ r repositories }

func (rp reportRepo) StockSummary(ctx context.Context) (*domain.StockSummary, error) {
	query := `
		SELECT
			(SELECT COALESCE(SUM(quantity_kg), 0) FROM green_batches),
			(SELECT COALESCE(SUM(stock_kg), 0) FROM roasted_batches),
			(SELECT COALESCE(SUM(stock_kg), 0) FROM blended_batches)
	`
	var out domain.StockSummary
	if err := rp.r.q.QueryRow(ctx, query).Scan(&out.GreenKg, &out.RoastedKg, &out.BlendedKg); err != nil {
		return nil, mapError(err, "stock summary")
	}
	return &out, nil
}

func (rp reportRepo) MonthlySales(ctx context.Context) ([]domain.MonthlySales, error) {
	query := `
		SELECT to_char(sale_date, 'YYYY-MM') AS month, SUM(quantity_kg * unit_price)
		FROM sales
		GROUP BY month
		ORDER BY month
	`
	rows, err := rp.r.q.Query(ctx, query)
	if err != nil {
		return nil, mapError(err, "monthly sales")
	}
	defer rows.Close()

	out := []domain.MonthlySales{}
	for rows.Next() {
		var m domain.MonthlySales
		if err := rows.Scan(&m.Month, &m.Revenue); err != nil {
			return nil, mapError(err, "monthly sales")
		}
		out = append(out, m)
	}
	return out, mapError(rows.Err(), "monthly sales")
}

// TopProducts ranks by kilos sold; a non-positive limit returns every code.
func (rp reportRepo) TopProducts(ctx context.Context, limit int) ([]domain.ProductSales, error) {
	query := `
		SELECT batch_code_sold, SUM(quantity_kg) AS sold
		FROM sales
		GROUP BY batch_code_sold
		ORDER BY sold DESC, batch_code_sold
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}
	rows, err := rp.r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "top products")
	}
	defer rows.Close()

	out := []domain.ProductSales{}
	for rows.Next() {
		var p domain.ProductSales
		if err := rows.Scan(&p.BatchCode, &p.QuantityKg); err != nil {
			return nil, mapError(err, "top products")
		}
		out = append(out, p)
	}
	return out, mapError(rows.Err(), "top products")
}

func (rp reportRepo) MassBalance(ctx context.Context) (*domain.MassBalance, error) {
	query := `
		SELECT
			(SELECT COALESCE(SUM(received_kg), 0) FROM green_batches),
			(SELECT COALESCE(SUM(quantity_kg), 0) FROM green_batches),
			(SELECT COALESCE(SUM(shrinkage_kg), 0) FROM roasted_batches),
			(SELECT COALESCE(SUM(stock_kg), 0) FROM roasted_batches),
			(SELECT COALESCE(SUM(stock_kg), 0) FROM blended_batches),
			(SELECT COALESCE(SUM(quantity_kg), 0) FROM sales)
	`
	var out domain.MassBalance
	err := rp.r.q.QueryRow(ctx, query).Scan(
		&out.ReceivedKg, &out.GreenKg, &out.ShrinkageKg, &out.RoastedKg, &out.BlendedKg, &out.SoldKg)
	if err != nil {
		return nil, mapError(err, "mass balance")
	}
	out.Settle()
	return &out, nil
}
