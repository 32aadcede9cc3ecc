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
	"fmt"
	"time"

	"github.com/TraceApi/roastery-core/internal/core/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const saleColumns = `id, roasted_batch_id, blended_batch_id, quantity_kg, unit_price, sale_date, batch_code_sold, created_at`

type saleRepo struct{ r repositories }

func scanSale(row pgx.Row) (*domain.Sale, error) {
	var (
		s                domain.Sale
		roasted, blended *uuid.UUID
		sold             time.Time
	)
	err := row.Scan(&s.ID, &roasted, &blended, &s.QuantityKg, &s.UnitPrice, &sold, &s.BatchCodeSold, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	switch {
	case roasted != nil:
		s.Product = domain.ProductRef{Type: domain.ProductRoasted, ID: *roasted}
	case blended != nil:
		s.Product = domain.ProductRef{Type: domain.ProductBlended, ID: *blended}
	}
	s.SaleDate = toDate(sold)
	return &s, nil
}

// productColumns splits a product reference into the two nullable foreign keys.
func productColumns(ref domain.ProductRef) (roasted, blended *uuid.UUID) {
	id := ref.ID
	if ref.Type == domain.ProductBlended {
		return nil, &id
	}
	return &id, nil
}

func (s saleRepo) List(ctx context.Context) ([]*domain.Sale, error) {
	rows, err := s.r.q.Query(ctx, `SELECT `+saleColumns+` FROM sales ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, mapError(err, "list sales")
	}
	return collect(rows, scanSale, "list sales")
}

func (s saleRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Sale, error) {
	sale, err := scanSale(s.r.q.QueryRow(ctx, s.r.forUpdate(`SELECT `+saleColumns+` FROM sales WHERE id = $1`), id))
	if err != nil {
		return nil, mapError(err, "sale "+id.String())
	}
	return sale, nil
}

func (s saleRepo) Create(ctx context.Context, sale *domain.Sale) error {
	roasted, blended := productColumns(sale.Product)
	query := `
		INSERT INTO sales (id, roasted_batch_id, blended_batch_id, quantity_kg, unit_price, sale_date, batch_code_sold, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.r.q.Exec(ctx, query,
		sale.ID, roasted, blended, sale.QuantityKg, sale.UnitPrice, sale.SaleDate.Time, sale.BatchCodeSold, sale.CreatedAt)
	return mapError(err, "sale of "+sale.Product.String())
}

func (s saleRepo) Update(ctx context.Context, sale *domain.Sale) error {
	roasted, blended := productColumns(sale.Product)
	query := `
		UPDATE sales
		SET roasted_batch_id = $2, blended_batch_id = $3, quantity_kg = $4, unit_price = $5,
		    sale_date = $6, batch_code_sold = $7
		WHERE id = $1
	`
	tag, err := s.r.q.Exec(ctx, query,
		sale.ID, roasted, blended, sale.QuantityKg, sale.UnitPrice, sale.SaleDate.Time, sale.BatchCodeSold)
	return expectOne(tag, err, "sale "+sale.ID.String())
}

func (s saleRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.r.q.Exec(ctx, `DELETE FROM sales WHERE id = $1`, id)
	return expectOne(tag, err, "sale "+id.String())
}

func (s saleRepo) CountByProduct(ctx context.Context, ref domain.ProductRef) (int, error) {
	column := "roasted_batch_id"
	if ref.Type == domain.ProductBlended {
		column = "blended_batch_id"
	}
	return count(ctx, s.r.q, "count sales", fmt.Sprintf(`SELECT count(*) FROM sales WHERE %s = $1`, column), ref.ID)
}
