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
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const originColumns = `id, name, kilos_per_bag, suppliers_or_farms, description, created_at`

type originRepo struct{ r repositories }

func scanOrigin(row pgx.Row) (*domain.Origin, error) {
	var o domain.Origin
	if err := row.Scan(&o.ID, &o.Name, &o.KilosPerBag, &o.SuppliersOrFarms, &o.Description, &o.CreatedAt); err != nil {
		return nil, err
	}
	return &o, nil
}

func (o originRepo) List(ctx context.Context) ([]*domain.Origin, error) {
	rows, err := o.r.q.Query(ctx, `SELECT `+originColumns+` FROM origins ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, mapError(err, "list origins")
	}
	return collect(rows, scanOrigin, "list origins")
}

func (o originRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Origin, error) {
	row := o.r.q.QueryRow(ctx, o.r.forUpdate(`SELECT `+originColumns+` FROM origins WHERE id = $1`), id)
	origin, err := scanOrigin(row)
	if err != nil {
		return nil, mapError(err, "origin "+id.String())
	}
	return origin, nil
}

func (o originRepo) Create(ctx context.Context, origin *domain.Origin) error {
	query := `
		INSERT INTO origins (id, name, kilos_per_bag, suppliers_or_farms, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := o.r.q.Exec(ctx, query,
		origin.ID, origin.Name, origin.KilosPerBag, origin.SuppliersOrFarms, origin.Description, origin.CreatedAt)
	return mapError(err, "origin "+origin.ID.String())
}

func (o originRepo) Update(ctx context.Context, origin *domain.Origin) error {
	query := `
		UPDATE origins
		SET name = $2, kilos_per_bag = $3, suppliers_or_farms = $4, description = $5
		WHERE id = $1
	`
	tag, err := o.r.q.Exec(ctx, query,
		origin.ID, origin.Name, origin.KilosPerBag, origin.SuppliersOrFarms, origin.Description)
	return expectOne(tag, err, "origin "+origin.ID.String())
}

func (o originRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := o.r.q.Exec(ctx, `DELETE FROM origins WHERE id = $1`, id)
	return expectOne(tag, err, "origin "+id.String())
}

// collect scans every row with scan and closes rows.
func collect[T any](rows pgx.Rows, scan func(pgx.Row) (*T, error), what string) ([]*T, error) {
	defer rows.Close()

	var out []*T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, mapError(err, what)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, what)
	}
	return out, nil
}

func count(ctx context.Context, q querier, what, query string, args ...any) (int, error) {
	var n int
	if err := q.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, mapError(err, what)
	}
	return n, nil
}
