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
	"time"

	"github.com/TraceApi/roastery-core/internal/core/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const blendColumns = `id, name, batch_code, recipe_id, total_quantity_kg, stock_kg, creation_date, created_at`

type blendRepo struct{ r repositories }

func scanBlend(row pgx.Row) (*domain.BlendedBatch, error) {
	var (
		b       domain.BlendedBatch
		created time.Time
	)
	err := row.Scan(&b.ID, &b.Name, &b.BatchCode, &b.RecipeID, &b.TotalQuantityKg, &b.StockKg, &created, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	b.CreationDate = toDate(created)
	return &b, nil
}

// loadComponents fills the component tree of every blend in one round trip per table.
func (b blendRepo) loadComponents(ctx context.Context, blends []*domain.BlendedBatch) error {
	if len(blends) == 0 {
		return nil
	}
	byID := make(map[uuid.UUID]*domain.BlendedBatch, len(blends))
	ids := make([]uuid.UUID, 0, len(blends))
	for _, blend := range blends {
		blend.Components = nil
		byID[blend.ID] = blend
		ids = append(ids, blend.ID)
	}

	rows, err := b.r.q.Query(ctx, `
		SELECT blend_id, origin_id, percentage FROM blend_components
		WHERE blend_id = ANY($1) ORDER BY blend_id, position
	`, ids)
	if err != nil {
		return mapError(err, "load blend components")
	}
	for rows.Next() {
		var (
			blendID uuid.UUID
			c       domain.BlendComponent
		)
		if err := rows.Scan(&blendID, &c.OriginID, &c.Percentage); err != nil {
			rows.Close()
			return mapError(err, "load blend components")
		}
		byID[blendID].Components = append(byID[blendID].Components, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return mapError(err, "load blend components")
	}

	allocs, err := b.r.q.Query(ctx, `
		SELECT blend_id, component_position, roasted_batch_id, quantity_used_kg FROM blend_allocations
		WHERE blend_id = ANY($1) ORDER BY blend_id, component_position, position
	`, ids)
	if err != nil {
		return mapError(err, "load blend allocations")
	}
	defer allocs.Close()
	for allocs.Next() {
		var (
			blendID  uuid.UUID
			position int
			a        domain.Allocation
		)
		if err := allocs.Scan(&blendID, &position, &a.RoastedBatchID, &a.QuantityUsedKg); err != nil {
			return mapError(err, "load blend allocations")
		}
		c := &byID[blendID].Components[position]
		c.Allocations = append(c.Allocations, a)
	}
	return mapError(allocs.Err(), "load blend allocations")
}

func (b blendRepo) query(ctx context.Context, query string, args ...any) ([]*domain.BlendedBatch, error) {
	rows, err := b.r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "list blended batches")
	}
	blends, err := collect(rows, scanBlend, "list blended batches")
	if err != nil {
		return nil, err
	}
	if err := b.loadComponents(ctx, blends); err != nil {
		return nil, err
	}
	return blends, nil
}

func (b blendRepo) List(ctx context.Context) ([]*domain.BlendedBatch, error) {
	return b.query(ctx, `SELECT `+blendColumns+` FROM blended_batches ORDER BY created_at DESC, id`)
}

func (b blendRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.BlendedBatch, error) {
	blend, err := scanBlend(b.r.q.QueryRow(ctx, b.r.forUpdate(`SELECT `+blendColumns+` FROM blended_batches WHERE id = $1`), id))
	if err != nil {
		return nil, mapError(err, "blended batch "+id.String())
	}
	if err := b.loadComponents(ctx, []*domain.BlendedBatch{blend}); err != nil {
		return nil, err
	}
	return blend, nil
}

// GetByCode returns the newest blend carrying batchCode.
func (b blendRepo) GetByCode(ctx context.Context, batchCode string) (*domain.BlendedBatch, error) {
	blends, err := b.query(ctx,
		`SELECT `+blendColumns+` FROM blended_batches WHERE batch_code = $1 ORDER BY created_at DESC, id LIMIT 1`,
		batchCode)
	if err != nil {
		return nil, err
	}
	if len(blends) == 0 {
		return nil, mapError(pgx.ErrNoRows, "blended batch "+batchCode)
	}
	return blends[0], nil
}

func (b blendRepo) insertComponents(ctx context.Context, blend *domain.BlendedBatch) error {
	what := "blended batch " + blend.BatchCode
	for i, c := range blend.Components {
		_, err := b.r.q.Exec(ctx,
			`INSERT INTO blend_components (blend_id, position, origin_id, percentage) VALUES ($1, $2, $3, $4)`,
			blend.ID, i, c.OriginID, c.Percentage)
		if err != nil {
			return mapError(err, what)
		}
		for j, a := range c.Allocations {
			_, err := b.r.q.Exec(ctx, `
				INSERT INTO blend_allocations (blend_id, component_position, position, roasted_batch_id, quantity_used_kg)
				VALUES ($1, $2, $3, $4, $5)
			`, blend.ID, i, j, a.RoastedBatchID, a.QuantityUsedKg)
			if err != nil {
				return mapError(err, what)
			}
		}
	}
	return nil
}

func (b blendRepo) Create(ctx context.Context, blend *domain.BlendedBatch) error {
	query := `
		INSERT INTO blended_batches (id, name, batch_code, recipe_id, total_quantity_kg, stock_kg, creation_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := b.r.q.Exec(ctx, query,
		blend.ID, blend.Name, blend.BatchCode, blend.RecipeID, blend.TotalQuantityKg,
		blend.StockKg, blend.CreationDate.Time, blend.CreatedAt)
	if err != nil {
		return mapError(err, "blended batch "+blend.BatchCode)
	}
	return b.insertComponents(ctx, blend)
}

// Update rewrites the blend row and replaces its component tree.
func (b blendRepo) Update(ctx context.Context, blend *domain.BlendedBatch) error {
	query := `
		UPDATE blended_batches
		SET name = $2, batch_code = $3, recipe_id = $4, total_quantity_kg = $5, stock_kg = $6, creation_date = $7
		WHERE id = $1
	`
	tag, err := b.r.q.Exec(ctx, query,
		blend.ID, blend.Name, blend.BatchCode, blend.RecipeID, blend.TotalQuantityKg,
		blend.StockKg, blend.CreationDate.Time)
	if err := expectOne(tag, err, "blended batch "+blend.ID.String()); err != nil {
		return err
	}
	if _, err := b.r.q.Exec(ctx, `DELETE FROM blend_components WHERE blend_id = $1`, blend.ID); err != nil {
		return mapError(err, "blended batch "+blend.ID.String())
	}
	return b.insertComponents(ctx, blend)
}

// Delete removes the blend. Components and allocations cascade.
func (b blendRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := b.r.q.Exec(ctx, `DELETE FROM blended_batches WHERE id = $1`, id)
	return expectOne(tag, err, "blended batch "+id.String())
}

func (b blendRepo) AdjustStock(ctx context.Context, id uuid.UUID, delta decimal.Decimal) error {
	tag, err := b.r.q.Exec(ctx, `UPDATE blended_batches SET stock_kg = stock_kg + $2 WHERE id = $1`, id, delta)
	return expectOne(tag, err, "blended batch "+id.String())
}

func (b blendRepo) CountAllocations(ctx context.Context, roastedBatchID uuid.UUID) (int, error) {
	return count(ctx, b.r.q, "count allocations",
		`SELECT count(*) FROM blend_allocations WHERE roasted_batch_id = $1`, roastedBatchID)
}

func (b blendRepo) ClearRecipe(ctx context.Context, recipeID uuid.UUID) error {
	_, err := b.r.q.Exec(ctx, `UPDATE blended_batches SET recipe_id = NULL WHERE recipe_id = $1`, recipeID)
	return mapError(err, "recipe "+recipeID.String())
}
