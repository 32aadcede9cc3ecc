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
	"encoding/json"
	"fmt"

	"github.com/TraceApi/roastery-core/internal/core/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const recipeColumns = `id, name, components, created_at`

type recipeRepo struct{ r repositories }

func scanRecipe(row pgx.Row) (*domain.Recipe, error) {
	var (
		rc         domain.Recipe
		components []byte
	)
	if err := row.Scan(&rc.ID, &rc.Name, &components, &rc.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(components, &rc.Components); err != nil {
		return nil, fmt.Errorf("decode components of recipe %s: %w", rc.ID, err)
	}
	return &rc, nil
}

func (rc recipeRepo) List(ctx context.Context) ([]*domain.Recipe, error) {
	rows, err := rc.r.q.Query(ctx, `SELECT `+recipeColumns+` FROM recipes ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, mapError(err, "list recipes")
	}
	return collect(rows, scanRecipe, "list recipes")
}

func (rc recipeRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Recipe, error) {
	row := rc.r.q.QueryRow(ctx, rc.r.forUpdate(`SELECT `+recipeColumns+` FROM recipes WHERE id = $1`), id)
	recipe, err := scanRecipe(row)
	if err != nil {
		return nil, mapError(err, "recipe "+id.String())
	}
	return recipe, nil
}

func (rc recipeRepo) Create(ctx context.Context, recipe *domain.Recipe) error {
	components, err := json.Marshal(recipe.Components)
	if err != nil {
		return fmt.Errorf("encode recipe components: %w", err)
	}
	_, err = rc.r.q.Exec(ctx,
		`INSERT INTO recipes (id, name, components, created_at) VALUES ($1, $2, $3, $4)`,
		recipe.ID, recipe.Name, components, recipe.CreatedAt)
	return mapError(err, "recipe "+recipe.ID.String())
}

func (rc recipeRepo) Update(ctx context.Context, recipe *domain.Recipe) error {
	components, err := json.Marshal(recipe.Components)
	if err != nil {
		return fmt.Errorf("encode recipe components: %w", err)
	}
	tag, err := rc.r.q.Exec(ctx,
		`UPDATE recipes SET name = $2, components = $3 WHERE id = $1`,
		recipe.ID, recipe.Name, components)
	return expectOne(tag, err, "recipe "+recipe.ID.String())
}

func (rc recipeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := rc.r.q.Exec(ctx, `DELETE FROM recipes WHERE id = $1`, id)
	return expectOne(tag, err, "recipe "+id.String())
}

func (rc recipeRepo) CountByOrigin(ctx context.Context, originID uuid.UUID) (int, error) {
	query := `
		SELECT count(*) FROM recipes
		WHERE components @> jsonb_build_array(jsonb_build_object('originId', $1::text))
	`
	return count(ctx, rc.r.q, "count recipes", query, originID.String())
}
