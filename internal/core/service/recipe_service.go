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
	"github.com/google/uuid"
)

type recipeService struct {
	base
}

var _ ports.RecipeService = (*recipeService)(nil)

func NewRecipeService(deps Dependencies) ports.RecipeService {
	return &recipeService{base: newBase(deps, "recipes")}
}

func (s *recipeService) ListRecipes(ctx context.Context) ([]*domain.Recipe, error) {
	recipes, err := s.store.Recipes().List(ctx)
	if err != nil {
		return nil, s.fail("list recipes", err)
	}
	return recipes, nil
}

func (s *recipeService) GetRecipe(ctx context.Context, id uuid.UUID) (*domain.Recipe, error) {
	recipe, err := s.store.Recipes().GetByID(ctx, id)
	if err != nil {
		return nil, s.fail("get recipe", err)
	}
	return recipe, nil
}

func (s *recipeService) AddRecipe(ctx context.Context, in ports.RecipeInput) (*domain.Recipe, error) {
	recipe := &domain.Recipe{ID: uuid.New(), Name: in.Name, Components: in.Components, CreatedAt: s.now()}
	if err := recipe.Validate(); err != nil {
		return nil, err
	}

	err := s.mutate(ctx, "add recipe", func(ctx context.Context, repos ports.Repositories, _ *journal) error {
		if err := checkRecipeOrigins(ctx, repos, recipe); err != nil {
			return err
		}
		return repos.Recipes().Create(ctx, recipe)
	})
	if err != nil {
		return nil, err
	}
	return recipe, nil
}

func (s *recipeService) UpdateRecipe(ctx context.Context, id uuid.UUID, in ports.RecipeInput) (*domain.Recipe, error) {
	recipe := &domain.Recipe{ID: id, Name: in.Name, Components: in.Components}
	if err := recipe.Validate(); err != nil {
		return nil, err
	}

	err := s.mutate(ctx, "update recipe", func(ctx context.Context, repos ports.Repositories, _ *journal) error {
		current, err := repos.Recipes().GetByID(ctx, id)
		if err != nil {
			return err
		}
		recipe.CreatedAt = current.CreatedAt
		if err := checkRecipeOrigins(ctx, repos, recipe); err != nil {
			return err
		}
		return repos.Recipes().Update(ctx, recipe)
	})
	if err != nil {
		return nil, err
	}
	return recipe, nil
}

// DeleteRecipe detaches the blends made from the recipe; their composition is
// stored with them and stays as it is.
func (s *recipeService) DeleteRecipe(ctx context.Context, id uuid.UUID) error {
	return s.mutate(ctx, "delete recipe", func(ctx context.Context, repos ports.Repositories, _ *journal) error {
		if _, err := repos.Recipes().GetByID(ctx, id); err != nil {
			return err
		}
		if err := repos.BlendedBatches().ClearRecipe(ctx, id); err != nil {
			return err
		}
		return repos.Recipes().Delete(ctx, id)
	})
}

func checkRecipeOrigins(ctx context.Context, repos ports.Repositories, recipe *domain.Recipe) error {
	for _, c := range recipe.Components {
		_, err := repos.Origins().GetByID(ctx, c.OriginID)
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: origin %s does not exist", domain.ErrInvalidInput, c.OriginID)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
