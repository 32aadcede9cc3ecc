package service_test

import (
	"testing"

	"github.com/TraceApi/roastery-core/internal/core/domain"
	"github.com/TraceApi/roastery-core/internal/core/ports"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddOrigin_NormalizesSuppliers(t *testing.T) {
	f := newFixture(t)

	o, err := f.origins.AddOrigin(f.ctx, ports.OriginInput{
		Name:             "  Huila ",
		KilosPerBag:      kg("70"),
		SuppliersOrFarms: []string{"Finca La Esperanza", " Finca La Esperanza", "", "El Paraiso"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Huila", o.Name)
	assert.Equal(t, []string{"Finca La Esperanza", "El Paraiso"}, o.SuppliersOrFarms)

	_, err = f.origins.AddOrigin(f.ctx, ports.OriginInput{Name: "Empty", KilosPerBag: kg("60")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUpdateOrigin_KeepsSuppliersInUse(t *testing.T) {
	f := newFixture(t)
	o := f.origin("Huila", "Finca A", "Finca B")
	f.greenBatch(o, "HU-1", "10")

	_, err := f.origins.UpdateOrigin(f.ctx, o.ID, ports.OriginInput{
		Name:             "Huila",
		KilosPerBag:      kg("70"),
		SuppliersOrFarms: []string{"Finca B"},
	})
	assert.ErrorIs(t, err, domain.ErrDependencyExists)

	updated, err := f.origins.UpdateOrigin(f.ctx, o.ID, ports.OriginInput{
		Name:             "Huila Sur",
		KilosPerBag:      kg("70"),
		SuppliersOrFarms: []string{"Finca A", "Finca C"},
	})
	require.NoError(t, err)
	assert.Equal(t, o.CreatedAt, updated.CreatedAt)
	assert.Equal(t, "Huila Sur", updated.Name)
}

func TestDeleteOrigin(t *testing.T) {
	f := newFixture(t)
	used := f.origin("Sidamo")
	f.greenBatch(used, "SI-1", "10")
	err := f.origins.DeleteOrigin(f.ctx, used.ID)
	assert.ErrorIs(t, err, domain.ErrDependencyExists)

	inRecipe := f.origin("Yirgacheffe")
	_, err = f.recipes.AddRecipe(f.ctx, ports.RecipeInput{
		Name:       "Single",
		Components: []domain.RecipeComponent{{OriginID: inRecipe.ID, Percentage: kg("100")}},
	})
	require.NoError(t, err)
	err = f.origins.DeleteOrigin(f.ctx, inRecipe.ID)
	assert.ErrorIs(t, err, domain.ErrDependencyExists)

	free := f.origin("Guji")
	require.NoError(t, f.origins.DeleteOrigin(f.ctx, free.ID))
	_, err = f.origins.GetOrigin(f.ctx, free.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = f.origins.DeleteOrigin(f.ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRecipes(t *testing.T) {
	f := newFixture(t)
	a := f.origin("Brazil")
	b := f.origin("Kenya")

	_, err := f.recipes.AddRecipe(f.ctx, ports.RecipeInput{
		Name: "Twice",
		Components: []domain.RecipeComponent{
			{OriginID: a.ID, Percentage: kg("50")},
			{OriginID: a.ID, Percentage: kg("50")},
		},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.recipes.AddRecipe(f.ctx, ports.RecipeInput{
		Name: "Ghost",
		Components: []domain.RecipeComponent{
			{OriginID: a.ID, Percentage: kg("50")},
			{OriginID: uuid.New(), Percentage: kg("50")},
		},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	recipe, err := f.recipes.AddRecipe(f.ctx, ports.RecipeInput{
		Name: "Morning",
		Components: []domain.RecipeComponent{
			{OriginID: a.ID, Percentage: kg("66.67")},
			{OriginID: b.ID, Percentage: kg("33.33")},
		},
	})
	require.NoError(t, err)

	_, err = f.recipes.UpdateRecipe(f.ctx, recipe.ID, ports.RecipeInput{
		Name:       "Morning",
		Components: []domain.RecipeComponent{{OriginID: a.ID, Percentage: kg("99.99")}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidComposition)
}

func TestDeleteRecipe_DetachesBlends(t *testing.T) {
	s := newBlendSetup(t, newFixture(t))
	recipe, err := s.recipes.AddRecipe(s.ctx, ports.RecipeInput{
		Name:       "Solo",
		Components: []domain.RecipeComponent{{OriginID: s.brazil.ID, Percentage: kg("100")}},
	})
	require.NoError(t, err)

	in := s.input("10", component(s.brazil.ID, "100", alloc(s.x, "10")))
	in.RecipeID = &recipe.ID
	blend, err := s.blending.CreateBlend(s.ctx, in)
	require.NoError(t, err)

	require.NoError(t, s.recipes.DeleteRecipe(s.ctx, recipe.ID))

	stored, err := s.blending.GetBlendedBatch(s.ctx, blend.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.RecipeID)
	assertKg(t, "10", stored.TotalQuantityKg)
	assertKg(t, "90", s.roastedStock(s.x.ID))
}
