package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pepdine/pep-backend/pkg/db/dbtest"
	pkgerrors "github.com/pepdine/pep-backend/pkg/errors"
	"github.com/pepdine/pep-backend/pkg/pagination"
	"github.com/pepdine/pep-backend/pkg/types"
)

func newTestService(t *testing.T) (Service, *Repository) {
	t.Helper()
	repo := NewRepository(dbtest.Open(t))
	svc, err := NewService(repo)
	require.NoError(t, err)
	return svc, repo
}

func menuInput(name string) MenuItemInput {
	return MenuItemInput{
		Name:     name,
		MRPCents: 500,
		Sizes:    types.MenuSizes{{Name: " Small ", PriceCents: 400}, {Name: "Large", PriceCents: 600, IsDefault: true}},
		Addons:   types.MenuAddons{{ID: "cheese", Name: "Cheese", PriceCents: 50}},
		Quantity: 10,
		IsActive: true,
	}
}

func TestCreateMenuItemClampsDiscountAndTrimsSizes(t *testing.T) {
	svc, _ := newTestService(t)

	input := menuInput("Margherita")
	input.DiscountedPriceCents = 800
	item, err := svc.CreateMenuItem(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, 500, item.DiscountedPriceCents)
	assert.Equal(t, "Small", item.Sizes[0].Name)
	assert.True(t, item.InStock)
}

func TestCreateMenuItemValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	bad := menuInput("")
	bad.MRPCents = 0
	bad.Sizes = types.MenuSizes{{Name: "A", PriceCents: 100, IsDefault: true}, {Name: "B", PriceCents: 100, IsDefault: true}}
	_, err := svc.CreateMenuItem(ctx, bad)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	details, ok := typed.Details().(map[string]string)
	require.True(t, ok)
	assert.Contains(t, details, "name")
	assert.Contains(t, details, "mrp_cents")
	assert.Contains(t, details, "sizes")

	missingCategory := menuInput("Garlic Bread")
	id := uuid.New()
	missingCategory.CategoryID = &id
	_, err = svc.CreateMenuItem(ctx, missingCategory)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestListMenuPagesAndFilters(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, name := range []string{"Calzone", "Alfredo Pasta", "Brownie", "Diavola"} {
		_, err := svc.CreateMenuItem(ctx, menuInput(name))
		require.NoError(t, err)
	}
	hidden, err := svc.CreateMenuItem(ctx, menuInput("Aaa Hidden"))
	require.NoError(t, err)
	require.NoError(t, svc.DeleteMenuItem(ctx, hidden.ID))

	first, err := svc.ListMenu(ctx, MenuFilters{}, pagination.Params{Limit: 2}, false)
	require.NoError(t, err)
	require.Len(t, first.Items, 2)
	assert.Equal(t, "Alfredo Pasta", first.Items[0].Name)
	assert.Equal(t, "Brownie", first.Items[1].Name)
	require.NotEmpty(t, first.NextCursor)

	second, err := svc.ListMenu(ctx, MenuFilters{}, pagination.Params{Limit: 2, Cursor: first.NextCursor}, false)
	require.NoError(t, err)
	require.Len(t, second.Items, 2)
	assert.Equal(t, "Calzone", second.Items[0].Name)
	assert.Empty(t, second.NextCursor)

	search, err := svc.ListMenu(ctx, MenuFilters{Query: "PASTA"}, pagination.Params{}, false)
	require.NoError(t, err)
	require.Len(t, search.Items, 1)

	all, err := svc.ListMenu(ctx, MenuFilters{}, pagination.Params{}, true)
	require.NoError(t, err)
	assert.Len(t, all.Items, 5)

	_, err = svc.GetMenuItem(ctx, hidden.ID, false)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = svc.ListMenu(ctx, MenuFilters{}, pagination.Params{Cursor: "%%%"}, false)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestStockLedger(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	item, err := svc.CreateMenuItem(ctx, menuInput("Tiramisu"))
	require.NoError(t, err)

	ok, err := repo.DecrementStock(ctx, item.ID, 4)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.DecrementStock(ctx, item.ID, 7)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.IncrementStock(ctx, item.ID, 1))
	reloaded, err := svc.GetMenuItem(ctx, item.ID, true)
	require.NoError(t, err)
	assert.Equal(t, 7, reloaded.Quantity)

	updated, err := svc.SetStock(ctx, item.ID, 0)
	require.NoError(t, err)
	assert.False(t, updated.InStock)

	_, err = svc.SetStock(ctx, item.ID, -1)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	_, err = svc.SetStock(ctx, uuid.New(), 3)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestCategories(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	pizzas, err := svc.CreateCategory(ctx, CategoryInput{Name: "Pizzas", SortOrder: 2, IsActive: true})
	require.NoError(t, err)
	_, err = svc.CreateCategory(ctx, CategoryInput{Name: "Starters", SortOrder: 1, IsActive: true})
	require.NoError(t, err)

	_, err = svc.CreateCategory(ctx, CategoryInput{Name: "Pizzas"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	inactive := false
	_, err = svc.UpdateCategory(ctx, pizzas.ID, CategoryUpdate{IsActive: &inactive})
	require.NoError(t, err)

	visible, err := svc.ListCategories(ctx, false)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, "Starters", visible[0].Name)

	all, err := svc.ListCategories(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
