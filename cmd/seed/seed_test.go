package main

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pepdine/pep-backend/internal/catalog"
	"github.com/pepdine/pep-backend/internal/coupons"
	"github.com/pepdine/pep-backend/pkg/db/dbtest"
	"github.com/pepdine/pep-backend/pkg/enums"
	"github.com/pepdine/pep-backend/pkg/logger"
)

func newTestSeeder(t *testing.T) (*Seeder, catalog.Service) {
	t.Helper()
	conn := dbtest.Open(t)
	catalogSvc, err := catalog.NewService(catalog.NewRepository(conn))
	require.NoError(t, err)
	couponSvc, err := coupons.NewService(coupons.NewRepository(conn))
	require.NoError(t, err)
	logg := logger.New(logger.Options{ServiceName: "seed-test", Output: io.Discard})
	return NewSeeder(catalogSvc, couponSvc, logg), catalogSvc
}

func TestLoadParsesSampleFile(t *testing.T) {
	f, err := Load("testdata/menu.yaml")
	require.NoError(t, err)

	require.Len(t, f.MenuItems, 2)
	pizza := f.MenuItems[0]
	assert.Equal(t, "Pizzas", pizza.Category)
	require.Len(t, pizza.Sizes, 3)
	assert.True(t, pizza.Sizes[1].Default)
	require.Len(t, f.Coupons, 2)
	require.NotNil(t, f.Coupons[0].MaxDiscountCents)
	assert.Equal(t, 5000, *f.Coupons[0].MaxDiscountCents)
}

func TestApplyIsIdempotent(t *testing.T) {
	seeder, catalogSvc := newTestSeeder(t)
	f, err := Load("testdata/menu.yaml")
	require.NoError(t, err)
	ctx := context.Background()

	first, err := seeder.Apply(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, Result{Categories: 2, MenuItems: 2, Coupons: 2}, first)

	second, err := seeder.Apply(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, Result{}, second)

	cats, err := catalogSvc.ListCategories(ctx, true)
	require.NoError(t, err)
	assert.Len(t, cats, 2)
}

func TestApplyRejectsUnknownCategory(t *testing.T) {
	seeder, _ := newTestSeeder(t)
	_, err := seeder.Apply(context.Background(), File{
		MenuItems: []MenuItemSeed{{Name: "Mystery", Category: "Desserts", MRPCents: 100, Quantity: 1}},
	})
	require.ErrorContains(t, err, `unknown category "Desserts"`)
}

func TestCouponInputParsesTypeAndValue(t *testing.T) {
	in, err := couponInput(CouponSeed{Code: "save10", Type: "Percentage", Value: "10.5"})
	require.NoError(t, err)
	assert.Equal(t, enums.CouponTypePercentage, in.Type)
	assert.Equal(t, "10.5", in.Value.String())

	_, err = couponInput(CouponSeed{Code: "bogo", Type: "bogo", Value: "1"})
	require.Error(t, err)
}
