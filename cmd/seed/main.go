package main

import (
	"context"
	"flag"
	"os"

	"github.com/joho/godotenv"

	"github.com/pepdine/pep-backend/internal/catalog"
	"github.com/pepdine/pep-backend/internal/coupons"
	"github.com/pepdine/pep-backend/pkg/config"
	"github.com/pepdine/pep-backend/pkg/db"
	"github.com/pepdine/pep-backend/pkg/logger"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "seed"})
	_ = godotenv.Load()

	file := flag.String("file", "cmd/seed/testdata/menu.yaml", "YAML seed file")
	flag.Parse()

	ctx := logg.WithField(context.Background(), "file", *file)

	seed, err := Load(*file)
	exitOnErr(ctx, logg, "failed to load seed file", err)

	cfg, err := config.Load()
	exitOnErr(ctx, logg, "failed to load config", err)

	dbClient, err := db.New(ctx, cfg.DB, logg)
	exitOnErr(ctx, logg, "failed to bootstrap database", err)
	defer dbClient.Close()

	catalogSvc, err := catalog.NewService(catalog.NewRepository(dbClient.DB()))
	exitOnErr(ctx, logg, "failed to create catalog service", err)
	couponSvc, err := coupons.NewService(coupons.NewRepository(dbClient.DB()))
	exitOnErr(ctx, logg, "failed to create coupon service", err)

	res, err := NewSeeder(catalogSvc, couponSvc, logg).Apply(ctx, seed)
	exitOnErr(ctx, logg, "seed failed", err)

	logg.Info(logg.WithFields(ctx, map[string]any{
		"categories": res.Categories,
		"menu_items": res.MenuItems,
		"coupons":    res.Coupons,
	}), "seed complete")
}

func exitOnErr(ctx context.Context, logg *logger.Logger, msg string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, msg, err)
	os.Exit(1)
}
