package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"

	"github.com/pepdine/pep-backend/api"
	"github.com/pepdine/pep-backend/api/routes"
	"github.com/pepdine/pep-backend/internal/auth"
	"github.com/pepdine/pep-backend/internal/cart"
	"github.com/pepdine/pep-backend/internal/catalog"
	"github.com/pepdine/pep-backend/internal/checkout"
	"github.com/pepdine/pep-backend/internal/coupons"
	"github.com/pepdine/pep-backend/internal/guests"
	"github.com/pepdine/pep-backend/internal/orders"
	"github.com/pepdine/pep-backend/internal/reports"
	"github.com/pepdine/pep-backend/internal/users"
	"github.com/pepdine/pep-backend/pkg/auth/session"
	"github.com/pepdine/pep-backend/pkg/config"
	"github.com/pepdine/pep-backend/pkg/db"
	"github.com/pepdine/pep-backend/pkg/logger"
	"github.com/pepdine/pep-backend/pkg/metrics"
	"github.com/pepdine/pep-backend/pkg/migrate"
	"github.com/pepdine/pep-backend/pkg/outbox"
	"github.com/pepdine/pep-backend/pkg/redis"
)

const serviceKind = "api"

func main() {
	logg := logger.New(logger.Options{ServiceName: serviceKind})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	cfg.Service.Kind = serviceKind

	logg = logger.New(logger.Options{
		ServiceName: serviceKind,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})

	if err := run(ctx, cfg, logg, addr); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "api server shut down gracefully")
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger, addr string) (err error) {
	loc, err := cfg.App.Location()
	if err != nil {
		return err
	}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, dbClient.Close()) }()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, redisClient.Close()) }()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return err
	}

	reg := metrics.NewRegistry()
	orderingMetrics := metrics.NewOrderingMetrics(reg)

	conn := dbClient.DB()
	userRepo := users.NewRepository(conn)
	catalogRepo := catalog.NewRepository(conn)
	cartRepo := cart.NewRepository(conn)
	orderRepo := orders.NewRepository(conn)
	emitter := outbox.NewService(outbox.NewRepository(conn), logg)

	deps := routes.Dependencies{
		Config:         cfg,
		Logger:         logg,
		DB:             dbClient,
		Redis:          redisClient,
		Cache:          redisClient,
		Sessions:       sessionManager,
		Location:       loc,
		HTTPMetrics:    metrics.NewHTTPMetrics(reg),
		MetricsHandler: metrics.Handler(reg),
	}

	if deps.Auth, err = auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		Logger:         logg,
	}); err != nil {
		return err
	}
	if deps.Guests, err = guests.NewResolver(userRepo, redisClient, cfg.Guest.SessionCacheTTL, logg); err != nil {
		return err
	}
	if deps.Catalog, err = catalog.NewService(catalogRepo); err != nil {
		return err
	}
	if deps.Coupons, err = coupons.NewService(coupons.NewRepository(conn)); err != nil {
		return err
	}
	if deps.Cart, err = cart.NewService(cartRepo, dbClient, catalogRepo, deps.Coupons, orderingMetrics); err != nil {
		return err
	}

	numbers, err := orders.NewNumberGenerator(orderRepo, loc)
	if err != nil {
		return err
	}
	if deps.Checkout, err = checkout.NewService(checkout.Deps{
		Tx:      dbClient,
		Carts:   cartRepo,
		Catalog: catalogRepo,
		Orders:  orderRepo,
		Numbers: numbers,
		Coupons: deps.Coupons,
		Outbox:  emitter,
		Pricing: cfg.Pricing,
		Metrics: orderingMetrics,
		Logger:  logg,
	}); err != nil {
		return err
	}
	if deps.Orders, err = orders.NewService(orderRepo, dbClient, catalogRepo, emitter, logg); err != nil {
		return err
	}
	if deps.Users, err = users.NewService(userRepo); err != nil {
		return err
	}
	if deps.Reports, err = reports.NewService(reports.NewRepository(conn), loc); err != nil {
		return err
	}

	srv := api.NewServer(addr, routes.NewRouter(deps), cfg.HTTP)
	logg.Info(ctx, "starting api server")
	return api.Serve(ctx, srv, cfg.HTTP, logg)
}
