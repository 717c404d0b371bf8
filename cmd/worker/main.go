package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/pepdine/pep-backend/api"
	"github.com/pepdine/pep-backend/internal/notifications"
	"github.com/pepdine/pep-backend/pkg/config"
	"github.com/pepdine/pep-backend/pkg/instance"
	"github.com/pepdine/pep-backend/pkg/logger"
	"github.com/pepdine/pep-backend/pkg/mailer"
	"github.com/pepdine/pep-backend/pkg/metrics"
	"github.com/pepdine/pep-backend/pkg/outbox/idempotency"
	"github.com/pepdine/pep-backend/pkg/outbox/registry"
	"github.com/pepdine/pep-backend/pkg/pubsub"
	"github.com/pepdine/pep-backend/pkg/redis"
)

const serviceKind = "worker"

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
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": serviceKind,
		"instance":    instance.GetID(),
	})

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	exitOnErr(ctx, logg, "failed to bootstrap redis", err)
	defer closeQuietly(ctx, logg, "redis", redisClient.Close)

	pubsubClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
	exitOnErr(ctx, logg, "failed to bootstrap pubsub", err)
	defer closeQuietly(ctx, logg, "pubsub", pubsubClient.Close)

	eventRegistry, err := registry.NewEventRegistry(cfg.PubSub)
	exitOnErr(ctx, logg, "failed to build event registry", err)

	guard, err := idempotency.NewGuard(redisClient, cfg.Eventing.ConsumerIdempotencyTTL)
	exitOnErr(ctx, logg, "failed to build idempotency guard", err)

	subscriber, err := pubsubClient.OrdersSubscriber(ctx)
	exitOnErr(ctx, logg, "failed to open orders subscription", err)

	reg := metrics.NewRegistry()
	jobMetrics := metrics.NewJobMetrics(reg)

	emails, err := notifications.NewConsumer(notifications.ConsumerParams{
		Subscription:    subscriber,
		Registry:        eventRegistry,
		Guard:           guard,
		Mailer:          mailer.New(cfg.Mail, logg),
		RestaurantInbox: cfg.Mail.RestaurantInbox,
		Metrics:         jobMetrics,
		Logger:          logg,
	})
	exitOnErr(ctx, logg, "failed to create notification consumer", err)

	var metricsServer *http.Server
	if cfg.App.MetricsPort != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler(reg))
		metricsServer = api.NewServer(":"+cfg.App.MetricsPort, mux, cfg.HTTP)
	}

	service, err := NewService(ServiceParams{
		Config:        cfg,
		Logger:        logg,
		Redis:         redisClient,
		PubSub:        pubsubClient,
		Consumers:     map[string]runner{"order-emails": emails},
		MetricsServer: metricsServer,
	})
	exitOnErr(ctx, logg, "failed to create worker", err)

	logg.Info(ctx, "starting worker")
	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "worker stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "worker shutting down gracefully")
}

func exitOnErr(ctx context.Context, logg *logger.Logger, msg string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, msg, err)
	os.Exit(1)
}

func closeQuietly(ctx context.Context, logg *logger.Logger, name string, closeFn func() error) {
	if err := closeFn(); err != nil {
		logg.Error(ctx, "error closing "+name, err)
	}
}
