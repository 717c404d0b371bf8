package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/pepdine/pep-backend/api"
	"github.com/pepdine/pep-backend/pkg/config"
	"github.com/pepdine/pep-backend/pkg/logger"
)

type pinger interface {
	Ping(context.Context) error
}

type runner interface {
	Run(context.Context) error
}

type ServiceParams struct {
	Config    *config.Config
	Logger    *logger.Logger
	Redis     pinger
	PubSub    pinger
	Consumers map[string]runner
	// MetricsServer is optional; nil disables the worker /metrics listener.
	MetricsServer *http.Server
}

// Service runs the event consumers side by side. The first consumer to fail
// stops the others.
type Service struct {
	cfg       *config.Config
	logg      *logger.Logger
	redis     pinger
	pubsub    pinger
	consumers map[string]runner
	metrics   *http.Server
}

func NewService(params ServiceParams) (*Service, error) {
	switch {
	case params.Config == nil:
		return nil, errors.New("config is required")
	case params.Logger == nil:
		return nil, errors.New("logger is required")
	case params.Redis == nil:
		return nil, errors.New("redis client is required")
	case params.PubSub == nil:
		return nil, errors.New("pubsub client is required")
	case len(params.Consumers) == 0:
		return nil, errors.New("at least one consumer is required")
	}
	return &Service{
		cfg:       params.Config,
		logg:      params.Logger,
		redis:     params.Redis,
		pubsub:    params.PubSub,
		consumers: params.Consumers,
		metrics:   params.MetricsServer,
	}, nil
}

func (s *Service) ensureReadiness(ctx context.Context) error {
	for name, dep := range map[string]pinger{"redis": s.redis, "pubsub": s.pubsub} {
		if err := dep.Ping(ctx); err != nil {
			s.logg.Error(ctx, fmt.Sprintf("%s ping failed", name), err)
			return fmt.Errorf("%s ping failed: %w", name, err)
		}
	}
	s.logg.Info(ctx, "all worker dependencies are ready")
	return nil
}

func (s *Service) Run(ctx context.Context) error {
	if err := s.ensureReadiness(ctx); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	for name, consumer := range s.consumers {
		g.Go(func() error {
			cctx := s.logg.WithField(gctx, "consumer", name)
			s.logg.Info(cctx, "consumer started")
			if err := consumer.Run(cctx); err != nil && !errors.Is(err, context.Canceled) {
				s.logg.Error(cctx, "consumer stopped unexpectedly", err)
				return fmt.Errorf("%s: %w", name, err)
			}
			return nil
		})
	}
	if s.metrics != nil {
		g.Go(func() error {
			return api.Serve(gctx, s.metrics, s.cfg.HTTP, s.logg)
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	return err
}
