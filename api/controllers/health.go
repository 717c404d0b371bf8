package controllers

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pepdine/pep-backend/api/responses"
	"github.com/pepdine/pep-backend/pkg/config"
	pkgerrors "github.com/pepdine/pep-backend/pkg/errors"
	"github.com/pepdine/pep-backend/pkg/logger"
)

const (
	envHeader          = "X-Pep-Env"
	readyProbeTimeout  = 2 * time.Second
	checkOK            = "ok"
	checkUnavailable   = "unavailable"
	dependencyDatabase = "database"
	dependencyRedis    = "redis"
)

type pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the database and Redis concurrently.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP, redisP pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readyProbeTimeout)
		defer cancel()

		checks := map[string]string{dependencyDatabase: checkOK, dependencyRedis: checkOK}
		var dbErr, redisErr error
		var g errgroup.Group
		g.Go(func() error {
			dbErr = ping(ctx, dbP)
			return nil
		})
		g.Go(func() error {
			redisErr = ping(ctx, redisP)
			return nil
		})
		_ = g.Wait()

		if dbErr != nil {
			checks[dependencyDatabase] = checkUnavailable
		}
		if redisErr != nil {
			checks[dependencyRedis] = checkUnavailable
		}
		if err := firstErr(dbErr, redisErr); err != nil {
			logCtx := logg.WithField(r.Context(), "checks", checks)
			responses.WriteError(logCtx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "dependency unavailable"))
			return
		}

		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}

func ping(ctx context.Context, p pinger) error {
	if p == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "not configured")
	}
	return p.Ping(ctx)
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
