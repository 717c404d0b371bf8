package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/pepdine/pep-backend/pkg/logger"
)

const guestCartIdleDays = 14

type GuestCartCleanupJobParams struct {
	Logger   *logger.Logger
	Carts    idleCartRepo
	IdleDays int
}

type idleCartRepo interface {
	DeleteIdleGuestCarts(ctx context.Context, cutoff time.Time) (int64, error)
}

// NewGuestCartCleanupJob drops guest carts nobody has touched for IdleDays.
// The guest user row is kept so past orders stay attached to it.
func NewGuestCartCleanupJob(params GuestCartCleanupJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Carts == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	days := params.IdleDays
	if days <= 0 {
		days = guestCartIdleDays
	}
	return &guestCartCleanupJob{logg: params.Logger, carts: params.Carts, days: days, now: time.Now}, nil
}

type guestCartCleanupJob struct {
	logg  *logger.Logger
	carts idleCartRepo
	days  int
	now   func() time.Time
}

func (j *guestCartCleanupJob) Name() string { return "guest-cart-cleanup" }

func (j *guestCartCleanupJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().AddDate(0, 0, -j.days)
	deleted, err := j.carts.DeleteIdleGuestCarts(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("guest cart cleanup: %w", err)
	}
	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"cutoff":       cutoff,
		"idle_days":    j.days,
		"carts_purged": deleted,
	}), "guest cart cleanup complete")
	return nil
}
