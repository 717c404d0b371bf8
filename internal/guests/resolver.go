// Package guests maps anonymous session ids to the guest users that own
// their carts and orders.
package guests

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pepdine/pep-backend/pkg/db/models"
	pkgerrors "github.com/pepdine/pep-backend/pkg/errors"
	"github.com/pepdine/pep-backend/pkg/logger"
	redisclient "github.com/pepdine/pep-backend/pkg/redis"
)

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{8,128}$`)

type cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	GuestSessionKey(sessionID string) string
}

type userStore interface {
	EnsureGuest(ctx context.Context, sessionID string) (*models.User, error)
}

// Resolver turns a guest session id into a user id.
type Resolver interface {
	Resolve(ctx context.Context, sessionID string) (uuid.UUID, error)
}

type resolver struct {
	users userStore
	cache cache
	ttl   time.Duration
	logg  *logger.Logger
}

// NewResolver builds a resolver. cache may be nil, in which case every call
// goes to the database.
func NewResolver(users userStore, cache cache, ttl time.Duration, logg *logger.Logger) (Resolver, error) {
	if users == nil {
		return nil, fmt.Errorf("user store required")
	}
	return &resolver{users: users, cache: cache, ttl: ttl, logg: logg}, nil
}

// ValidSessionID reports whether id is an acceptable guest session id.
func ValidSessionID(id string) bool {
	return sessionIDPattern.MatchString(id)
}

func (r *resolver) Resolve(ctx context.Context, sessionID string) (uuid.UUID, error) {
	sessionID = strings.TrimSpace(sessionID)
	if !ValidSessionID(sessionID) {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid guest session id").
			WithDetails(map[string]string{"session_id": "must be 8-128 characters of letters, digits, '-' or '_'"})
	}

	if r.cache != nil {
		cached, err := r.cache.Get(ctx, r.cache.GuestSessionKey(sessionID))
		switch {
		case err == nil:
			if id, parseErr := uuid.Parse(cached); parseErr == nil {
				return id, nil
			}
		case !redisclient.IsMiss(err):
			r.logg.Warn(r.logg.WithField(ctx, "error", err.Error()), "guest session cache read failed")
		}
	}

	user, err := r.users.EnsureGuest(ctx, sessionID)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve guest session")
	}
	if !user.IsActive {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "guest session disabled")
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, r.cache.GuestSessionKey(sessionID), user.ID.String(), r.ttl); err != nil {
			r.logg.Warn(r.logg.WithField(ctx, "error", err.Error()), "guest session cache write failed")
		}
	}
	return user.ID, nil
}
