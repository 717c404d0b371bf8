package middleware

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pepdine/pep-backend/api/responses"
	"github.com/pepdine/pep-backend/pkg/enums"
	"github.com/pepdine/pep-backend/pkg/logger"
)

// SessionIDParam is the URL parameter carrying the guest session id.
const SessionIDParam = "sessionId"

type guestResolver interface {
	Resolve(ctx context.Context, sessionID string) (uuid.UUID, error)
}

// GuestSession resolves {sessionId} to its guest user so the cart and checkout
// handlers run unchanged for guests.
func GuestSession(resolver guestResolver, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := chi.URLParam(r, SessionIDParam)
			userID, err := resolver.Resolve(r.Context(), sessionID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			ctx := WithPrincipal(r.Context(), userID, enums.UserRoleGuest)
			if logg != nil {
				ctx = logg.WithGuestSession(ctx, sessionID)
				ctx = logg.WithUserID(ctx, userID.String())
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
