package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/pepdine/pep-backend/api/middleware"
	"github.com/pepdine/pep-backend/api/responses"
	"github.com/pepdine/pep-backend/pkg/enums"
	pkgerrors "github.com/pepdine/pep-backend/pkg/errors"
	"github.com/pepdine/pep-backend/pkg/logger"
	"github.com/pepdine/pep-backend/pkg/outbox"
)

func userIDFromRequest(r *http.Request) (uuid.UUID, error) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	return userID, nil
}

func actorFromRequest(r *http.Request) (outbox.ActorRef, error) {
	userID, err := userIDFromRequest(r)
	if err != nil {
		return outbox.ActorRef{}, err
	}
	role := middleware.RoleFromContext(r.Context())
	return outbox.ActorRef{
		UserID:  userID,
		Role:    role.String(),
		IsGuest: role == enums.UserRoleGuest,
	}, nil
}

// unavailable writes a 500 when a handler was wired without its service.
func unavailable(w http.ResponseWriter, r *http.Request, logg *logger.Logger, name string) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.Newf(pkgerrors.CodeInternal, "%s service unavailable", name))
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}
