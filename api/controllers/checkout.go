package controllers

import (
	"net/http"

	"github.com/pepdine/pep-backend/api/middleware"
	"github.com/pepdine/pep-backend/api/responses"
	"github.com/pepdine/pep-backend/api/validators"
	checkoutsvc "github.com/pepdine/pep-backend/internal/checkout"
	"github.com/pepdine/pep-backend/pkg/enums"
	"github.com/pepdine/pep-backend/pkg/logger"
	"github.com/pepdine/pep-backend/pkg/types"
)

const maxNotesLength = 500

type checkoutRequest struct {
	OrderType       enums.OrderType     `json:"order_type"`
	PaymentMethod   enums.PaymentMethod `json:"payment_method"`
	CustomerName    string              `json:"customer_name"`
	CustomerEmail   string              `json:"customer_email"`
	CustomerPhone   string              `json:"customer_phone"`
	DeliveryAddress *types.Address      `json:"delivery_address,omitempty"`
	Notes           string              `json:"notes,omitempty"`
}

// Checkout converts the caller's cart into an order. Customers and guests
// share it; the buyer comes from whichever middleware resolved the principal.
func Checkout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "checkout")
			return
		}

		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		buyer := checkoutsvc.Buyer{
			UserID:  userID,
			Role:    middleware.RoleFromContext(r.Context()),
			IsGuest: middleware.IsGuestFromContext(r.Context()),
		}
		notes, err := validators.CleanText("notes", payload.Notes, maxNotesLength)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Execute(r.Context(), buyer, checkoutsvc.Input{
			OrderType:       payload.OrderType,
			PaymentMethod:   payload.PaymentMethod,
			CustomerName:    payload.CustomerName,
			CustomerEmail:   payload.CustomerEmail,
			CustomerPhone:   payload.CustomerPhone,
			DeliveryAddress: payload.DeliveryAddress,
			Notes:           notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}
