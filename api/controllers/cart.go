package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/pepdine/pep-backend/api/responses"
	"github.com/pepdine/pep-backend/api/validators"
	"github.com/pepdine/pep-backend/internal/cart"
	"github.com/pepdine/pep-backend/pkg/logger"
)

// The cart handlers serve both /cart and /guest/{sessionId}/cart. The guest
// session middleware places the guest user in the context the same way Auth
// places a customer.

const (
	cartLineParam         = "itemId"
	maxInstructionsLength = 500
)

type addCartItemRequest struct {
	MenuItemID          uuid.UUID          `json:"menu_item_id" validate:"required"`
	Quantity            int                `json:"quantity" validate:"required,min=1,max=100"`
	Size                string             `json:"size" validate:"max=60"`
	Addons              []cartAddonRequest `json:"addons" validate:"omitempty,max=20,dive"`
	SpecialInstructions string             `json:"special_instructions" validate:"max=500"`
}

type cartAddonRequest struct {
	ID       string `json:"id" validate:"required,max=60"`
	Quantity *int   `json:"quantity" validate:"omitempty,max=20"`
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

type applyCouponRequest struct {
	CouponCode string `json:"coupon_code" validate:"required,max=40"`
}

func CartFetch(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return cartAction(svc, logg, func(r *http.Request, userID uuid.UUID) (*cart.View, error) {
		return svc.Get(r.Context(), userID)
	})
}

// CartAddItem prices the requested size and addons and merges identical lines.
func CartAddItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return cartAction(svc, logg, func(r *http.Request, userID uuid.UUID) (*cart.View, error) {
		var req addCartItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			return nil, err
		}

		addons := make([]cart.AddonRequest, 0, len(req.Addons))
		for _, a := range req.Addons {
			// omitted means one; zero or less reaches the service, which drops it
			qty := 1
			if a.Quantity != nil {
				qty = *a.Quantity
			}
			addons = append(addons, cart.AddonRequest{ID: strings.TrimSpace(a.ID), Quantity: qty})
		}
		instructions, err := validators.CleanText("special_instructions", req.SpecialInstructions, maxInstructionsLength)
		if err != nil {
			return nil, err
		}
		return svc.AddItem(r.Context(), userID, cart.AddItemInput{
			MenuItemID:          req.MenuItemID,
			Quantity:            req.Quantity,
			Size:                req.Size,
			Addons:              addons,
			SpecialInstructions: instructions,
		})
	})
}

// CartUpdateItem sets a line's quantity; zero or less removes the line.
func CartUpdateItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return cartAction(svc, logg, func(r *http.Request, userID uuid.UUID) (*cart.View, error) {
		lineID, err := validators.ParseUUIDParam(r, cartLineParam)
		if err != nil {
			return nil, err
		}
		var req updateCartItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			return nil, err
		}
		return svc.UpdateItemQuantity(r.Context(), userID, lineID, req.Quantity)
	})
}

func CartRemoveItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return cartAction(svc, logg, func(r *http.Request, userID uuid.UUID) (*cart.View, error) {
		lineID, err := validators.ParseUUIDParam(r, cartLineParam)
		if err != nil {
			return nil, err
		}
		return svc.RemoveItem(r.Context(), userID, lineID)
	})
}

func CartClear(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return cartAction(svc, logg, func(r *http.Request, userID uuid.UUID) (*cart.View, error) {
		return svc.Clear(r.Context(), userID)
	})
}

func CartApplyCoupon(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return cartAction(svc, logg, func(r *http.Request, userID uuid.UUID) (*cart.View, error) {
		var req applyCouponRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			return nil, err
		}
		return svc.ApplyCoupon(r.Context(), userID, req.CouponCode)
	})
}

func CartRemoveCoupon(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return cartAction(svc, logg, func(r *http.Request, userID uuid.UUID) (*cart.View, error) {
		return svc.RemoveCoupon(r.Context(), userID)
	})
}

func cartAction(svc cart.Service, logg *logger.Logger, fn func(*http.Request, uuid.UUID) (*cart.View, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "cart")
			return
		}
		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := fn(r, userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}
