package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pepdine/pep-backend/api/responses"
	"github.com/pepdine/pep-backend/api/validators"
	"github.com/pepdine/pep-backend/internal/coupons"
	"github.com/pepdine/pep-backend/internal/orders"
	"github.com/pepdine/pep-backend/internal/reports"
	"github.com/pepdine/pep-backend/internal/users"
	"github.com/pepdine/pep-backend/pkg/db/models"
	"github.com/pepdine/pep-backend/pkg/enums"
	pkgerrors "github.com/pepdine/pep-backend/pkg/errors"
	"github.com/pepdine/pep-backend/pkg/logger"
)

const couponParam = "couponId"

type couponCreateRequest struct {
	Code             string           `json:"code" validate:"required,max=40"`
	Description      string           `json:"description" validate:"max=300"`
	Type             enums.CouponType `json:"type" validate:"required"`
	Value            decimal.Decimal  `json:"value"`
	MinOrderCents    int              `json:"min_order_cents" validate:"min=0"`
	MaxDiscountCents *int             `json:"max_discount_cents,omitempty" validate:"omitempty,min=0"`
	ExpiresAt        *time.Time       `json:"expires_at,omitempty"`
}

type couponResponse struct {
	ID               uuid.UUID        `json:"id"`
	Code             string           `json:"code"`
	Description      string           `json:"description"`
	Type             enums.CouponType `json:"type"`
	Value            decimal.Decimal  `json:"value"`
	MinOrderCents    int              `json:"min_order_cents"`
	MaxDiscountCents *int             `json:"max_discount_cents,omitempty"`
	IsActive         bool             `json:"is_active"`
	ExpiresAt        *time.Time       `json:"expires_at,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
}

func newCouponResponse(c models.Coupon) couponResponse {
	return couponResponse{
		ID:               c.ID,
		Code:             c.Code,
		Description:      c.Description,
		Type:             c.Type,
		Value:            c.Value,
		MinOrderCents:    c.MinOrderCents,
		MaxDiscountCents: c.MaxDiscountCents,
		IsActive:         c.IsActive,
		ExpiresAt:        c.ExpiresAt,
		CreatedAt:        c.CreatedAt,
	}
}

type orderStatusRequest struct {
	Status enums.OrderStatus `json:"status" validate:"required"`
}

func AdminCreateCoupon(svc coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "coupons")
			return
		}
		var req couponCreateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		couponType, err := enums.ParseCouponType(strings.TrimSpace(string(req.Type)))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid coupon type").
				WithDetails(map[string]string{"type": "must be percentage or fixed"}))
			return
		}

		coupon, err := svc.Create(r.Context(), coupons.CreateInput{
			Code:             req.Code,
			Description:      req.Description,
			Type:             couponType,
			Value:            req.Value,
			MinOrderCents:    req.MinOrderCents,
			MaxDiscountCents: req.MaxDiscountCents,
			ExpiresAt:        req.ExpiresAt,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newCouponResponse(*coupon))
	}
}

// AdminListCoupons lists every coupon unless ?active=true.
func AdminListCoupons(svc coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "coupons")
			return
		}
		active, err := validators.ParseQueryBool(r, "active")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.List(r.Context(), boolOr(active, false))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := make([]couponResponse, 0, len(list))
		for _, c := range list {
			out = append(out, newCouponResponse(c))
		}
		responses.WriteSuccess(w, out)
	}
}

func AdminDeactivateCoupon(svc coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "coupons")
			return
		}
		id, err := validators.ParseUUIDParam(r, couponParam)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Deactivate(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

// AdminListUsers filters by ?role= and hides guests unless ?include_guests=true.
func AdminListUsers(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "users")
			return
		}
		var role *enums.UserRole
		if raw := strings.TrimSpace(r.URL.Query().Get("role")); raw != "" {
			parsed, err := enums.ParseUserRole(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role").
					WithDetails(map[string]any{"field": "role"}))
				return
			}
			role = &parsed
		}
		includeGuests, err := validators.ParseQueryBool(r, "include_guests")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), role, boolOr(includeGuests, false), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func AdminListOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "orders")
			return
		}
		var status *enums.OrderStatus
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			parsed, err := enums.ParseOrderStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status").
					WithDetails(map[string]any{"field": "status"}))
				return
			}
			status = &parsed
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), status, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func AdminGetOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "orders")
			return
		}
		orderID, err := validators.ParseUUIDParam(r, orderParam)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Get(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// AdminUpdateOrderStatus moves an order along the status machine. Illegal
// transitions come back as STATE_CONFLICT.
func AdminUpdateOrderStatus(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "orders")
			return
		}
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := validators.ParseUUIDParam(r, orderParam)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req orderStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		next, err := enums.ParseOrderStatus(strings.TrimSpace(string(req.Status)))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status").
				WithDetails(map[string]any{"field": "status"}))
			return
		}

		order, err := svc.UpdateStatus(r.Context(), actor, orderID, next)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// AdminSalesReport takes ?from and ?to as YYYY-MM-DD in the restaurant's time zone.
func AdminSalesReport(svc reports.Service, loc *time.Location, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "reports")
			return
		}
		query, err := reports.ParseRange(r.URL.Query().Get("from"), r.URL.Query().Get("to"), loc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		report, err := svc.Sales(r.Context(), query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}
