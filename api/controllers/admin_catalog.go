package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/pepdine/pep-backend/api/responses"
	"github.com/pepdine/pep-backend/api/validators"
	"github.com/pepdine/pep-backend/internal/catalog"
	"github.com/pepdine/pep-backend/pkg/logger"
	"github.com/pepdine/pep-backend/pkg/types"
)

const categoryParam = "categoryId"

type menuItemCreateRequest struct {
	CategoryID           *uuid.UUID       `json:"category_id,omitempty"`
	Name                 string           `json:"name" validate:"required,max=120"`
	Description          string           `json:"description" validate:"max=1000"`
	ImageURL             *string          `json:"image_url,omitempty" validate:"omitempty,url,max=500"`
	MRPCents             int              `json:"mrp_cents" validate:"min=0"`
	DiscountedPriceCents int              `json:"discounted_price_cents" validate:"min=0"`
	Sizes                types.MenuSizes  `json:"sizes"`
	Addons               types.MenuAddons `json:"addons"`
	Quantity             int              `json:"quantity" validate:"min=0"`
	IsVeg                bool             `json:"is_veg"`
	IsActive             *bool            `json:"is_active,omitempty"`
}

type menuItemUpdateRequest struct {
	CategoryID           *uuid.UUID        `json:"category_id,omitempty"`
	Name                 *string           `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	Description          *string           `json:"description,omitempty" validate:"omitempty,max=1000"`
	ImageURL             *string           `json:"image_url,omitempty" validate:"omitempty,url,max=500"`
	MRPCents             *int              `json:"mrp_cents,omitempty" validate:"omitempty,min=0"`
	DiscountedPriceCents *int              `json:"discounted_price_cents,omitempty" validate:"omitempty,min=0"`
	Sizes                *types.MenuSizes  `json:"sizes,omitempty"`
	Addons               *types.MenuAddons `json:"addons,omitempty"`
	IsVeg                *bool             `json:"is_veg,omitempty"`
	IsActive             *bool             `json:"is_active,omitempty"`
}

type stockRequest struct {
	Quantity *int `json:"quantity" validate:"required,min=0"`
}

type categoryCreateRequest struct {
	Name        string `json:"name" validate:"required,max=80"`
	Description string `json:"description" validate:"max=500"`
	SortOrder   int    `json:"sort_order"`
	IsActive    *bool  `json:"is_active,omitempty"`
}

type categoryUpdateRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=80"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
	SortOrder   *int    `json:"sort_order,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

func AdminCreateMenuItem(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "catalog")
			return
		}
		var req menuItemCreateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.CreateMenuItem(r.Context(), catalog.MenuItemInput{
			CategoryID:           req.CategoryID,
			Name:                 req.Name,
			Description:          req.Description,
			ImageURL:             req.ImageURL,
			MRPCents:             req.MRPCents,
			DiscountedPriceCents: req.DiscountedPriceCents,
			Sizes:                req.Sizes,
			Addons:               req.Addons,
			Quantity:             req.Quantity,
			IsVeg:                req.IsVeg,
			IsActive:             boolOr(req.IsActive, true),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

func AdminUpdateMenuItem(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "catalog")
			return
		}
		id, err := validators.ParseUUIDParam(r, menuItemParam)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req menuItemUpdateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.UpdateMenuItem(r.Context(), id, catalog.MenuItemUpdate{
			CategoryID:           req.CategoryID,
			Name:                 req.Name,
			Description:          req.Description,
			ImageURL:             req.ImageURL,
			MRPCents:             req.MRPCents,
			DiscountedPriceCents: req.DiscountedPriceCents,
			Sizes:                req.Sizes,
			Addons:               req.Addons,
			IsVeg:                req.IsVeg,
			IsActive:             req.IsActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// AdminDeleteMenuItem hides the item; past orders keep referencing it.
func AdminDeleteMenuItem(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "catalog")
			return
		}
		id, err := validators.ParseUUIDParam(r, menuItemParam)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteMenuItem(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

func AdminSetStock(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "catalog")
			return
		}
		id, err := validators.ParseUUIDParam(r, menuItemParam)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req stockRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.SetStock(r.Context(), id, *req.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

func AdminCreateCategory(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "catalog")
			return
		}
		var req categoryCreateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		category, err := svc.CreateCategory(r.Context(), catalog.CategoryInput{
			Name:        req.Name,
			Description: req.Description,
			SortOrder:   req.SortOrder,
			IsActive:    boolOr(req.IsActive, true),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, category)
	}
}

func AdminUpdateCategory(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "catalog")
			return
		}
		id, err := validators.ParseUUIDParam(r, categoryParam)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req categoryUpdateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		category, err := svc.UpdateCategory(r.Context(), id, catalog.CategoryUpdate{
			Name:        req.Name,
			Description: req.Description,
			SortOrder:   req.SortOrder,
			IsActive:    req.IsActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, category)
	}
}
