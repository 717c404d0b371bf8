package controllers

import (
	"net/http"

	"github.com/pepdine/pep-backend/api/responses"
	"github.com/pepdine/pep-backend/api/validators"
	"github.com/pepdine/pep-backend/internal/catalog"
	"github.com/pepdine/pep-backend/pkg/logger"
)

const (
	menuItemParam   = "itemId"
	maxSearchLength = 80
)

// MenuList serves the public menu. Admin routes pass includeInactive=true.
func MenuList(svc catalog.Service, includeInactive bool, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "catalog")
			return
		}

		filters, err := menuFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListMenu(r.Context(), filters, params, includeInactive)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func MenuItem(svc catalog.Service, includeInactive bool, logg *logger.Logger) http.HandlerFunc {
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
		item, err := svc.GetMenuItem(r.Context(), id, includeInactive)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

func CategoryList(svc catalog.Service, includeInactive bool, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "catalog")
			return
		}
		categories, err := svc.ListCategories(r.Context(), includeInactive)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, categories)
	}
}

func menuFilters(r *http.Request) (catalog.MenuFilters, error) {
	categoryID, err := validators.ParseQueryUUID(r, "category_id")
	if err != nil {
		return catalog.MenuFilters{}, err
	}
	veg, err := validators.ParseQueryBool(r, "veg")
	if err != nil {
		return catalog.MenuFilters{}, err
	}
	query, err := validators.CleanText("q", r.URL.Query().Get("q"), maxSearchLength)
	if err != nil {
		return catalog.MenuFilters{}, err
	}
	return catalog.MenuFilters{
		CategoryID: categoryID,
		Veg:        veg,
		Query:      query,
	}, nil
}
