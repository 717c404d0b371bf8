package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pepdine/pep-backend/pkg/db"
	"github.com/pepdine/pep-backend/pkg/db/models"
	pkgerrors "github.com/pepdine/pep-backend/pkg/errors"
	"github.com/pepdine/pep-backend/pkg/pagination"
	"github.com/pepdine/pep-backend/pkg/types"
)

// Service exposes menu browsing and the admin catalog screens.
type Service interface {
	ListMenu(ctx context.Context, filters MenuFilters, params pagination.Params, includeInactive bool) (*MenuPage, error)
	GetMenuItem(ctx context.Context, id uuid.UUID, includeInactive bool) (*MenuItemDTO, error)
	CreateMenuItem(ctx context.Context, input MenuItemInput) (*MenuItemDTO, error)
	UpdateMenuItem(ctx context.Context, id uuid.UUID, input MenuItemUpdate) (*MenuItemDTO, error)
	DeleteMenuItem(ctx context.Context, id uuid.UUID) error
	SetStock(ctx context.Context, id uuid.UUID, quantity int) (*MenuItemDTO, error)
	ListCategories(ctx context.Context, includeInactive bool) ([]CategoryDTO, error)
	CreateCategory(ctx context.Context, input CategoryInput) (*CategoryDTO, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, input CategoryUpdate) (*CategoryDTO, error)
}

type service struct {
	repo *Repository
}

func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListMenu(ctx context.Context, filters MenuFilters, params pagination.Params, includeInactive bool) (*MenuPage, error) {
	var cursor *pagination.Cursor
	if strings.TrimSpace(params.Cursor) != "" {
		parsed, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		cursor = parsed
	}

	rows, err := s.repo.ListMenuItems(ctx, menuQuery{
		Filters:         filters,
		IncludeInactive: includeInactive,
		Limit:           params.Limit,
		Cursor:          cursor,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list menu items")
	}

	page, next := pagination.Trim(rows, params.Limit, func(item models.MenuItem) pagination.Cursor {
		return pagination.Cursor{Key: item.Name, ID: item.ID}
	})
	out := &MenuPage{Items: make([]MenuItemDTO, 0, len(page)), NextCursor: next}
	for _, item := range page {
		out.Items = append(out.Items, NewMenuItemDTO(item))
	}
	return out, nil
}

func (s *service) GetMenuItem(ctx context.Context, id uuid.UUID, includeInactive bool) (*MenuItemDTO, error) {
	item, err := s.loadItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if !item.IsActive && !includeInactive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "menu item not found")
	}
	dto := NewMenuItemDTO(*item)
	return &dto, nil
}

func (s *service) CreateMenuItem(ctx context.Context, input MenuItemInput) (*MenuItemDTO, error) {
	item := &models.MenuItem{
		CategoryID:           input.CategoryID,
		Name:                 strings.TrimSpace(input.Name),
		Description:          strings.TrimSpace(input.Description),
		ImageURL:             input.ImageURL,
		MRPCents:             input.MRPCents,
		DiscountedPriceCents: input.DiscountedPriceCents,
		Sizes:                input.Sizes,
		Addons:               input.Addons,
		Quantity:             input.Quantity,
		IsVeg:                input.IsVeg,
		IsActive:             input.IsActive,
	}
	if err := s.validateItem(ctx, item); err != nil {
		return nil, err
	}
	if err := s.repo.CreateMenuItem(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create menu item")
	}
	dto := NewMenuItemDTO(*item)
	return &dto, nil
}

func (s *service) UpdateMenuItem(ctx context.Context, id uuid.UUID, input MenuItemUpdate) (*MenuItemDTO, error) {
	item, err := s.loadItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.CategoryID != nil {
		item.CategoryID = input.CategoryID
	}
	if input.Name != nil {
		item.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		item.Description = strings.TrimSpace(*input.Description)
	}
	if input.ImageURL != nil {
		item.ImageURL = input.ImageURL
	}
	if input.MRPCents != nil {
		item.MRPCents = *input.MRPCents
	}
	if input.DiscountedPriceCents != nil {
		item.DiscountedPriceCents = *input.DiscountedPriceCents
	}
	if input.Sizes != nil {
		item.Sizes = *input.Sizes
	}
	if input.Addons != nil {
		item.Addons = *input.Addons
	}
	if input.IsVeg != nil {
		item.IsVeg = *input.IsVeg
	}
	if input.IsActive != nil {
		item.IsActive = *input.IsActive
	}
	if err := s.validateItem(ctx, item); err != nil {
		return nil, err
	}
	if err := s.repo.SaveMenuItem(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update menu item")
	}
	dto := NewMenuItemDTO(*item)
	return &dto, nil
}

// DeleteMenuItem hides the item; order history keeps pointing at it.
func (s *service) DeleteMenuItem(ctx context.Context, id uuid.UUID) error {
	ok, err := s.repo.SetMenuItemActive(ctx, id, false)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deactivate menu item")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "menu item not found")
	}
	return nil
}

func (s *service) SetStock(ctx context.Context, id uuid.UUID, quantity int) (*MenuItemDTO, error) {
	if quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}
	ok, err := s.repo.SetStock(ctx, id, quantity)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "set stock")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "menu item not found")
	}
	return s.GetMenuItem(ctx, id, true)
}

func (s *service) ListCategories(ctx context.Context, includeInactive bool) ([]CategoryDTO, error) {
	rows, err := s.repo.ListCategories(ctx, includeInactive)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list categories")
	}
	out := make([]CategoryDTO, 0, len(rows))
	for _, c := range rows {
		out = append(out, NewCategoryDTO(c))
	}
	return out, nil
}

func (s *service) CreateCategory(ctx context.Context, input CategoryInput) (*CategoryDTO, error) {
	category := &models.Category{
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		SortOrder:   input.SortOrder,
		IsActive:    input.IsActive,
	}
	if category.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		return nil, categoryWriteError(err, "create category")
	}
	dto := NewCategoryDTO(*category)
	return &dto, nil
}

func (s *service) UpdateCategory(ctx context.Context, id uuid.UUID, input CategoryUpdate) (*CategoryDTO, error) {
	category, err := s.repo.GetCategory(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load category")
	}
	if input.Name != nil {
		category.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		category.Description = strings.TrimSpace(*input.Description)
	}
	if input.SortOrder != nil {
		category.SortOrder = *input.SortOrder
	}
	if input.IsActive != nil {
		category.IsActive = *input.IsActive
	}
	if category.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if err := s.repo.SaveCategory(ctx, category); err != nil {
		return nil, categoryWriteError(err, "update category")
	}
	dto := NewCategoryDTO(*category)
	return &dto, nil
}

func (s *service) loadItem(ctx context.Context, id uuid.UUID) (*models.MenuItem, error) {
	item, err := s.repo.GetMenuItem(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "menu item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load menu item")
	}
	return item, nil
}

func (s *service) validateItem(ctx context.Context, item *models.MenuItem) error {
	fields := map[string]string{}
	if item.Name == "" {
		fields["name"] = "is required"
	}
	if item.MRPCents <= 0 {
		fields["mrp_cents"] = "must be greater than 0"
	}
	if item.DiscountedPriceCents < 0 {
		fields["discounted_price_cents"] = "cannot be negative"
	}
	if item.Quantity < 0 {
		fields["quantity"] = "cannot be negative"
	}
	if msg := validateSizes(item.Sizes); msg != "" {
		fields["sizes"] = msg
	}
	if msg := validateAddons(item.Addons); msg != "" {
		fields["addons"] = msg
	}
	if len(fields) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid menu item").WithDetails(fields)
	}

	if item.CategoryID != nil {
		if _, err := s.repo.GetCategory(ctx, *item.CategoryID); err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeValidation, "invalid menu item").
					WithDetails(map[string]string{"category_id": "does not exist"})
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load category")
		}
	}
	return nil
}

func validateSizes(sizes types.MenuSizes) string {
	seen := map[string]struct{}{}
	defaults := 0
	for i := range sizes {
		sizes[i].Name = strings.TrimSpace(sizes[i].Name)
		size := sizes[i]
		if size.Name == "" {
			return "size name is required"
		}
		if size.PriceCents <= 0 {
			return fmt.Sprintf("size %s must have a positive price", size.Name)
		}
		if _, dup := seen[size.Name]; dup {
			return fmt.Sprintf("size %s is listed twice", size.Name)
		}
		seen[size.Name] = struct{}{}
		if size.IsDefault {
			defaults++
		}
	}
	if defaults > 1 {
		return "at most one size can be the default"
	}
	return ""
}

func validateAddons(addons types.MenuAddons) string {
	seen := map[string]struct{}{}
	for i := range addons {
		addons[i].ID = strings.TrimSpace(addons[i].ID)
		addons[i].Name = strings.TrimSpace(addons[i].Name)
		addon := addons[i]
		if addon.ID == "" || addon.Name == "" {
			return "addon id and name are required"
		}
		if addon.PriceCents < 0 {
			return fmt.Sprintf("addon %s cannot have a negative price", addon.ID)
		}
		if _, dup := seen[addon.ID]; dup {
			return fmt.Sprintf("addon %s is listed twice", addon.ID)
		}
		seen[addon.ID] = struct{}{}
	}
	return ""
}

func categoryWriteError(err error, op string) error {
	if db.IsUniqueViolation(err, "ux_categories_name") {
		return pkgerrors.New(pkgerrors.CodeConflict, "category name already exists")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, op)
}
