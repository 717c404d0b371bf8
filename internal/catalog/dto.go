package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/pepdine/pep-backend/pkg/db/models"
	"github.com/pepdine/pep-backend/pkg/types"
)

// MenuFilters are the browse knobs of GET /menu.
type MenuFilters struct {
	CategoryID *uuid.UUID `json:"category_id,omitempty"`
	Veg        *bool      `json:"veg,omitempty"`
	Query      string     `json:"q,omitempty"`
}

// MenuItemInput is the full payload for creating a menu item.
type MenuItemInput struct {
	CategoryID           *uuid.UUID
	Name                 string
	Description          string
	ImageURL             *string
	MRPCents             int
	DiscountedPriceCents int
	Sizes                types.MenuSizes
	Addons               types.MenuAddons
	Quantity             int
	IsVeg                bool
	IsActive             bool
}

// MenuItemUpdate holds optional changes; nil fields are left alone.
type MenuItemUpdate struct {
	CategoryID           *uuid.UUID
	Name                 *string
	Description          *string
	ImageURL             *string
	MRPCents             *int
	DiscountedPriceCents *int
	Sizes                *types.MenuSizes
	Addons               *types.MenuAddons
	IsVeg                *bool
	IsActive             *bool
}

type CategoryInput struct {
	Name        string
	Description string
	SortOrder   int
	IsActive    bool
}

type CategoryUpdate struct {
	Name        *string
	Description *string
	SortOrder   *int
	IsActive    *bool
}

type MenuItemDTO struct {
	ID                   uuid.UUID        `json:"id"`
	CategoryID           *uuid.UUID       `json:"category_id,omitempty"`
	Name                 string           `json:"name"`
	Description          string           `json:"description"`
	ImageURL             *string          `json:"image_url,omitempty"`
	MRPCents             int              `json:"mrp_cents"`
	DiscountedPriceCents int              `json:"discounted_price_cents"`
	Sizes                types.MenuSizes  `json:"sizes"`
	Addons               types.MenuAddons `json:"addons"`
	Quantity             int              `json:"quantity"`
	InStock              bool             `json:"in_stock"`
	IsVeg                bool             `json:"is_veg"`
	IsActive             bool             `json:"is_active"`
	CreatedAt            time.Time        `json:"created_at"`
	UpdatedAt            time.Time        `json:"updated_at"`
}

func NewMenuItemDTO(item models.MenuItem) MenuItemDTO {
	sizes, addons := item.Sizes, item.Addons
	if sizes == nil {
		sizes = types.MenuSizes{}
	}
	if addons == nil {
		addons = types.MenuAddons{}
	}
	return MenuItemDTO{
		ID:                   item.ID,
		CategoryID:           item.CategoryID,
		Name:                 item.Name,
		Description:          item.Description,
		ImageURL:             item.ImageURL,
		MRPCents:             item.MRPCents,
		DiscountedPriceCents: item.DiscountedPriceCents,
		Sizes:                sizes,
		Addons:               addons,
		Quantity:             item.Quantity,
		InStock:              item.Quantity > 0,
		IsVeg:                item.IsVeg,
		IsActive:             item.IsActive,
		CreatedAt:            item.CreatedAt,
		UpdatedAt:            item.UpdatedAt,
	}
}

// MenuPage is one page of the menu plus the cursor for the next one.
type MenuPage struct {
	Items      []MenuItemDTO `json:"items"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

type CategoryDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	SortOrder   int       `json:"sort_order"`
	IsActive    bool      `json:"is_active"`
}

func NewCategoryDTO(c models.Category) CategoryDTO {
	return CategoryDTO{ID: c.ID, Name: c.Name, Description: c.Description, SortOrder: c.SortOrder, IsActive: c.IsActive}
}
