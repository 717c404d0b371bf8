package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pepdine/pep-backend/pkg/types"
)

// MenuItem is a catalog entry. Quantity is the sellable stock.
type MenuItem struct {
	ID                   uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	CategoryID           *uuid.UUID       `gorm:"column:category_id;type:uuid;index"`
	Name                 string           `gorm:"column:name;not null"`
	Description          string           `gorm:"column:description;not null;default:''"`
	ImageURL             *string          `gorm:"column:image_url"`
	MRPCents             int              `gorm:"column:mrp_cents;not null"`
	DiscountedPriceCents int              `gorm:"column:discounted_price_cents;not null"`
	Sizes                types.MenuSizes  `gorm:"column:sizes;type:jsonb;not null"`
	Addons               types.MenuAddons `gorm:"column:addons;type:jsonb;not null"`
	Quantity             int              `gorm:"column:quantity;not null"`
	IsVeg                bool             `gorm:"column:is_veg;not null"`
	IsActive             bool             `gorm:"column:is_active;not null"`
	CreatedAt            time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (m *MenuItem) BeforeCreate(*gorm.DB) error {
	ensureID(&m.ID)
	return nil
}

// BeforeSave keeps discounted_price within [0, mrp].
func (m *MenuItem) BeforeSave(*gorm.DB) error {
	m.ClampDiscountedPrice()
	return nil
}

func (m *MenuItem) ClampDiscountedPrice() {
	if m.DiscountedPriceCents > m.MRPCents {
		m.DiscountedPriceCents = m.MRPCents
	}
	if m.DiscountedPriceCents < 0 {
		m.DiscountedPriceCents = 0
	}
}
