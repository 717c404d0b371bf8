package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pepdine/pep-backend/pkg/types"
)

// CartItem is one consolidated line. LineKey is unique per cart and identifies
// lines that must merge instead of duplicating.
type CartItem struct {
	ID                  uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	CartID              uuid.UUID        `gorm:"column:cart_id;type:uuid;not null;uniqueIndex:ux_cart_items_line,priority:1"`
	LineKey             string           `gorm:"column:line_key;not null;uniqueIndex:ux_cart_items_line,priority:2"`
	MenuItemID          uuid.UUID        `gorm:"column:menu_item_id;type:uuid;not null;index"`
	ItemName            string           `gorm:"column:item_name;not null"`
	Size                string           `gorm:"column:size;not null"`
	Addons              types.LineAddons `gorm:"column:addons;type:jsonb;not null"`
	SpecialInstructions string           `gorm:"column:special_instructions;not null;default:''"`
	Quantity            int              `gorm:"column:quantity;not null"`
	PriceAtTimeCents    int              `gorm:"column:price_at_time_cents;not null"`
	AddonsTotalCents    int              `gorm:"column:addons_total_cents;not null"`
	ItemTotalCents      int              `gorm:"column:item_total_cents;not null"`
	CreatedAt           time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (i *CartItem) BeforeCreate(*gorm.DB) error {
	ensureID(&i.ID)
	return nil
}

// UnitPriceCents is the price of one unit including addons.
func (i CartItem) UnitPriceCents() int {
	return i.PriceAtTimeCents + i.AddonsTotalCents
}
