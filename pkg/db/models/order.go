package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pepdine/pep-backend/pkg/enums"
	"github.com/pepdine/pep-backend/pkg/types"
)

type Order struct {
	ID               uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	OrderNumber      string              `gorm:"column:order_number;not null;uniqueIndex:ux_orders_order_number"`
	UserID           uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	IsGuest          bool                `gorm:"column:is_guest;not null"`
	Status           enums.OrderStatus   `gorm:"column:status;type:text;not null;index"`
	OrderType        enums.OrderType     `gorm:"column:order_type;type:text;not null"`
	PaymentMethod    enums.PaymentMethod `gorm:"column:payment_method;type:text;not null"`
	CustomerName     string              `gorm:"column:customer_name;not null"`
	CustomerEmail    string              `gorm:"column:customer_email;not null;default:''"`
	CustomerPhone    string              `gorm:"column:customer_phone;not null"`
	DeliveryAddress  *types.Address      `gorm:"column:delivery_address;type:jsonb"`
	Notes            *string             `gorm:"column:notes"`
	SubtotalCents    int                 `gorm:"column:subtotal_cents;not null"`
	DiscountCents    int                 `gorm:"column:discount_cents;not null"`
	DeliveryFeeCents int                 `gorm:"column:delivery_fee_cents;not null"`
	TaxCents         int                 `gorm:"column:tax_cents;not null"`
	TotalCents       int                 `gorm:"column:total_cents;not null"`
	CouponCode       *string             `gorm:"column:coupon_code"`
	CancelledAt      *time.Time          `gorm:"column:cancelled_at"`
	Items            []OrderItem         `gorm:"foreignKey:OrderID;references:ID"`
	CreatedAt        time.Time           `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt        time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	ensureID(&o.ID)
	return nil
}

// OrderItem snapshots a cart line at checkout.
type OrderItem struct {
	ID                  uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	OrderID             uuid.UUID        `gorm:"column:order_id;type:uuid;not null;index"`
	MenuItemID          uuid.UUID        `gorm:"column:menu_item_id;type:uuid;not null;index"`
	ItemName            string           `gorm:"column:item_name;not null"`
	Size                string           `gorm:"column:size;not null"`
	Addons              types.LineAddons `gorm:"column:addons;type:jsonb;not null"`
	SpecialInstructions string           `gorm:"column:special_instructions;not null;default:''"`
	Quantity            int              `gorm:"column:quantity;not null"`
	UnitPriceCents      int              `gorm:"column:unit_price_cents;not null"`
	AddonsTotalCents    int              `gorm:"column:addons_total_cents;not null"`
	LineTotalCents      int              `gorm:"column:line_total_cents;not null"`
	CreatedAt           time.Time        `gorm:"column:created_at;autoCreateTime"`
}

func (i *OrderItem) BeforeCreate(*gorm.DB) error {
	ensureID(&i.ID)
	return nil
}

// OrderSequence is the per-day counter behind order numbers.
type OrderSequence struct {
	Day       string `gorm:"column:day;primaryKey"`
	LastValue int    `gorm:"column:last_value;not null"`
}
