package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/pepdine/pep-backend/pkg/enums"
)

// Coupon is a redeemable discount code. Value is a percent for percentage
// coupons and cents for fixed coupons.
type Coupon struct {
	ID               uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	Code             string           `gorm:"column:code;not null;uniqueIndex:ux_coupons_code"`
	Description      string           `gorm:"column:description;not null;default:''"`
	Type             enums.CouponType `gorm:"column:type;type:text;not null"`
	Value            decimal.Decimal  `gorm:"column:value;type:numeric(12,2);not null"`
	MinOrderCents    int              `gorm:"column:min_order_cents;not null;default:0"`
	MaxDiscountCents *int             `gorm:"column:max_discount_cents"`
	IsActive         bool             `gorm:"column:is_active;not null"`
	ExpiresAt        *time.Time       `gorm:"column:expires_at"`
	CreatedAt        time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Coupon) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}
