package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pepdine/pep-backend/pkg/types"
)

// Cart is the single open cart of a user or guest. Version increases on every
// cart-level write and guards coupon and clear operations.
type Cart struct {
	ID            uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	UserID        uuid.UUID            `gorm:"column:user_id;type:uuid;not null;uniqueIndex:ux_carts_user"`
	AppliedCoupon *types.AppliedCoupon `gorm:"column:applied_coupon;type:jsonb"`
	Version       int                  `gorm:"column:version;not null;default:0"`
	Items         []CartItem           `gorm:"foreignKey:CartID;references:ID"`
	CreatedAt     time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Cart) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}
