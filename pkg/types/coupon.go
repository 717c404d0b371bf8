package types

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/pepdine/pep-backend/pkg/enums"
)

// AppliedCoupon is the coupon snapshot stored on a cart when it is applied.
type AppliedCoupon struct {
	Code             string           `json:"code"`
	Type             enums.CouponType `json:"type"`
	Amount           decimal.Decimal  `json:"value"`
	MinOrderCents    int              `json:"min_order_cents"`
	MaxDiscountCents *int             `json:"max_discount_cents,omitempty"`
	AppliedAt        time.Time        `json:"applied_at"`
}
