package coupons

import (
	"github.com/shopspring/decimal"

	"github.com/pepdine/pep-backend/pkg/enums"
	"github.com/pepdine/pep-backend/pkg/types"
)

var hundred = decimal.NewFromInt(100)

// Discount returns the discount c grants on subtotalCents and whether the
// coupon currently applies. The result is always within [0, min(max, subtotal)].
func Discount(c types.AppliedCoupon, subtotalCents int) (int, bool) {
	if subtotalCents <= 0 || subtotalCents < c.MinOrderCents {
		return 0, false
	}

	var computed decimal.Decimal
	switch c.Type {
	case enums.CouponTypePercentage:
		computed = decimal.NewFromInt(int64(subtotalCents)).Mul(c.Amount).Div(hundred)
	case enums.CouponTypeFixed:
		computed = c.Amount
	default:
		return 0, false
	}

	discount := int(computed.Round(0).IntPart())
	upper := subtotalCents
	if c.MaxDiscountCents != nil && *c.MaxDiscountCents < upper {
		upper = *c.MaxDiscountCents
	}
	if discount > upper {
		discount = upper
	}
	if discount < 0 {
		discount = 0
	}
	return discount, true
}
