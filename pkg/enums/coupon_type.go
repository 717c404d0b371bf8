package enums

import (
	"fmt"
	"strings"
)

// CouponType selects how a coupon value is interpreted.
type CouponType string

const (
	// CouponTypePercentage values are a percent of the cart subtotal.
	CouponTypePercentage CouponType = "percentage"
	// CouponTypeFixed values are an amount in cents.
	CouponTypeFixed CouponType = "fixed"
)

var validCouponTypes = []CouponType{
	CouponTypePercentage,
	CouponTypeFixed,
}

func (c CouponType) String() string {
	return string(c)
}

func (c CouponType) IsValid() bool {
	for _, candidate := range validCouponTypes {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCouponType converts raw input into a CouponType (case-insensitive).
func ParseCouponType(value string) (CouponType, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validCouponTypes {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid coupon type %q", value)
}
