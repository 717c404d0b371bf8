package checkout

import (
	"github.com/shopspring/decimal"

	"github.com/pepdine/pep-backend/internal/cart"
	"github.com/pepdine/pep-backend/pkg/config"
	"github.com/pepdine/pep-backend/pkg/enums"
)

var bpsDivisor = decimal.NewFromInt(10000)

// Totals are the charges of an order at placement time.
type Totals struct {
	SubtotalCents    int `json:"subtotal_cents"`
	DiscountCents    int `json:"discount_cents"`
	DeliveryFeeCents int `json:"delivery_fee_cents"`
	TaxCents         int `json:"tax_cents"`
	TotalCents       int `json:"total_cents"`
}

// ComputeTotals adds delivery and tax on top of the cart totals. Delivery is
// charged for delivery orders only and waived once the discounted subtotal
// reaches the free delivery threshold. Tax applies to the discounted subtotal.
func ComputeTotals(cartTotals cart.Totals, orderType enums.OrderType, pricing config.PricingConfig) Totals {
	t := Totals{
		SubtotalCents: cartTotals.SubtotalCents,
		DiscountCents: cartTotals.DiscountCents,
	}
	taxable := t.SubtotalCents - t.DiscountCents

	if orderType == enums.OrderTypeDelivery {
		t.DeliveryFeeCents = pricing.DeliveryFeeCents
		if pricing.FreeDeliveryThresholdCents > 0 && taxable >= pricing.FreeDeliveryThresholdCents {
			t.DeliveryFeeCents = 0
		}
	}
	if pricing.TaxRateBps > 0 && taxable > 0 {
		t.TaxCents = int(decimal.NewFromInt(int64(taxable)).
			Mul(decimal.NewFromInt(int64(pricing.TaxRateBps))).
			Div(bpsDivisor).
			Round(0).
			IntPart())
	}
	t.TotalCents = taxable + t.DeliveryFeeCents + t.TaxCents
	return t
}
