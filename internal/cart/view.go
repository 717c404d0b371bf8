package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pepdine/pep-backend/internal/coupons"
	"github.com/pepdine/pep-backend/pkg/db/models"
	"github.com/pepdine/pep-backend/pkg/enums"
	"github.com/pepdine/pep-backend/pkg/types"
)

// Totals are derived from the lines and the coupon snapshot on every read.
type Totals struct {
	ItemCount        int  `json:"item_count"`
	SubtotalCents    int  `json:"subtotal_cents"`
	DiscountCents    int  `json:"discount_cents"`
	TotalCents       int  `json:"total_cents"`
	CouponApplicable bool `json:"coupon_applicable"`
}

// Summarize computes cart totals. A coupon whose minimum is no longer met
// stays attached but contributes nothing.
func Summarize(items []models.CartItem, coupon *types.AppliedCoupon) Totals {
	var t Totals
	for _, item := range items {
		t.ItemCount += item.Quantity
		t.SubtotalCents += item.ItemTotalCents
	}
	if coupon != nil {
		t.DiscountCents, t.CouponApplicable = coupons.Discount(*coupon, t.SubtotalCents)
	}
	t.TotalCents = t.SubtotalCents - t.DiscountCents
	return t
}

type LineView struct {
	ID                  uuid.UUID        `json:"id"`
	MenuItemID          uuid.UUID        `json:"menu_item_id"`
	ItemName            string           `json:"item_name"`
	Size                string           `json:"size"`
	Addons              types.LineAddons `json:"addons"`
	SpecialInstructions string           `json:"special_instructions"`
	Quantity            int              `json:"quantity"`
	PriceAtTimeCents    int              `json:"price_at_time_cents"`
	AddonsTotalCents    int              `json:"addons_total_cents"`
	ItemTotalCents      int              `json:"item_total_cents"`
}

type CouponView struct {
	Code             string           `json:"code"`
	Type             enums.CouponType `json:"type"`
	Value            decimal.Decimal  `json:"value"`
	MinOrderCents    int              `json:"min_order_cents"`
	MaxDiscountCents *int             `json:"max_discount_cents,omitempty"`
	AppliedAt        time.Time        `json:"applied_at"`
}

// View is the cart as returned to clients.
type View struct {
	ID      *uuid.UUID  `json:"id,omitempty"`
	Items   []LineView  `json:"items"`
	Coupon  *CouponView `json:"coupon,omitempty"`
	Version int         `json:"version"`
	Totals
}

func emptyView() *View {
	return &View{Items: []LineView{}}
}

func newView(cart *models.Cart) *View {
	if cart == nil {
		return emptyView()
	}
	id := cart.ID
	view := &View{
		ID:      &id,
		Items:   make([]LineView, 0, len(cart.Items)),
		Version: cart.Version,
		Totals:  Summarize(cart.Items, cart.AppliedCoupon),
	}
	for _, item := range cart.Items {
		addons := item.Addons
		if addons == nil {
			addons = types.LineAddons{}
		}
		view.Items = append(view.Items, LineView{
			ID:                  item.ID,
			MenuItemID:          item.MenuItemID,
			ItemName:            item.ItemName,
			Size:                item.Size,
			Addons:              addons,
			SpecialInstructions: item.SpecialInstructions,
			Quantity:            item.Quantity,
			PriceAtTimeCents:    item.PriceAtTimeCents,
			AddonsTotalCents:    item.AddonsTotalCents,
			ItemTotalCents:      item.ItemTotalCents,
		})
	}
	if c := cart.AppliedCoupon; c != nil {
		view.Coupon = &CouponView{
			Code:             c.Code,
			Type:             c.Type,
			Value:            c.Amount,
			MinOrderCents:    c.MinOrderCents,
			MaxDiscountCents: c.MaxDiscountCents,
			AppliedAt:        c.AppliedAt,
		}
	}
	return view
}
