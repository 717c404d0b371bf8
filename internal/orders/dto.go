package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/pepdine/pep-backend/pkg/db/models"
	"github.com/pepdine/pep-backend/pkg/enums"
	"github.com/pepdine/pep-backend/pkg/types"
)

// OrderLineDTO is one purchased line.
type OrderLineDTO struct {
	ID                  uuid.UUID        `json:"id"`
	MenuItemID          uuid.UUID        `json:"menu_item_id"`
	ItemName            string           `json:"item_name"`
	Size                string           `json:"size"`
	Addons              types.LineAddons `json:"addons"`
	SpecialInstructions string           `json:"special_instructions,omitempty"`
	Quantity            int              `json:"quantity"`
	UnitPriceCents      int              `json:"unit_price_cents"`
	AddonsTotalCents    int              `json:"addons_total_cents"`
	LineTotalCents      int              `json:"line_total_cents"`
}

// OrderDTO is the order as returned to customers and admins.
type OrderDTO struct {
	ID               uuid.UUID           `json:"id"`
	OrderNumber      string              `json:"order_number"`
	UserID           uuid.UUID           `json:"user_id"`
	IsGuest          bool                `json:"is_guest"`
	Status           enums.OrderStatus   `json:"status"`
	OrderType        enums.OrderType     `json:"order_type"`
	PaymentMethod    enums.PaymentMethod `json:"payment_method"`
	CustomerName     string              `json:"customer_name"`
	CustomerEmail    string              `json:"customer_email,omitempty"`
	CustomerPhone    string              `json:"customer_phone"`
	DeliveryAddress  *types.Address      `json:"delivery_address,omitempty"`
	Notes            *string             `json:"notes,omitempty"`
	CouponCode       *string             `json:"coupon_code,omitempty"`
	Items            []OrderLineDTO      `json:"items"`
	SubtotalCents    int                 `json:"subtotal_cents"`
	DiscountCents    int                 `json:"discount_cents"`
	DeliveryFeeCents int                 `json:"delivery_fee_cents"`
	TaxCents         int                 `json:"tax_cents"`
	TotalCents       int                 `json:"total_cents"`
	CancelledAt      *time.Time          `json:"cancelled_at,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

// OrderList wraps a page of orders plus the next page cursor.
type OrderList struct {
	Orders     []OrderDTO `json:"orders"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

func NewOrderDTO(order models.Order) OrderDTO {
	out := OrderDTO{
		ID:               order.ID,
		OrderNumber:      order.OrderNumber,
		UserID:           order.UserID,
		IsGuest:          order.IsGuest,
		Status:           order.Status,
		OrderType:        order.OrderType,
		PaymentMethod:    order.PaymentMethod,
		CustomerName:     order.CustomerName,
		CustomerEmail:    order.CustomerEmail,
		CustomerPhone:    order.CustomerPhone,
		DeliveryAddress:  order.DeliveryAddress,
		Notes:            order.Notes,
		CouponCode:       order.CouponCode,
		Items:            make([]OrderLineDTO, 0, len(order.Items)),
		SubtotalCents:    order.SubtotalCents,
		DiscountCents:    order.DiscountCents,
		DeliveryFeeCents: order.DeliveryFeeCents,
		TaxCents:         order.TaxCents,
		TotalCents:       order.TotalCents,
		CancelledAt:      order.CancelledAt,
		CreatedAt:        order.CreatedAt,
		UpdatedAt:        order.UpdatedAt,
	}
	for _, item := range order.Items {
		addons := item.Addons
		if addons == nil {
			addons = types.LineAddons{}
		}
		out.Items = append(out.Items, OrderLineDTO{
			ID:                  item.ID,
			MenuItemID:          item.MenuItemID,
			ItemName:            item.ItemName,
			Size:                item.Size,
			Addons:              addons,
			SpecialInstructions: item.SpecialInstructions,
			Quantity:            item.Quantity,
			UnitPriceCents:      item.UnitPriceCents,
			AddonsTotalCents:    item.AddonsTotalCents,
			LineTotalCents:      item.LineTotalCents,
		})
	}
	return out
}
