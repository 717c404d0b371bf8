package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/pepdine/pep-backend/pkg/enums"
	"github.com/pepdine/pep-backend/pkg/types"
)

// OrderLine is the per-item snapshot carried by order events.
type OrderLine struct {
	ItemName            string           `json:"item_name"`
	Size                string           `json:"size"`
	Addons              types.LineAddons `json:"addons"`
	SpecialInstructions string           `json:"special_instructions,omitempty"`
	Quantity            int              `json:"quantity"`
	UnitPriceCents      int              `json:"unit_price_cents"`
	LineTotalCents      int              `json:"line_total_cents"`
}

// OrderCreatedEvent is emitted in the checkout transaction.
type OrderCreatedEvent struct {
	OrderID          uuid.UUID           `json:"order_id"`
	OrderNumber      string              `json:"order_number"`
	UserID           uuid.UUID           `json:"user_id"`
	IsGuest          bool                `json:"is_guest"`
	CustomerName     string              `json:"customer_name"`
	CustomerEmail    string              `json:"customer_email,omitempty"`
	CustomerPhone    string              `json:"customer_phone"`
	OrderType        enums.OrderType     `json:"order_type"`
	PaymentMethod    enums.PaymentMethod `json:"payment_method"`
	DeliveryAddress  *types.Address      `json:"delivery_address,omitempty"`
	Notes            string              `json:"notes,omitempty"`
	CouponCode       string              `json:"coupon_code,omitempty"`
	Items            []OrderLine         `json:"items"`
	SubtotalCents    int                 `json:"subtotal_cents"`
	DiscountCents    int                 `json:"discount_cents"`
	DeliveryFeeCents int                 `json:"delivery_fee_cents"`
	TaxCents         int                 `json:"tax_cents"`
	TotalCents       int                 `json:"total_cents"`
	PlacedAt         time.Time           `json:"placed_at"`
}

// OrderStatusChangedEvent is emitted whenever an order moves between statuses.
type OrderStatusChangedEvent struct {
	OrderID       uuid.UUID         `json:"order_id"`
	OrderNumber   string            `json:"order_number"`
	UserID        uuid.UUID         `json:"user_id"`
	IsGuest       bool              `json:"is_guest"`
	CustomerName  string            `json:"customer_name"`
	CustomerEmail string            `json:"customer_email,omitempty"`
	From          enums.OrderStatus `json:"from"`
	To            enums.OrderStatus `json:"to"`
	ChangedAt     time.Time         `json:"changed_at"`
}
