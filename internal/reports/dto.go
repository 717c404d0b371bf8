package reports

import (
	"time"

	"github.com/google/uuid"
)

// SalesQuery selects an inclusive range of calendar days in the restaurant's timezone.
type SalesQuery struct {
	From time.Time
	To   time.Time
}

// DailySales is one point of the by-day series.
type DailySales struct {
	Date          string `json:"date"`
	Orders        int64  `json:"orders"`
	GrossCents    int64  `json:"gross_cents"`
	DiscountCents int64  `json:"discount_cents"`
}

// TopItem ranks menu items by units sold.
type TopItem struct {
	MenuItemID   uuid.UUID `json:"menu_item_id"`
	Name         string    `json:"name"`
	Quantity     int64     `json:"quantity"`
	RevenueCents int64     `json:"revenue_cents"`
}

// SalesReport excludes cancelled orders.
type SalesReport struct {
	From              string       `json:"from"`
	To                string       `json:"to"`
	OrderCount        int64        `json:"order_count"`
	GrossCents        int64        `json:"gross_cents"`
	DiscountCents     int64        `json:"discount_cents"`
	AverageOrderCents int64        `json:"average_order_cents"`
	Daily             []DailySales `json:"daily"`
	TopItems          []TopItem    `json:"top_items"`
}
