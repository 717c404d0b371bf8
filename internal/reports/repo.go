package reports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pepdine/pep-backend/internal/repo"
	"github.com/pepdine/pep-backend/pkg/db/models"
	"github.com/pepdine/pep-backend/pkg/enums"
)

const topItemsLimit = 5

type orderRow struct {
	CreatedAt     time.Time
	TotalCents    int64
	DiscountCents int64
}

type topItemRow struct {
	MenuItemID   uuid.UUID
	ItemName     string
	Quantity     int64
	RevenueCents int64
}

// Repository runs read-only aggregate queries over orders.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// OrdersBetween returns the billable orders created in [start, end).
func (r *Repository) OrdersBetween(ctx context.Context, start, end time.Time) ([]orderRow, error) {
	var rows []orderRow
	err := r.DB(ctx).
		Model(&models.Order{}).
		Select("created_at, total_cents, discount_cents").
		Scopes(repo.CreatedBetween("created_at", start, end)).
		Where("status <> ?", enums.OrderStatusCancelled).
		Order("created_at ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// TopItems aggregates order lines in [start, end) by menu item.
func (r *Repository) TopItems(ctx context.Context, start, end time.Time, limit int) ([]topItemRow, error) {
	if limit <= 0 {
		limit = topItemsLimit
	}
	var rows []topItemRow
	err := r.DB(ctx).
		Table("order_items AS oi").
		Select("oi.menu_item_id AS menu_item_id, MAX(oi.item_name) AS item_name, SUM(oi.quantity) AS quantity, SUM(oi.line_total_cents) AS revenue_cents").
		Joins("JOIN orders o ON o.id = oi.order_id").
		Scopes(repo.CreatedBetween("o.created_at", start, end)).
		Where("o.status <> ?", enums.OrderStatusCancelled).
		Group("oi.menu_item_id").
		Order("quantity DESC, revenue_cents DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
