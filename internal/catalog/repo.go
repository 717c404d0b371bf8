package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pepdine/pep-backend/pkg/db/models"
	"github.com/pepdine/pep-backend/pkg/pagination"
)

// Repository persists menu items and categories and owns the stock column.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) GetMenuItem(ctx context.Context, id uuid.UUID) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *Repository) CreateMenuItem(ctx context.Context, item *models.MenuItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// SaveMenuItem writes every column; the BeforeSave hook clamps the discounted price.
func (r *Repository) SaveMenuItem(ctx context.Context, item *models.MenuItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *Repository) SetMenuItemActive(ctx context.Context, id uuid.UUID, active bool) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.MenuItem{}).Where("id = ?", id).UpdateColumn("is_active", active)
	return res.RowsAffected > 0, res.Error
}

// SetStock overwrites the sellable quantity.
func (r *Repository) SetStock(ctx context.Context, id uuid.UUID, quantity int) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.MenuItem{}).Where("id = ?", id).UpdateColumn("quantity", quantity)
	return res.RowsAffected > 0, res.Error
}

// DecrementStock takes quantity units only when that many are left.
func (r *Repository) DecrementStock(ctx context.Context, id uuid.UUID, quantity int) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.MenuItem{}).
		Where("id = ? AND quantity >= ?", id, quantity).
		UpdateColumn("quantity", gorm.Expr("quantity - ?", quantity))
	return res.RowsAffected > 0, res.Error
}

// IncrementStock returns units to stock, e.g. when an order is cancelled.
func (r *Repository) IncrementStock(ctx context.Context, id uuid.UUID, quantity int) error {
	return r.db.WithContext(ctx).Model(&models.MenuItem{}).
		Where("id = ?", id).
		UpdateColumn("quantity", gorm.Expr("quantity + ?", quantity)).Error
}

type menuQuery struct {
	Filters         MenuFilters
	IncludeInactive bool
	Limit           int
	Cursor          *pagination.Cursor
}

// ListMenuItems pages menu items by name then id.
func (r *Repository) ListMenuItems(ctx context.Context, q menuQuery) ([]models.MenuItem, error) {
	tx := r.db.WithContext(ctx).Model(&models.MenuItem{})
	if !q.IncludeInactive {
		tx = tx.Where("is_active = ?", true)
	}
	if q.Filters.CategoryID != nil {
		tx = tx.Where("category_id = ?", *q.Filters.CategoryID)
	}
	if q.Filters.Veg != nil {
		tx = tx.Where("is_veg = ?", *q.Filters.Veg)
	}
	if term := strings.TrimSpace(q.Filters.Query); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		tx = tx.Where("(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)", like, like)
	}
	if q.Cursor != nil {
		tx = tx.Where("(name > ? OR (name = ? AND id > ?))", q.Cursor.Key, q.Cursor.Key, q.Cursor.ID)
	}

	var items []models.MenuItem
	err := tx.Order("name ASC").Order("id ASC").
		Limit(pagination.LimitWithBuffer(q.Limit)).
		Find(&items).Error
	return items, err
}

func (r *Repository) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *Repository) CreateCategory(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *Repository) SaveCategory(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Save(category).Error
}

func (r *Repository) ListCategories(ctx context.Context, includeInactive bool) ([]models.Category, error) {
	tx := r.db.WithContext(ctx).Model(&models.Category{})
	if !includeInactive {
		tx = tx.Where("is_active = ?", true)
	}
	var categories []models.Category
	err := tx.Order("sort_order ASC").Order("name ASC").Find(&categories).Error
	return categories, err
}
