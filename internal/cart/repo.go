package cart

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pepdine/pep-backend/pkg/db/models"
	"github.com/pepdine/pep-backend/pkg/types"
)

// stockOf reads the live stock of the line's menu item inside the statement.
const stockOf = "(SELECT quantity FROM menu_items WHERE menu_items.id = cart_items.menu_item_id)"

// Repository persists carts and their lines. Every write is a single
// conditional statement; callers learn about lost races from RowsAffected.
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

// FindByUser loads the user's cart and its lines in insertion order.
func (r *Repository) FindByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("cart_items.created_at ASC").Order("cart_items.id ASC")
		}).
		Where("user_id = ?", userID).
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// LockByUser loads the cart with a row lock for checkout.
func (r *Repository) LockByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).
		Where("cart_id = ?", cart.ID).
		Order("created_at ASC").Order("id ASC").
		Find(&cart.Items).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// Ensure returns the user's cart id, creating the cart on first use.
func (r *Repository) Ensure(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	cart := models.Cart{UserID: userID}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(&cart).Error; err != nil {
		return uuid.Nil, err
	}
	// the insert is a no-op when the cart exists, so read back the stored id
	var stored models.Cart
	if err := r.db.WithContext(ctx).
		Select("id").
		Where("user_id = ?", userID).
		First(&stored).Error; err != nil {
		return uuid.Nil, err
	}
	return stored.ID, nil
}

// LineQuantity returns the quantity on the cart's line with lineKey, or 0
// when no such line exists.
func (r *Repository) LineQuantity(ctx context.Context, cartID uuid.UUID, lineKey string) (int, error) {
	var lines []models.CartItem
	err := r.db.WithContext(ctx).
		Select("quantity").
		Where("cart_id = ? AND line_key = ?", cartID, lineKey).
		Limit(1).
		Find(&lines).Error
	if err != nil || len(lines) == 0 {
		return 0, err
	}
	return lines[0].Quantity, nil
}

// UpsertLine inserts the line or, when an identical line exists, adds its
// quantity to the existing one. The merge only happens while the combined
// quantity fits the menu item's stock; otherwise it reports false and
// nothing changes.
func (r *Repository) UpsertLine(ctx context.Context, line *models.CartItem) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "cart_id"}, {Name: "line_key"}},
			DoUpdates: clause.Assignments(map[string]any{
				"quantity":         gorm.Expr("cart_items.quantity + excluded.quantity"),
				"item_total_cents": gorm.Expr("(cart_items.price_at_time_cents + cart_items.addons_total_cents) * (cart_items.quantity + excluded.quantity)"),
				"updated_at":       gorm.Expr("excluded.updated_at"),
			}),
			Where: clause.Where{Exprs: []clause.Expression{
				gorm.Expr("cart_items.quantity + excluded.quantity <= " + stockOf),
			}},
		}).
		Create(line)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// FindLine loads one line of a cart.
func (r *Repository) FindLine(ctx context.Context, cartID, lineID uuid.UUID) (*models.CartItem, error) {
	var line models.CartItem
	if err := r.db.WithContext(ctx).Where("id = ? AND cart_id = ?", lineID, cartID).First(&line).Error; err != nil {
		return nil, err
	}
	return &line, nil
}

// SetLineQuantity rewrites quantity and item total when quantity fits stock.
func (r *Repository) SetLineQuantity(ctx context.Context, cartID, lineID uuid.UUID, quantity int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ? AND cart_id = ?", lineID, cartID).
		Where("? <= "+stockOf, quantity).
		UpdateColumns(map[string]any{
			"quantity":         quantity,
			"item_total_cents": gorm.Expr("(price_at_time_cents + addons_total_cents) * ?", quantity),
			"updated_at":       time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *Repository) DeleteLine(ctx context.Context, cartID, lineID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ? AND cart_id = ?", lineID, cartID).Delete(&models.CartItem{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Touch bumps the cart version after a line-level write.
func (r *Repository) Touch(ctx context.Context, cartID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&models.Cart{}).
		Where("id = ?", cartID).
		UpdateColumns(map[string]any{
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now().UTC(),
		}).Error
}

// SetCoupon stores or clears the coupon snapshot if the cart is still at version.
func (r *Repository) SetCoupon(ctx context.Context, cartID uuid.UUID, version int, coupon *types.AppliedCoupon) (bool, error) {
	var value any
	if coupon != nil {
		value = coupon
	}
	res := r.db.WithContext(ctx).Model(&models.Cart{}).
		Where("id = ? AND version = ?", cartID, version).
		UpdateColumns(map[string]any{
			"applied_coupon": value,
			"version":        gorm.Expr("version + 1"),
			"updated_at":     time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Empty removes every line and the coupon if the cart is still at version.
// Must run in a transaction so a version miss leaves the lines in place.
func (r *Repository) Empty(ctx context.Context, cartID uuid.UUID, version int) (bool, error) {
	ok, err := r.SetCoupon(ctx, cartID, version, nil)
	if err != nil || !ok {
		return ok, err
	}
	return true, r.db.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error
}

// DeleteIdleGuestCarts removes guest carts untouched since cutoff together
// with their lines. Registered users keep their carts indefinitely.
func (r *Repository) DeleteIdleGuestCarts(ctx context.Context, cutoff time.Time) (int64, error) {
	idle := func() *gorm.DB {
		return r.db.Model(&models.Cart{}).
			Select("carts.id").
			Joins("JOIN users ON users.id = carts.user_id").
			Where("users.is_guest = ? AND carts.updated_at < ?", true, cutoff)
	}

	if err := r.db.WithContext(ctx).Where("cart_id IN (?)", idle()).Delete(&models.CartItem{}).Error; err != nil {
		return 0, err
	}
	res := r.db.WithContext(ctx).Where("id IN (?)", idle()).Delete(&models.Cart{})
	return res.RowsAffected, res.Error
}
