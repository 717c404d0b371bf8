package cart

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pepdine/pep-backend/pkg/db"
	"github.com/pepdine/pep-backend/pkg/db/models"
	pkgerrors "github.com/pepdine/pep-backend/pkg/errors"
	"github.com/pepdine/pep-backend/pkg/metrics"
	"github.com/pepdine/pep-backend/pkg/types"
)

// MaxSpecialInstructions caps the free-text note on a line.
const MaxSpecialInstructions = 500

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type menuLoader interface {
	GetMenuItem(ctx context.Context, id uuid.UUID) (*models.MenuItem, error)
}

type couponResolver interface {
	Resolve(ctx context.Context, code string, subtotalCents int) (*types.AppliedCoupon, error)
}

// Service is the one cart implementation for registered users and guests;
// guests are resolved to their guest user id before calling in.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*View, error)
	AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*View, error)
	UpdateItemQuantity(ctx context.Context, userID, lineID uuid.UUID, quantity int) (*View, error)
	RemoveItem(ctx context.Context, userID, lineID uuid.UUID) (*View, error)
	Clear(ctx context.Context, userID uuid.UUID) (*View, error)
	ApplyCoupon(ctx context.Context, userID uuid.UUID, code string) (*View, error)
	RemoveCoupon(ctx context.Context, userID uuid.UUID) (*View, error)
}

type AddItemInput struct {
	MenuItemID          uuid.UUID
	Quantity            int
	Size                string
	Addons              []AddonRequest
	SpecialInstructions string
}

type service struct {
	repo    *Repository
	tx      txRunner
	menu    menuLoader
	coupons couponResolver
	metrics *metrics.OrderingMetrics
}

// NewService wires the cart service. m may be nil.
func NewService(repo *Repository, tx txRunner, menu menuLoader, coupons couponResolver, m *metrics.OrderingMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if menu == nil {
		return nil, fmt.Errorf("menu loader required")
	}
	if coupons == nil {
		return nil, fmt.Errorf("coupon resolver required")
	}
	return &service{repo: repo, tx: tx, menu: menu, coupons: coupons, metrics: m}, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*View, error) {
	cart, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		if db.IsNotFound(err) {
			return emptyView(), nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}
	return newView(cart), nil
}

func (s *service) AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (view *View, err error) {
	defer func() { s.record("add", err) }()

	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	instructions := strings.TrimSpace(input.SpecialInstructions)
	if utf8.RuneCountInString(instructions) > MaxSpecialInstructions {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "special instructions cannot exceed %d characters", MaxSpecialInstructions)
	}

	item, err := s.availableItem(ctx, input.MenuItemID)
	if err != nil {
		return nil, err
	}
	if input.Quantity > item.Quantity {
		return nil, insufficientStock(item, input.Quantity)
	}

	size, err := ResolveSize(item, input.Size)
	if err != nil {
		return nil, err
	}
	addons := SelectAddons(item.Addons, input.Addons)
	addonsTotal := addons.TotalCents()

	line := &models.CartItem{
		LineKey: LineKey(LineIdentity{
			MenuItemID:          item.ID,
			Size:                size.Name,
			SpecialInstructions: instructions,
			Addons:              addons,
		}),
		MenuItemID:          item.ID,
		ItemName:            item.Name,
		Size:                size.Name,
		Addons:              addons,
		SpecialInstructions: instructions,
		Quantity:            input.Quantity,
		PriceAtTimeCents:    size.PriceCents,
		AddonsTotalCents:    addonsTotal,
		ItemTotalCents:      ItemTotal(size.PriceCents, addonsTotal, input.Quantity),
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		cartID, err := repo.Ensure(ctx, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create cart")
		}
		line.CartID = cartID

		ok, err := repo.UpsertLine(ctx, line)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save cart line")
		}
		if !ok {
			existing, err := repo.LineQuantity(ctx, cartID, line.LineKey)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart line")
			}
			return mergedStockError(item, existing, input.Quantity)
		}
		if err := repo.Touch(ctx, cartID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "bump cart version")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

func (s *service) UpdateItemQuantity(ctx context.Context, userID, lineID uuid.UUID, quantity int) (view *View, err error) {
	if quantity <= 0 {
		return s.RemoveItem(ctx, userID, lineID)
	}
	defer func() { s.record("update", err) }()

	cart, err := s.existingCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	line, err := s.repo.FindLine(ctx, cart.ID, lineID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart line")
	}
	item, err := s.availableItem(ctx, line.MenuItemID)
	if err != nil {
		return nil, err
	}
	if quantity > item.Quantity {
		return nil, insufficientStock(item, quantity)
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		ok, err := repo.SetLineQuantity(ctx, cart.ID, line.ID, quantity)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update cart line")
		}
		if !ok {
			return insufficientStock(item, quantity)
		}
		if err := repo.Touch(ctx, cart.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "bump cart version")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

func (s *service) RemoveItem(ctx context.Context, userID, lineID uuid.UUID) (view *View, err error) {
	defer func() { s.record("remove", err) }()

	cart, err := s.existingCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		ok, err := repo.DeleteLine(ctx, cart.ID, lineID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete cart line")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		if err := repo.Touch(ctx, cart.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "bump cart version")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID) (view *View, err error) {
	defer func() { s.record("clear", err) }()

	cart, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		if db.IsNotFound(err) {
			// nothing to empty yet
			return emptyView(), nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ok, err := s.repo.WithTx(tx).Empty(ctx, cart.ID, cart.Version)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear cart")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeConflict, "cart was modified concurrently; reload and retry")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

func (s *service) ApplyCoupon(ctx context.Context, userID uuid.UUID, code string) (view *View, err error) {
	defer func() { s.record("apply_coupon", err) }()

	cart, err := s.existingCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	subtotal := Summarize(cart.Items, nil).SubtotalCents
	applied, err := s.coupons.Resolve(ctx, code, subtotal)
	if err != nil {
		return nil, err
	}
	if err := s.setCoupon(ctx, cart, applied); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

func (s *service) RemoveCoupon(ctx context.Context, userID uuid.UUID) (view *View, err error) {
	defer func() { s.record("remove_coupon", err) }()

	cart, err := s.existingCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart.AppliedCoupon == nil {
		return newView(cart), nil
	}
	if err := s.setCoupon(ctx, cart, nil); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

func (s *service) setCoupon(ctx context.Context, cart *models.Cart, coupon *types.AppliedCoupon) error {
	ok, err := s.repo.SetCoupon(ctx, cart.ID, cart.Version, coupon)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save cart coupon")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeConflict, "cart was modified concurrently; reload and retry")
	}
	return nil
}

func (s *service) existingCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	cart, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}
	return cart, nil
}

func (s *service) availableItem(ctx context.Context, id uuid.UUID) (*models.MenuItem, error) {
	item, err := s.menu.GetMenuItem(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "menu item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load menu item")
	}
	if !item.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "menu item unavailable")
	}
	return item, nil
}

func (s *service) record(op string, err error) {
	result := "ok"
	if err != nil {
		result = string(pkgerrors.CodeInternal)
		if typed := pkgerrors.As(err); typed != nil {
			result = string(typed.Code())
		}
	}
	s.metrics.CartOp(op, result)
}

// mergedStockError reports the quantity the line would have reached.
func mergedStockError(item *models.MenuItem, inCart, adding int) error {
	return pkgerrors.Newf(pkgerrors.CodeValidation, "insufficient stock for %s: %d already in cart", item.Name, inCart).
		WithDetails(map[string]any{
			"menu_item_id": item.ID,
			"available":    item.Quantity,
			"in_cart":      inCart,
			"adding":       adding,
			"requested":    inCart + adding,
		})
}

func insufficientStock(item *models.MenuItem, requested int) error {
	return pkgerrors.Newf(pkgerrors.CodeValidation, "insufficient stock for %s", item.Name).
		WithDetails(map[string]any{
			"menu_item_id": item.ID,
			"available":    item.Quantity,
			"requested":    requested,
		})
}
