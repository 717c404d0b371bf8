package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pepdine/pep-backend/internal/cart"
	"github.com/pepdine/pep-backend/internal/catalog"
	"github.com/pepdine/pep-backend/internal/orders"
	"github.com/pepdine/pep-backend/pkg/checkout"
	"github.com/pepdine/pep-backend/pkg/config"
	"github.com/pepdine/pep-backend/pkg/db"
	"github.com/pepdine/pep-backend/pkg/db/models"
	"github.com/pepdine/pep-backend/pkg/enums"
	pkgerrors "github.com/pepdine/pep-backend/pkg/errors"
	"github.com/pepdine/pep-backend/pkg/logger"
	"github.com/pepdine/pep-backend/pkg/metrics"
	"github.com/pepdine/pep-backend/pkg/outbox"
	"github.com/pepdine/pep-backend/pkg/outbox/payloads"
	"github.com/pepdine/pep-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type couponResolver interface {
	ResolveTx(ctx context.Context, tx *gorm.DB, code string, subtotalCents int) (*types.AppliedCoupon, error)
}

type numberAllocator interface {
	Next(ctx context.Context, tx *gorm.DB) (string, error)
}

// Buyer is who is checking out. Guests are resolved to their guest user first.
type Buyer struct {
	UserID  uuid.UUID
	Role    enums.UserRole
	IsGuest bool
}

// Input is the checkout form.
type Input struct {
	OrderType       enums.OrderType
	PaymentMethod   enums.PaymentMethod
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	DeliveryAddress *types.Address
	Notes           string
}

// Service turns a cart into an order.
type Service interface {
	Execute(ctx context.Context, buyer Buyer, input Input) (*orders.OrderDTO, error)
}

type Deps struct {
	Tx      txRunner
	Carts   *cart.Repository
	Catalog *catalog.Repository
	Orders  orders.Repository
	Numbers numberAllocator
	Coupons couponResolver
	Outbox  outbox.Emitter
	Pricing config.PricingConfig
	Metrics *metrics.OrderingMetrics
	Logger  *logger.Logger
}

type service struct {
	Deps
	now func() time.Time
}

// NewService builds the checkout service. Metrics and Logger may be nil.
func NewService(deps Deps) (Service, error) {
	if deps.Tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if deps.Carts == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if deps.Catalog == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if deps.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if deps.Numbers == nil {
		return nil, fmt.Errorf("order number allocator required")
	}
	if deps.Coupons == nil {
		return nil, fmt.Errorf("coupon resolver required")
	}
	if deps.Outbox == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	return &service{Deps: deps, now: time.Now}, nil
}

// Execute places the order in a single transaction: the cart is locked, stock
// is checked and decremented, the order number is allocated, the order is
// written, the cart is emptied and order_created is queued. Any failure
// rolls all of it back.
func (s *service) Execute(ctx context.Context, buyer Buyer, input Input) (result *orders.OrderDTO, err error) {
	defer func() {
		outcome, total := "ok", 0
		if err != nil {
			outcome = string(pkgerrors.CodeInternal)
			if typed := pkgerrors.As(err); typed != nil {
				outcome = string(typed.Code())
			}
		} else {
			total = result.TotalCents
		}
		s.Metrics.Checkout(buyer.IsGuest, outcome, total)
	}()

	if buyer.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "buyer required")
	}
	input = normalize(input)
	if err := checkout.ValidateContact(checkout.ContactInput{
		OrderType:       input.OrderType,
		PaymentMethod:   input.PaymentMethod,
		CustomerName:    input.CustomerName,
		CustomerEmail:   input.CustomerEmail,
		CustomerPhone:   input.CustomerPhone,
		DeliveryAddress: input.DeliveryAddress,
	}); err != nil {
		return nil, err
	}

	var order *models.Order
	err = s.Tx.WithTx(ctx, func(tx *gorm.DB) error {
		carts := s.Carts.WithTx(tx)
		record, err := carts.LockByUser(ctx, buyer.UserID)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
		}
		if len(record.Items) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}

		if err := s.reserveStock(ctx, tx, record.Items); err != nil {
			return err
		}

		cartTotals, coupon, err := s.cartTotals(ctx, tx, record)
		if err != nil {
			return err
		}
		totals := ComputeTotals(cartTotals, input.OrderType, s.Pricing)

		number, err := s.Numbers.Next(ctx, tx)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "allocate order number")
		}

		order = buildOrder(buyer, input, number, record.Items, totals, coupon)
		order.CreatedAt = s.now().UTC()
		if err := s.Orders.WithTx(tx).Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
		}

		ok, err := carts.Empty(ctx, record.ID, record.Version)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear cart")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeConflict, "cart was modified during checkout; review it and retry")
		}

		return s.Outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         &outbox.ActorRef{UserID: buyer.UserID, Role: string(buyer.Role), IsGuest: buyer.IsGuest},
			OccurredAt:    order.CreatedAt,
			Data:          orderCreatedPayload(order),
		})
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.Logger.WithFields(ctx, map[string]any{
		"order_id":     order.ID.String(),
		"order_number": order.OrderNumber,
		"total_cents":  order.TotalCents,
		"guest":        buyer.IsGuest,
	})
	s.Logger.Info(logCtx, "order placed")

	dto := orders.NewOrderDTO(*order)
	return &dto, nil
}

// reserveStock sums demand per menu item, validates it against live stock
// and decrements it with a guarded update per item.
func (s *service) reserveStock(ctx context.Context, tx *gorm.DB, lines []models.CartItem) error {
	demand := map[uuid.UUID]int{}
	order := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		if _, seen := demand[line.MenuItemID]; !seen {
			order = append(order, line.MenuItemID)
		}
		demand[line.MenuItemID] += line.Quantity
	}

	stock := s.Catalog.WithTx(tx)
	checks := make([]checkout.StockValidationInput, 0, len(order))
	for _, id := range order {
		item, err := stock.GetMenuItem(ctx, id)
		if err != nil {
			if db.IsNotFound(err) {
				checks = append(checks, checkout.StockValidationInput{MenuItemID: id, Requested: demand[id]})
				continue
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load menu item")
		}
		checks = append(checks, checkout.StockValidationInput{
			MenuItemID: id,
			ItemName:   item.Name,
			Active:     item.IsActive,
			Available:  item.Quantity,
			Requested:  demand[id],
		})
	}
	if err := checkout.ValidateStock(checks); err != nil {
		return err
	}

	for _, id := range order {
		ok, err := stock.DecrementStock(ctx, id, demand[id])
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decrement stock")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeValidation, "insufficient stock").
				WithDetails(map[string]any{"menu_item_id": id, "requested_qty": demand[id]})
		}
	}
	return nil
}

// cartTotals re-validates an attached coupon that still applies to the
// subtotal so a coupon deactivated after it was applied is not honoured.
// The coupon is read on tx.
func (s *service) cartTotals(ctx context.Context, tx *gorm.DB, record *models.Cart) (cart.Totals, *types.AppliedCoupon, error) {
	totals := cart.Summarize(record.Items, record.AppliedCoupon)
	if record.AppliedCoupon == nil || !totals.CouponApplicable {
		return cart.Summarize(record.Items, nil), nil, nil
	}
	coupon, err := s.Coupons.ResolveTx(ctx, tx, record.AppliedCoupon.Code, totals.SubtotalCents)
	if err != nil {
		return cart.Totals{}, nil, err
	}
	return cart.Summarize(record.Items, coupon), coupon, nil
}

func buildOrder(buyer Buyer, input Input, number string, lines []models.CartItem, totals Totals, coupon *types.AppliedCoupon) *models.Order {
	order := &models.Order{
		OrderNumber:      number,
		UserID:           buyer.UserID,
		IsGuest:          buyer.IsGuest,
		Status:           enums.OrderStatusPending,
		OrderType:        input.OrderType,
		PaymentMethod:    input.PaymentMethod,
		CustomerName:     input.CustomerName,
		CustomerEmail:    input.CustomerEmail,
		CustomerPhone:    input.CustomerPhone,
		SubtotalCents:    totals.SubtotalCents,
		DiscountCents:    totals.DiscountCents,
		DeliveryFeeCents: totals.DeliveryFeeCents,
		TaxCents:         totals.TaxCents,
		TotalCents:       totals.TotalCents,
		Items:            make([]models.OrderItem, 0, len(lines)),
	}
	if input.OrderType == enums.OrderTypeDelivery {
		order.DeliveryAddress = input.DeliveryAddress
	}
	if input.Notes != "" {
		notes := input.Notes
		order.Notes = &notes
	}
	if coupon != nil && totals.DiscountCents > 0 {
		code := coupon.Code
		order.CouponCode = &code
	}
	for _, line := range lines {
		addons := line.Addons
		if addons == nil {
			addons = types.LineAddons{}
		}
		order.Items = append(order.Items, models.OrderItem{
			MenuItemID:          line.MenuItemID,
			ItemName:            line.ItemName,
			Size:                line.Size,
			Addons:              addons,
			SpecialInstructions: line.SpecialInstructions,
			Quantity:            line.Quantity,
			UnitPriceCents:      line.PriceAtTimeCents,
			AddonsTotalCents:    line.AddonsTotalCents,
			LineTotalCents:      cart.ItemTotal(line.PriceAtTimeCents, line.AddonsTotalCents, line.Quantity),
		})
	}
	return order
}

func orderCreatedPayload(order *models.Order) payloads.OrderCreatedEvent {
	payload := payloads.OrderCreatedEvent{
		OrderID:          order.ID,
		OrderNumber:      order.OrderNumber,
		UserID:           order.UserID,
		IsGuest:          order.IsGuest,
		CustomerName:     order.CustomerName,
		CustomerEmail:    order.CustomerEmail,
		CustomerPhone:    order.CustomerPhone,
		OrderType:        order.OrderType,
		PaymentMethod:    order.PaymentMethod,
		DeliveryAddress:  order.DeliveryAddress,
		Items:            make([]payloads.OrderLine, 0, len(order.Items)),
		SubtotalCents:    order.SubtotalCents,
		DiscountCents:    order.DiscountCents,
		DeliveryFeeCents: order.DeliveryFeeCents,
		TaxCents:         order.TaxCents,
		TotalCents:       order.TotalCents,
		PlacedAt:         order.CreatedAt,
	}
	if order.Notes != nil {
		payload.Notes = *order.Notes
	}
	if order.CouponCode != nil {
		payload.CouponCode = *order.CouponCode
	}
	for _, item := range order.Items {
		payload.Items = append(payload.Items, payloads.OrderLine{
			ItemName:            item.ItemName,
			Size:                item.Size,
			Addons:              item.Addons,
			SpecialInstructions: item.SpecialInstructions,
			Quantity:            item.Quantity,
			UnitPriceCents:      item.UnitPriceCents + item.AddonsTotalCents,
			LineTotalCents:      item.LineTotalCents,
		})
	}
	return payload
}

func normalize(in Input) Input {
	in.OrderType = enums.OrderType(strings.TrimSpace(string(in.OrderType)))
	in.PaymentMethod = enums.PaymentMethod(strings.TrimSpace(string(in.PaymentMethod)))
	in.CustomerName = strings.TrimSpace(in.CustomerName)
	in.CustomerEmail = strings.ToLower(strings.TrimSpace(in.CustomerEmail))
	in.CustomerPhone = strings.TrimSpace(in.CustomerPhone)
	in.Notes = strings.TrimSpace(in.Notes)
	return in
}
