package checkout

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pepdine/pep-backend/internal/cart"
	"github.com/pepdine/pep-backend/internal/catalog"
	"github.com/pepdine/pep-backend/internal/coupons"
	"github.com/pepdine/pep-backend/internal/orders"
	"github.com/pepdine/pep-backend/pkg/config"
	"github.com/pepdine/pep-backend/pkg/db"
	"github.com/pepdine/pep-backend/pkg/db/dbtest"
	"github.com/pepdine/pep-backend/pkg/db/models"
	"github.com/pepdine/pep-backend/pkg/enums"
	pkgerrors "github.com/pepdine/pep-backend/pkg/errors"
	"github.com/pepdine/pep-backend/pkg/outbox"
	"github.com/pepdine/pep-backend/pkg/outbox/payloads"
	"github.com/pepdine/pep-backend/pkg/types"
)

type checkoutFixture struct {
	conn    *gorm.DB
	carts   cart.Service
	coupons coupons.Service
	svc     Service
	pizza   models.MenuItem
	buyer   Buyer
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()
	conn := dbtest.Open(t)
	client := db.FromConn(conn)

	catalogRepo := catalog.NewRepository(conn)
	couponSvc, err := coupons.NewService(coupons.NewRepository(conn))
	require.NoError(t, err)
	cartRepo := cart.NewRepository(conn)
	cartSvc, err := cart.NewService(cartRepo, client, catalogRepo, couponSvc, nil)
	require.NoError(t, err)

	ordersRepo := orders.NewRepository(conn)
	numbers, err := orders.NewNumberGenerator(ordersRepo, time.UTC)
	require.NoError(t, err)

	svc, err := NewService(Deps{
		Tx:      client,
		Carts:   cartRepo,
		Catalog: catalogRepo,
		Orders:  ordersRepo,
		Numbers: numbers,
		Coupons: couponSvc,
		Outbox:  outbox.NewService(outbox.NewRepository(conn), nil),
		Pricing: config.PricingConfig{DeliveryFeeCents: 4000, FreeDeliveryThresholdCents: 50000, TaxRateBps: 500},
	})
	require.NoError(t, err)

	pizza := models.MenuItem{
		Name:     "Farmhouse Pizza",
		MRPCents: 1000,
		Sizes: types.MenuSizes{
			{Name: "Small", PriceCents: 500},
			{Name: "Medium", PriceCents: 700, IsDefault: true},
		},
		Addons:   types.MenuAddons{{ID: "cheese", Name: "Extra Cheese", PriceCents: 100}},
		Quantity: 50,
		IsActive: true,
	}
	require.NoError(t, conn.Create(&pizza).Error)

	return &checkoutFixture{
		conn:    conn,
		carts:   cartSvc,
		coupons: couponSvc,
		svc:     svc,
		pizza:   pizza,
		buyer:   Buyer{UserID: uuid.New(), Role: enums.UserRoleCustomer},
	}
}

func pickupInput() Input {
	return Input{
		OrderType:     enums.OrderTypePickup,
		PaymentMethod: enums.PaymentMethodCash,
		CustomerName:  " Meera ",
		CustomerEmail: "Meera@Example.com",
		CustomerPhone: "+919812345678",
		Notes:         "ring twice",
	}
}

func (f *checkoutFixture) stock(t *testing.T) int {
	t.Helper()
	var item models.MenuItem
	require.NoError(t, f.conn.First(&item, "id = ?", f.pizza.ID).Error)
	return item.Quantity
}

func TestExecutePlacesOrderAndClearsCart(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t)

	maxDiscount := 5000
	_, err := f.coupons.Create(ctx, coupons.CreateInput{
		Code: "SAVE10", Type: enums.CouponTypePercentage, Value: decimal.NewFromInt(10),
		MinOrderCents: 10000, MaxDiscountCents: &maxDiscount,
	})
	require.NoError(t, err)

	_, err = f.carts.AddItem(ctx, f.buyer.UserID, cart.AddItemInput{MenuItemID: f.pizza.ID, Quantity: 10, Size: "Medium", Addons: []cart.AddonRequest{{ID: "cheese", Quantity: 1}}})
	require.NoError(t, err)
	_, err = f.carts.AddItem(ctx, f.buyer.UserID, cart.AddItemInput{MenuItemID: f.pizza.ID, Quantity: 8, Size: "Small"})
	require.NoError(t, err)
	_, err = f.carts.ApplyCoupon(ctx, f.buyer.UserID, "SAVE10")
	require.NoError(t, err)

	order, err := f.svc.Execute(ctx, f.buyer, pickupInput())
	require.NoError(t, err)

	today := time.Now().UTC().Format("20060102")
	assert.Equal(t, "PEP-"+today+"-0001", order.OrderNumber)
	assert.Equal(t, enums.OrderStatusPending, order.Status)
	assert.Equal(t, "Meera", order.CustomerName)
	assert.Equal(t, "meera@example.com", order.CustomerEmail)
	assert.Equal(t, 12000, order.SubtotalCents)
	assert.Equal(t, 1200, order.DiscountCents)
	assert.Equal(t, 0, order.DeliveryFeeCents)
	assert.Equal(t, 540, order.TaxCents)
	assert.Equal(t, 11340, order.TotalCents)
	require.NotNil(t, order.CouponCode)
	assert.Equal(t, "SAVE10", *order.CouponCode)
	require.Len(t, order.Items, 2)
	assert.Equal(t, 32, f.stock(t))

	view, err := f.carts.Get(ctx, f.buyer.UserID)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.Nil(t, view.Coupon)

	var events []models.OutboxEvent
	require.NoError(t, f.conn.Find(&events).Error)
	require.Len(t, events, 1)
	assert.Equal(t, enums.EventOrderCreated, events[0].EventType)
	assert.Equal(t, order.ID, events[0].AggregateID)

	var envelope outbox.PayloadEnvelope
	require.NoError(t, json.Unmarshal(events[0].Payload, &envelope))
	var payload payloads.OrderCreatedEvent
	require.NoError(t, json.Unmarshal(envelope.Data, &payload))
	assert.Equal(t, order.OrderNumber, payload.OrderNumber)
	assert.Equal(t, 11340, payload.TotalCents)
	assert.Len(t, payload.Items, 2)

	_, err = f.carts.AddItem(ctx, f.buyer.UserID, cart.AddItemInput{MenuItemID: f.pizza.ID, Quantity: 1})
	require.NoError(t, err)
	second, err := f.svc.Execute(ctx, f.buyer, pickupInput())
	require.NoError(t, err)
	assert.Equal(t, "PEP-"+today+"-0002", second.OrderNumber)
	assert.Nil(t, second.CouponCode)
}

func TestExecuteRollsBackOnInsufficientStock(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t)

	_, err := f.carts.AddItem(ctx, f.buyer.UserID, cart.AddItemInput{MenuItemID: f.pizza.ID, Quantity: 30, Size: "Small"})
	require.NoError(t, err)
	_, err = f.carts.AddItem(ctx, f.buyer.UserID, cart.AddItemInput{MenuItemID: f.pizza.ID, Quantity: 20, Size: "Medium"})
	require.NoError(t, err)

	// stock dropped after the items were carted
	require.NoError(t, f.conn.Model(&models.MenuItem{}).Where("id = ?", f.pizza.ID).UpdateColumn("quantity", 40).Error)

	_, err = f.svc.Execute(ctx, f.buyer, pickupInput())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	assert.Equal(t, 40, f.stock(t))
	var orderCount, eventCount, sequenceCount int64
	require.NoError(t, f.conn.Model(&models.Order{}).Count(&orderCount).Error)
	require.NoError(t, f.conn.Model(&models.OutboxEvent{}).Count(&eventCount).Error)
	require.NoError(t, f.conn.Model(&models.OrderSequence{}).Count(&sequenceCount).Error)
	assert.Zero(t, orderCount)
	assert.Zero(t, eventCount)
	assert.Zero(t, sequenceCount)

	view, err := f.carts.Get(ctx, f.buyer.UserID)
	require.NoError(t, err)
	assert.Len(t, view.Items, 2)
}

func TestExecuteRejectsEmptyCartAndBadInput(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t)

	_, err := f.svc.Execute(ctx, f.buyer, pickupInput())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	delivery := pickupInput()
	delivery.OrderType = enums.OrderTypeDelivery
	_, err = f.svc.Execute(ctx, f.buyer, delivery)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.Execute(ctx, Buyer{}, pickupInput())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
}

func TestExecuteDeliveryForGuest(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t)
	guest := Buyer{UserID: uuid.New(), Role: enums.UserRoleGuest, IsGuest: true}

	_, err := f.carts.AddItem(ctx, guest.UserID, cart.AddItemInput{MenuItemID: f.pizza.ID, Quantity: 2})
	require.NoError(t, err)

	input := pickupInput()
	input.OrderType = enums.OrderTypeDelivery
	input.CustomerEmail = ""
	input.DeliveryAddress = &types.Address{Line1: "4 Park Street", City: "Kolkata", PostalCode: "700016"}

	order, err := f.svc.Execute(ctx, guest, input)
	require.NoError(t, err)
	assert.True(t, order.IsGuest)
	assert.Equal(t, 1400, order.SubtotalCents)
	assert.Equal(t, 4000, order.DeliveryFeeCents)
	assert.Equal(t, 70, order.TaxCents)
	assert.Equal(t, 5470, order.TotalCents)
	require.NotNil(t, order.DeliveryAddress)
	assert.Equal(t, "Kolkata", order.DeliveryAddress.City)
}

func TestExecuteRejectsDeactivatedCoupon(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t)

	created, err := f.coupons.Create(ctx, coupons.CreateInput{Code: "FLAT100", Type: enums.CouponTypeFixed, Value: decimal.NewFromInt(100)})
	require.NoError(t, err)
	_, err = f.carts.AddItem(ctx, f.buyer.UserID, cart.AddItemInput{MenuItemID: f.pizza.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = f.carts.ApplyCoupon(ctx, f.buyer.UserID, "FLAT100")
	require.NoError(t, err)
	require.NoError(t, f.coupons.Deactivate(ctx, created.ID))

	_, err = f.svc.Execute(ctx, f.buyer, pickupInput())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	assert.Equal(t, 50, f.stock(t))
}
