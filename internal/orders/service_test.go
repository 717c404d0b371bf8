package orders

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pepdine/pep-backend/internal/catalog"
	"github.com/pepdine/pep-backend/pkg/db"
	"github.com/pepdine/pep-backend/pkg/db/dbtest"
	"github.com/pepdine/pep-backend/pkg/db/models"
	"github.com/pepdine/pep-backend/pkg/enums"
	pkgerrors "github.com/pepdine/pep-backend/pkg/errors"
	"github.com/pepdine/pep-backend/pkg/outbox"
	"github.com/pepdine/pep-backend/pkg/outbox/payloads"
	"github.com/pepdine/pep-backend/pkg/pagination"
	"github.com/pepdine/pep-backend/pkg/types"
)

type orderFixture struct {
	conn  *gorm.DB
	svc   Service
	repo  Repository
	item  models.MenuItem
	owner uuid.UUID
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	emitter := outbox.NewService(outbox.NewRepository(conn), nil)
	svc, err := NewService(repo, db.FromConn(conn), catalog.NewRepository(conn), emitter, nil)
	require.NoError(t, err)

	item := models.MenuItem{
		Name:     "Veg Biryani",
		MRPCents: 1200,
		Sizes:    types.MenuSizes{},
		Addons:   types.MenuAddons{},
		Quantity: 3,
		IsActive: true,
	}
	require.NoError(t, conn.Create(&item).Error)
	return &orderFixture{conn: conn, svc: svc, repo: repo, item: item, owner: uuid.New()}
}

func (f *orderFixture) placeOrder(t *testing.T, number string, createdAt time.Time) models.Order {
	t.Helper()
	order := models.Order{
		OrderNumber:   number,
		UserID:        f.owner,
		Status:        enums.OrderStatusPending,
		OrderType:     enums.OrderTypePickup,
		PaymentMethod: enums.PaymentMethodCash,
		CustomerName:  "Asha",
		CustomerPhone: "+911234567890",
		SubtotalCents: 2400,
		TotalCents:    2400,
		CreatedAt:     createdAt,
		Items: []models.OrderItem{{
			MenuItemID:     f.item.ID,
			ItemName:       f.item.Name,
			Size:           "Regular",
			Addons:         types.LineAddons{},
			Quantity:       2,
			UnitPriceCents: 1200,
			LineTotalCents: 2400,
		}},
	}
	require.NoError(t, f.repo.Create(context.Background(), &order))
	return order
}

func (f *orderFixture) stock(t *testing.T) int {
	t.Helper()
	var item models.MenuItem
	require.NoError(t, f.conn.First(&item, "id = ?", f.item.ID).Error)
	return item.Quantity
}

func TestCancelForUserRestoresStockAndEmits(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	order := f.placeOrder(t, "PEP-20260301-0001", time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	actor := outbox.ActorRef{UserID: f.owner, Role: string(enums.UserRoleCustomer)}
	cancelled, err := f.svc.CancelForUser(ctx, actor, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCancelled, cancelled.Status)
	assert.NotNil(t, cancelled.CancelledAt)
	assert.Equal(t, 5, f.stock(t))

	var events []models.OutboxEvent
	require.NoError(t, f.conn.Find(&events).Error)
	require.Len(t, events, 1)
	assert.Equal(t, enums.EventOrderStatusChanged, events[0].EventType)

	var envelope outbox.PayloadEnvelope
	require.NoError(t, json.Unmarshal(events[0].Payload, &envelope))
	var payload payloads.OrderStatusChangedEvent
	require.NoError(t, json.Unmarshal(envelope.Data, &payload))
	assert.Equal(t, enums.OrderStatusPending, payload.From)
	assert.Equal(t, enums.OrderStatusCancelled, payload.To)

	_, err = f.svc.CancelForUser(ctx, actor, order.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))
	assert.Equal(t, 5, f.stock(t))
}

func TestCancelForUserChecksOwnershipAndStatus(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	order := f.placeOrder(t, "PEP-20260301-0001", time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	_, err := f.svc.CancelForUser(ctx, outbox.ActorRef{UserID: uuid.New()}, order.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	admin := outbox.ActorRef{UserID: uuid.New(), Role: string(enums.UserRoleAdmin)}
	_, err = f.svc.UpdateStatus(ctx, admin, order.ID, enums.OrderStatusConfirmed)
	require.NoError(t, err)

	_, err = f.svc.CancelForUser(ctx, outbox.ActorRef{UserID: f.owner}, order.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))
	assert.Equal(t, 3, f.stock(t))
}

func TestUpdateStatusFollowsWorkflow(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	order := f.placeOrder(t, "PEP-20260301-0001", time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	admin := outbox.ActorRef{UserID: uuid.New(), Role: string(enums.UserRoleAdmin)}

	_, err := f.svc.UpdateStatus(ctx, admin, order.ID, enums.OrderStatusReady)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))

	for _, next := range []enums.OrderStatus{
		enums.OrderStatusConfirmed,
		enums.OrderStatusPreparing,
		enums.OrderStatusReady,
		enums.OrderStatusOutForDelivery,
		enums.OrderStatusDelivered,
	} {
		updated, err := f.svc.UpdateStatus(ctx, admin, order.ID, next)
		require.NoError(t, err)
		assert.Equal(t, next, updated.Status)
	}

	_, err = f.svc.UpdateStatus(ctx, admin, order.ID, enums.OrderStatusCancelled)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))

	_, err = f.svc.UpdateStatus(ctx, admin, order.ID, enums.OrderStatus("lost"))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.UpdateStatus(ctx, admin, uuid.New(), enums.OrderStatusConfirmed)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	var count int64
	require.NoError(t, f.conn.Model(&models.OutboxEvent{}).Count(&count).Error)
	assert.EqualValues(t, 5, count)
}

func TestListForUserPagesNewestFirst(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		f.placeOrder(t, FormatNumber(base, i+1), base.Add(time.Duration(i)*time.Minute))
	}

	first, err := f.svc.ListForUser(ctx, f.owner, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first.Orders, 2)
	assert.Equal(t, "PEP-20260301-0003", first.Orders[0].OrderNumber)
	assert.Equal(t, "PEP-20260301-0002", first.Orders[1].OrderNumber)
	require.NotEmpty(t, first.NextCursor)
	require.Len(t, first.Orders[0].Items, 1)

	second, err := f.svc.ListForUser(ctx, f.owner, pagination.Params{Limit: 2, Cursor: first.NextCursor})
	require.NoError(t, err)
	require.Len(t, second.Orders, 1)
	assert.Equal(t, "PEP-20260301-0001", second.Orders[0].OrderNumber)
	assert.Empty(t, second.NextCursor)

	other, err := f.svc.ListForUser(ctx, uuid.New(), pagination.Params{})
	require.NoError(t, err)
	assert.Empty(t, other.Orders)

	pending := enums.OrderStatusPending
	all, err := f.svc.List(ctx, &pending, pagination.Params{})
	require.NoError(t, err)
	assert.Len(t, all.Orders, 3)

	_, err = f.svc.GetForUser(ctx, uuid.New(), first.Orders[0].ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
