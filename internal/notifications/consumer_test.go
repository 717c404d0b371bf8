package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pepdine/pep-backend/pkg/config"
	"github.com/pepdine/pep-backend/pkg/enums"
	"github.com/pepdine/pep-backend/pkg/mailer"
	"github.com/pepdine/pep-backend/pkg/outbox"
	"github.com/pepdine/pep-backend/pkg/outbox/payloads"
	"github.com/pepdine/pep-backend/pkg/outbox/registry"
	"github.com/pepdine/pep-backend/pkg/types"
)

type memoryGuard struct {
	mu     sync.Mutex
	claims map[string]bool
}

func (g *memoryGuard) Claim(_ context.Context, consumer string, eventID uuid.UUID) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	key := consumer + ":" + eventID.String()
	if g.claims[key] {
		return false, nil
	}
	g.claims[key] = true
	return true, nil
}

func (g *memoryGuard) Release(_ context.Context, consumer string, eventID uuid.UUID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.claims, consumer+":"+eventID.String())
	return nil
}

type recordingSender struct {
	sent []mailer.Message
	err  error
}

func (s *recordingSender) Send(_ context.Context, msg mailer.Message) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

type idleReceiver struct{}

func (idleReceiver) Receive(ctx context.Context, _ func(context.Context, *pubsub.Message)) error {
	<-ctx.Done()
	return nil
}

func newTestConsumer(t *testing.T, sender *recordingSender, inbox string) (*Consumer, *memoryGuard) {
	t.Helper()
	reg, err := registry.NewEventRegistry(config.PubSubConfig{OrdersTopic: "orders"})
	require.NoError(t, err)
	guard := &memoryGuard{claims: map[string]bool{}}
	c, err := NewConsumer(ConsumerParams{
		Subscription:    idleReceiver{},
		Registry:        reg,
		Guard:           guard,
		Mailer:          sender,
		RestaurantInbox: inbox,
	})
	require.NoError(t, err)
	return c, guard
}

func message(t *testing.T, eventType enums.OutboxEventType, eventID uuid.UUID, payload any) *pubsub.Message {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	body, err := json.Marshal(outbox.PayloadEnvelope{
		Version:    outbox.CurrentVersion,
		EventID:    eventID.String(),
		OccurredAt: time.Now().UTC(),
		Data:       data,
	})
	require.NoError(t, err)
	return &pubsub.Message{
		ID:         uuid.NewString(),
		Data:       body,
		Attributes: map[string]string{"event_type": string(eventType)},
	}
}

func orderCreated(isGuest bool, email string) payloads.OrderCreatedEvent {
	return payloads.OrderCreatedEvent{
		OrderID:       uuid.New(),
		OrderNumber:   "PEP-20260301-0007",
		UserID:        uuid.New(),
		IsGuest:       isGuest,
		CustomerName:  "Asha",
		CustomerEmail: email,
		CustomerPhone: "+919800000000",
		OrderType:     enums.OrderTypeDelivery,
		PaymentMethod: enums.PaymentMethodCash,
		DeliveryAddress: &types.Address{
			Line1:      "12 MG Road",
			City:       "Pune",
			PostalCode: "411001",
		},
		CouponCode: "SAVE10",
		Items: []payloads.OrderLine{{
			ItemName:       "Margherita",
			Size:           "Medium",
			Addons:         types.LineAddons{{ID: "cheese", Name: "Extra Cheese", PriceCents: 100, Quantity: 1}},
			Quantity:       2,
			UnitPriceCents: 700,
			LineTotalCents: 1600,
		}},
		SubtotalCents: 1600,
		DiscountCents: 160,
		TaxCents:      72,
		TotalCents:    1512,
		PlacedAt:      time.Now().UTC(),
	}
}

func TestOrderCreatedSendsBothCopiesForRegisteredCustomers(t *testing.T) {
	sender := &recordingSender{}
	c, _ := newTestConsumer(t, sender, "kitchen@pep.test")

	res := c.process(context.Background(), message(t, enums.EventOrderCreated, uuid.New(), orderCreated(false, "asha@example.com")))
	assert.True(t, res.ack)

	require.Len(t, sender.sent, 2)
	assert.Equal(t, []string{"kitchen@pep.test"}, sender.sent[0].To)
	assert.Contains(t, sender.sent[0].Subject, "PEP-20260301-0007")
	assert.Contains(t, sender.sent[0].Body, "12 MG Road")
	assert.Contains(t, sender.sent[0].Body, "Total: 15.12")

	assert.Equal(t, []string{"asha@example.com"}, sender.sent[1].To)
	assert.Contains(t, sender.sent[1].Body, "Discount (SAVE10): -1.60")
	assert.Contains(t, sender.sent[1].Body, "+ Extra Cheese x1")
}

func TestOrderCreatedSkipsCustomerCopyForGuests(t *testing.T) {
	sender := &recordingSender{}
	c, _ := newTestConsumer(t, sender, "kitchen@pep.test")

	res := c.process(context.Background(), message(t, enums.EventOrderCreated, uuid.New(), orderCreated(true, "guest@example.com")))
	assert.True(t, res.ack)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, []string{"kitchen@pep.test"}, sender.sent[0].To)
	assert.Contains(t, sender.sent[0].Body, "Guest checkout")
}

func TestDuplicateDeliveryIsAcknowledgedOnce(t *testing.T) {
	sender := &recordingSender{}
	c, _ := newTestConsumer(t, sender, "kitchen@pep.test")
	msg := message(t, enums.EventOrderCreated, uuid.New(), orderCreated(false, "asha@example.com"))

	assert.True(t, c.process(context.Background(), msg).ack)
	assert.True(t, c.process(context.Background(), msg).ack)
	assert.Len(t, sender.sent, 2)
}

func TestSendFailureReleasesClaimForRetry(t *testing.T) {
	sender := &recordingSender{err: errors.New("smtp down")}
	c, guard := newTestConsumer(t, sender, "kitchen@pep.test")
	msg := message(t, enums.EventOrderCreated, uuid.New(), orderCreated(false, "asha@example.com"))

	assert.True(t, c.process(context.Background(), msg).nack)
	assert.Empty(t, guard.claims)

	sender.err = nil
	assert.True(t, c.process(context.Background(), msg).ack)
	assert.Len(t, sender.sent, 2)
}

func TestUndecodableMessagesAreDropped(t *testing.T) {
	sender := &recordingSender{}
	c, _ := newTestConsumer(t, sender, "kitchen@pep.test")

	res := c.process(context.Background(), &pubsub.Message{
		ID:         "m-1",
		Data:       []byte("not json"),
		Attributes: map[string]string{"event_type": string(enums.EventOrderCreated)},
	})
	assert.True(t, res.ack)

	res = c.process(context.Background(), &pubsub.Message{
		ID:         "m-2",
		Data:       []byte("{}"),
		Attributes: map[string]string{"event_type": "menu_updated"},
	})
	assert.True(t, res.ack)
	assert.Empty(t, sender.sent)
}

func TestStatusChangeNotifiesRegisteredCustomer(t *testing.T) {
	sender := &recordingSender{}
	c, _ := newTestConsumer(t, sender, "")

	event := payloads.OrderStatusChangedEvent{
		OrderID:       uuid.New(),
		OrderNumber:   "PEP-20260301-0007",
		UserID:        uuid.New(),
		CustomerName:  "Asha",
		CustomerEmail: "asha@example.com",
		From:          enums.OrderStatusPreparing,
		To:            enums.OrderStatusReady,
		ChangedAt:     time.Now().UTC(),
	}
	assert.True(t, c.process(context.Background(), message(t, enums.EventOrderStatusChanged, uuid.New(), event)).ack)
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0].Subject, "is ready")

	event.From, event.To = enums.OrderStatusConfirmed, enums.OrderStatusPreparing
	assert.True(t, c.process(context.Background(), message(t, enums.EventOrderStatusChanged, uuid.New(), event)).ack)
	assert.Len(t, sender.sent, 1)
}
