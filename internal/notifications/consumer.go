// Package notifications turns relayed order events into transactional email.
package notifications

import (
	"context"
	"errors"
	"fmt"
	"strings"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/pepdine/pep-backend/pkg/logger"
	"github.com/pepdine/pep-backend/pkg/mailer"
	"github.com/pepdine/pep-backend/pkg/metrics"
	"github.com/pepdine/pep-backend/pkg/outbox/payloads"
	"github.com/pepdine/pep-backend/pkg/outbox/registry"
)

const orderEmailConsumer = "order-emails"

type receiver interface {
	Receive(ctx context.Context, f func(context.Context, *pubsub.Message)) error
}

type claimer interface {
	Claim(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error)
	Release(ctx context.Context, consumer string, eventID uuid.UUID) error
}

// ConsumerParams bundles the consumer's collaborators.
type ConsumerParams struct {
	Subscription    receiver
	Registry        *registry.EventRegistry
	Guard           claimer
	Mailer          mailer.Sender
	RestaurantInbox string
	Metrics         *metrics.JobMetrics
	Logger          *logger.Logger
}

// Consumer sends order confirmation and status emails.
type Consumer struct {
	subscription receiver
	registry     *registry.EventRegistry
	guard        claimer
	mailer       mailer.Sender
	inbox        string
	metrics      *metrics.JobMetrics
	logg         *logger.Logger
}

func NewConsumer(params ConsumerParams) (*Consumer, error) {
	if params.Subscription == nil {
		return nil, fmt.Errorf("orders subscription required")
	}
	if params.Registry == nil {
		return nil, fmt.Errorf("event registry required")
	}
	if params.Guard == nil {
		return nil, fmt.Errorf("idempotency guard required")
	}
	if params.Mailer == nil {
		return nil, fmt.Errorf("mailer required")
	}
	return &Consumer{
		subscription: params.Subscription,
		registry:     params.Registry,
		guard:        params.Guard,
		mailer:       params.Mailer,
		inbox:        strings.TrimSpace(params.RestaurantInbox),
		metrics:      params.Metrics,
		logg:         params.Logger,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		if c.process(ctx, msg).nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	eventType := msg.Attributes["event_type"]
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": eventType,
	})

	resolved, err := c.registry.Decode(eventType, msg.Data)
	if err != nil {
		var nonRetryable registry.NonRetryableError
		if errors.As(err, &nonRetryable) {
			c.logg.Error(logCtx, "dropping undecodable message", err)
			c.observe("dropped")
			return processResult{ack: true}
		}
		c.logg.Error(logCtx, "failed to decode message", err)
		c.observe("failure")
		return processResult{nack: true}
	}

	// event_id was validated by the registry
	eventID, _ := uuid.Parse(resolved.Envelope.EventID)
	logCtx = c.logg.WithField(logCtx, "event_id", eventID.String())

	claimed, err := c.guard.Claim(ctx, orderEmailConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		c.observe("failure")
		return processResult{nack: true}
	}
	if !claimed {
		c.logg.Info(logCtx, "event already processed")
		c.observe("duplicate")
		return processResult{ack: true}
	}

	if err := c.handle(logCtx, resolved.Payload); err != nil {
		c.logg.Error(logCtx, "notification handling failed", err)
		if releaseErr := c.guard.Release(ctx, orderEmailConsumer, eventID); releaseErr != nil {
			c.logg.Error(logCtx, "failed to release idempotency claim", releaseErr)
		}
		c.observe("failure")
		return processResult{nack: true}
	}
	c.observe("success")
	return processResult{ack: true}
}

func (c *Consumer) handle(ctx context.Context, payload any) error {
	switch event := payload.(type) {
	case *payloads.OrderCreatedEvent:
		return c.orderCreated(ctx, *event)
	case *payloads.OrderStatusChangedEvent:
		return c.orderStatusChanged(ctx, *event)
	default:
		c.logg.Info(ctx, "event not handled")
		return nil
	}
}

func (c *Consumer) orderCreated(ctx context.Context, event payloads.OrderCreatedEvent) error {
	ctx = c.logg.WithField(ctx, "order_number", event.OrderNumber)
	if c.inbox != "" {
		if err := c.mailer.Send(ctx, restaurantCopy(c.inbox, event)); err != nil {
			return fmt.Errorf("restaurant copy: %w", err)
		}
	} else {
		c.logg.Warn(ctx, "restaurant inbox not configured; skipping restaurant copy")
	}

	if event.IsGuest || strings.TrimSpace(event.CustomerEmail) == "" {
		return nil
	}
	if err := c.mailer.Send(ctx, customerConfirmation(event)); err != nil {
		return fmt.Errorf("customer confirmation: %w", err)
	}
	return nil
}

func (c *Consumer) orderStatusChanged(ctx context.Context, event payloads.OrderStatusChangedEvent) error {
	if event.IsGuest || strings.TrimSpace(event.CustomerEmail) == "" {
		return nil
	}
	msg, ok := statusUpdate(event)
	if !ok {
		return nil
	}
	if err := c.mailer.Send(c.logg.WithField(ctx, "order_number", event.OrderNumber), msg); err != nil {
		return fmt.Errorf("status update: %w", err)
	}
	return nil
}

func (c *Consumer) observe(result string) {
	c.metrics.Count(orderEmailConsumer, result, 1)
}
