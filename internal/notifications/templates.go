package notifications

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/pepdine/pep-backend/pkg/enums"
	"github.com/pepdine/pep-backend/pkg/mailer"
	"github.com/pepdine/pep-backend/pkg/outbox/payloads"
)

func formatCents(cents int) string {
	return decimal.New(int64(cents), -2).StringFixed(2)
}

func customerConfirmation(event payloads.OrderCreatedEvent) mailer.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", event.CustomerName)
	fmt.Fprintf(&b, "Thanks for your order! We have received order %s.\n\n", event.OrderNumber)
	writeOrderSummary(&b, event)
	b.WriteString("\nWe will let you know when your order moves along.\n")
	return mailer.Message{
		To:      []string{event.CustomerEmail},
		Subject: fmt.Sprintf("Order %s confirmed", event.OrderNumber),
		Body:    b.String(),
	}
}

func restaurantCopy(inbox string, event payloads.OrderCreatedEvent) mailer.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "New %s order %s\n\n", event.OrderType, event.OrderNumber)
	fmt.Fprintf(&b, "Customer: %s (%s)\n", event.CustomerName, event.CustomerPhone)
	if event.CustomerEmail != "" {
		fmt.Fprintf(&b, "Email: %s\n", event.CustomerEmail)
	}
	if event.IsGuest {
		b.WriteString("Guest checkout\n")
	}
	fmt.Fprintf(&b, "Payment: %s\n", event.PaymentMethod)
	if addr := event.DeliveryAddress; addr != nil {
		fmt.Fprintf(&b, "Deliver to: %s", addr.Line1)
		if addr.Line2 != nil && *addr.Line2 != "" {
			fmt.Fprintf(&b, ", %s", *addr.Line2)
		}
		fmt.Fprintf(&b, ", %s %s\n", addr.City, addr.PostalCode)
	}
	if event.Notes != "" {
		fmt.Fprintf(&b, "Notes: %s\n", event.Notes)
	}
	b.WriteString("\n")
	writeOrderSummary(&b, event)
	return mailer.Message{
		To:      []string{inbox},
		Subject: fmt.Sprintf("[New order] %s", event.OrderNumber),
		Body:    b.String(),
	}
}

func writeOrderSummary(b *strings.Builder, event payloads.OrderCreatedEvent) {
	for _, line := range event.Items {
		fmt.Fprintf(b, "%d x %s (%s)  %s\n", line.Quantity, line.ItemName, line.Size, formatCents(line.LineTotalCents))
		for _, addon := range line.Addons {
			fmt.Fprintf(b, "    + %s x%d\n", addon.Name, addon.Quantity)
		}
		if line.SpecialInstructions != "" {
			fmt.Fprintf(b, "    note: %s\n", line.SpecialInstructions)
		}
	}
	fmt.Fprintf(b, "\nSubtotal: %s\n", formatCents(event.SubtotalCents))
	if event.DiscountCents > 0 {
		fmt.Fprintf(b, "Discount (%s): -%s\n", event.CouponCode, formatCents(event.DiscountCents))
	}
	if event.DeliveryFeeCents > 0 {
		fmt.Fprintf(b, "Delivery: %s\n", formatCents(event.DeliveryFeeCents))
	}
	fmt.Fprintf(b, "Tax: %s\n", formatCents(event.TaxCents))
	fmt.Fprintf(b, "Total: %s\n", formatCents(event.TotalCents))
}

var statusHeadlines = map[enums.OrderStatus]string{
	enums.OrderStatusConfirmed:      "has been confirmed by the kitchen",
	enums.OrderStatusReady:          "is ready",
	enums.OrderStatusOutForDelivery: "is out for delivery",
	enums.OrderStatusDelivered:      "has been delivered",
	enums.OrderStatusCancelled:      "has been cancelled",
}

func statusUpdate(event payloads.OrderStatusChangedEvent) (mailer.Message, bool) {
	headline, ok := statusHeadlines[event.To]
	if !ok {
		return mailer.Message{}, false
	}
	body := fmt.Sprintf("Hi %s,\n\nYour order %s %s.\n", event.CustomerName, event.OrderNumber, headline)
	return mailer.Message{
		To:      []string{event.CustomerEmail},
		Subject: fmt.Sprintf("Order %s %s", event.OrderNumber, headline),
		Body:    body,
	}, true
}
