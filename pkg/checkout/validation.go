package checkout

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pepdine/pep-backend/pkg/enums"
	pkgerrors "github.com/pepdine/pep-backend/pkg/errors"
	"github.com/pepdine/pep-backend/pkg/types"
)

// StockValidationInput is the demand for one menu item across every cart line.
type StockValidationInput struct {
	MenuItemID uuid.UUID
	ItemName   string
	Active     bool
	Available  int
	Requested  int
}

// StockViolationDetail exposes the data returned to callers when a validation fails.
type StockViolationDetail struct {
	MenuItemID   uuid.UUID `json:"menu_item_id"`
	ItemName     string    `json:"item_name,omitempty"`
	Available    int       `json:"available"`
	RequestedQty int       `json:"requested_qty"`
	Unavailable  bool      `json:"unavailable,omitempty"`
}

// ValidateStock ensures every menu item is still sold and has enough units.
func ValidateStock(items []StockValidationInput) error {
	var violations []StockViolationDetail
	for _, item := range items {
		if item.Active && item.Requested <= item.Available {
			continue
		}
		violations = append(violations, StockViolationDetail{
			MenuItemID:   item.MenuItemID,
			ItemName:     item.ItemName,
			Available:    item.Available,
			RequestedQty: item.Requested,
			Unavailable:  !item.Active,
		})
	}
	if len(violations) == 0 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("insufficient stock for %d item(s)", len(violations))).WithDetails(map[string]any{
		"violations": violations,
	})
}

// ContactInput is the customer data collected on the checkout form.
type ContactInput struct {
	OrderType       enums.OrderType
	PaymentMethod   enums.PaymentMethod
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	DeliveryAddress *types.Address
}

// ValidateContact checks the fields that depend on each other; per-field
// format rules are enforced by the request validators.
func ValidateContact(in ContactInput) error {
	fields := map[string]string{}
	if !in.OrderType.IsValid() {
		fields["order_type"] = "must be one of delivery, pickup, dine_in"
	}
	if !in.PaymentMethod.IsValid() {
		fields["payment_method"] = "must be one of cash, card_on_delivery"
	}
	if strings.TrimSpace(in.CustomerName) == "" {
		fields["customer_name"] = "is required"
	}
	if strings.TrimSpace(in.CustomerPhone) == "" {
		fields["customer_phone"] = "is required"
	}
	if in.OrderType == enums.OrderTypeDelivery {
		switch {
		case in.DeliveryAddress == nil:
			fields["delivery_address"] = "is required for delivery orders"
		case strings.TrimSpace(in.DeliveryAddress.Line1) == "" ||
			strings.TrimSpace(in.DeliveryAddress.City) == "" ||
			strings.TrimSpace(in.DeliveryAddress.PostalCode) == "":
			fields["delivery_address"] = "line1, city and postal_code are required"
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid checkout details").WithDetails(fields)
}
