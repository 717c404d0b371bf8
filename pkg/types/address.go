package types

import "strings"

// Address is the delivery address captured at checkout.
type Address struct {
	Line1      string  `json:"line1" validate:"required,max=200"`
	Line2      *string `json:"line2,omitempty" validate:"omitempty,max=200"`
	City       string  `json:"city" validate:"required,max=100"`
	State      string  `json:"state" validate:"omitempty,max=100"`
	PostalCode string  `json:"postal_code" validate:"required,max=20"`
	Landmark   *string `json:"landmark,omitempty" validate:"omitempty,max=200"`
}

// OneLine renders the address for notification emails.
func (a Address) OneLine() string {
	parts := []string{strings.TrimSpace(a.Line1)}
	if a.Line2 != nil && strings.TrimSpace(*a.Line2) != "" {
		parts = append(parts, strings.TrimSpace(*a.Line2))
	}
	if a.Landmark != nil && strings.TrimSpace(*a.Landmark) != "" {
		parts = append(parts, "near "+strings.TrimSpace(*a.Landmark))
	}
	city := strings.TrimSpace(a.City)
	if state := strings.TrimSpace(a.State); state != "" {
		city += ", " + state
	}
	parts = append(parts, city, strings.TrimSpace(a.PostalCode))
	return strings.Join(parts, ", ")
}
