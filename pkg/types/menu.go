package types

import "strings"

// MenuSize is one purchasable size of a menu item.
type MenuSize struct {
	Name       string `json:"name"`
	PriceCents int    `json:"price_cents"`
	IsDefault  bool   `json:"is_default,omitempty"`
}

// MenuAddon is an optional extra offered with a menu item.
type MenuAddon struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PriceCents int    `json:"price_cents"`
}

type MenuSizes []MenuSize

// Find returns the size whose trimmed name equals name.
func (s MenuSizes) Find(name string) (MenuSize, bool) {
	want := strings.TrimSpace(name)
	for _, size := range s {
		if strings.TrimSpace(size.Name) == want {
			return size, true
		}
	}
	return MenuSize{}, false
}

// Default returns the size flagged as default, else the first one.
func (s MenuSizes) Default() (MenuSize, bool) {
	for _, size := range s {
		if size.IsDefault {
			return size, true
		}
	}
	if len(s) > 0 {
		return s[0], true
	}
	return MenuSize{}, false
}

type MenuAddons []MenuAddon

// ByID indexes addons by id.
func (a MenuAddons) ByID() map[string]MenuAddon {
	out := make(map[string]MenuAddon, len(a))
	for _, addon := range a {
		out[addon.ID] = addon
	}
	return out
}

// LineAddon is an addon snapshot stored on a cart or order line.
// PriceCents is per unit; Quantity is per unit of the parent line.
type LineAddon struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PriceCents int    `json:"price_cents"`
	Quantity   int    `json:"quantity"`
}

type LineAddons []LineAddon

// TotalCents is the addon contribution to one unit of the parent line.
func (a LineAddons) TotalCents() int {
	total := 0
	for _, addon := range a {
		total += addon.PriceCents * addon.Quantity
	}
	return total
}
