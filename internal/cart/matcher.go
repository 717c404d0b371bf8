package cart

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/pepdine/pep-backend/pkg/types"
)

// LineIdentity is everything that makes two cart lines the same line.
type LineIdentity struct {
	MenuItemID          uuid.UUID
	Size                string
	SpecialInstructions string
	Addons              types.LineAddons
}

// canonicalAddons sorts a copy by name; price, quantity and id break ties.
func canonicalAddons(addons types.LineAddons) types.LineAddons {
	out := make(types.LineAddons, len(addons))
	copy(out, addons)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch {
		case a.Name != b.Name:
			return a.Name < b.Name
		case a.PriceCents != b.PriceCents:
			return a.PriceCents < b.PriceCents
		case a.Quantity != b.Quantity:
			return a.Quantity < b.Quantity
		}
		return a.ID < b.ID
	})
	return out
}

// SameLine reports whether a and b should be merged into one cart line.
func SameLine(a, b LineIdentity) bool {
	if a.MenuItemID != b.MenuItemID ||
		strings.TrimSpace(a.Size) != strings.TrimSpace(b.Size) ||
		strings.TrimSpace(a.SpecialInstructions) != strings.TrimSpace(b.SpecialInstructions) ||
		len(a.Addons) != len(b.Addons) {
		return false
	}
	left, right := canonicalAddons(a.Addons), canonicalAddons(b.Addons)
	for i := range left {
		if left[i].Name != right[i].Name ||
			left[i].PriceCents != right[i].PriceCents ||
			left[i].Quantity != right[i].Quantity {
			return false
		}
	}
	return true
}

// LineKey digests the canonical form of a line. SameLine(a, b) implies
// LineKey(a) == LineKey(b); the cart_items unique index relies on it.
func LineKey(id LineIdentity) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%s", id.MenuItemID, strings.TrimSpace(id.Size), strings.TrimSpace(id.SpecialInstructions))
	for _, addon := range canonicalAddons(id.Addons) {
		fmt.Fprintf(h, "\x00%s\x01%d\x01%d", addon.Name, addon.PriceCents, addon.Quantity)
	}
	return hex.EncodeToString(h.Sum(nil))
}
