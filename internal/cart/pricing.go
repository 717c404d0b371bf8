package cart

import (
	"strings"

	"github.com/pepdine/pep-backend/pkg/db/models"
	pkgerrors "github.com/pepdine/pep-backend/pkg/errors"
	"github.com/pepdine/pep-backend/pkg/types"
)

// DefaultSizeName labels the implicit size of items that define no sizes.
const DefaultSizeName = "Regular"

// AddonRequest is a requested addon and how many of it per unit of the line.
type AddonRequest struct {
	ID       string
	Quantity int
}

// ResolveSize picks the size a line is priced at. An unknown requested name
// falls back to the default size, then the first size. Items without sizes
// get a synthetic default priced at the discounted price, else the MRP.
func ResolveSize(item *models.MenuItem, requested string) (types.MenuSize, error) {
	sizes := item.Sizes
	if len(sizes) == 0 {
		price := item.MRPCents
		if item.DiscountedPriceCents > 0 {
			price = item.DiscountedPriceCents
		}
		sizes = types.MenuSizes{{Name: DefaultSizeName, PriceCents: price, IsDefault: true}}
	}

	size, ok := sizes.Find(requested)
	if !ok {
		size, _ = sizes.Default()
	}
	size.Name = strings.TrimSpace(size.Name)
	if size.PriceCents <= 0 {
		return types.MenuSize{}, pkgerrors.New(pkgerrors.CodeValidation, "menu item has no valid price").
			WithDetails(map[string]any{"size": size.Name})
	}
	return size, nil
}

// SelectAddons keeps the requested addons the menu item offers. Unknown ids
// and non-positive quantities are dropped; repeats of one id are summed.
// Prices are per unit and taken from the catalog, never from the request.
func SelectAddons(catalog types.MenuAddons, requested []AddonRequest) types.LineAddons {
	if len(requested) == 0 || len(catalog) == 0 {
		return types.LineAddons{}
	}
	known := catalog.ByID()
	merged := make(map[string]int, len(requested))
	order := make([]string, 0, len(requested))
	for _, req := range requested {
		id := strings.TrimSpace(req.ID)
		if _, ok := known[id]; !ok || req.Quantity <= 0 {
			continue
		}
		if _, seen := merged[id]; !seen {
			order = append(order, id)
		}
		merged[id] += req.Quantity
	}

	out := make(types.LineAddons, 0, len(order))
	for _, id := range order {
		addon := known[id]
		out = append(out, types.LineAddon{
			ID:         addon.ID,
			Name:       addon.Name,
			PriceCents: addon.PriceCents,
			Quantity:   merged[id],
		})
	}
	return canonicalAddons(out)
}

// ItemTotal is (price_at_time + addons_total) × quantity.
func ItemTotal(priceAtTimeCents, addonsTotalCents, quantity int) int {
	return (priceAtTimeCents + addonsTotalCents) * quantity
}
