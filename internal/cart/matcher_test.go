package cart

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/pepdine/pep-backend/pkg/types"
)

func TestSameLineAndLineKey(t *testing.T) {
	itemID := uuid.New()
	base := LineIdentity{
		MenuItemID:          itemID,
		Size:                "Medium",
		SpecialInstructions: "no onions",
		Addons: types.LineAddons{
			{ID: "a", Name: "Olives", PriceCents: 30, Quantity: 1},
			{ID: "b", Name: "Cheese", PriceCents: 50, Quantity: 2},
		},
	}

	reordered := base
	reordered.SpecialInstructions = "  no onions "
	reordered.Addons = types.LineAddons{base.Addons[1], base.Addons[0]}
	assert.True(t, SameLine(base, reordered))
	assert.Equal(t, LineKey(base), LineKey(reordered))

	variants := map[string]func(l *LineIdentity){
		"other item":         func(l *LineIdentity) { l.MenuItemID = uuid.New() },
		"other size":         func(l *LineIdentity) { l.Size = "Large" },
		"other instructions": func(l *LineIdentity) { l.SpecialInstructions = "extra spicy" },
		"addon quantity": func(l *LineIdentity) {
			l.Addons = types.LineAddons{base.Addons[0], {ID: "b", Name: "Cheese", PriceCents: 50, Quantity: 1}}
		},
		"missing addon": func(l *LineIdentity) { l.Addons = base.Addons[:1] },
		"no addons":     func(l *LineIdentity) { l.Addons = nil },
	}
	for name, mutate := range variants {
		t.Run(name, func(t *testing.T) {
			other := base
			mutate(&other)
			assert.False(t, SameLine(base, other))
			assert.NotEqual(t, LineKey(base), LineKey(other))
		})
	}
}

func TestCanonicalAddonsDoesNotMutateInput(t *testing.T) {
	in := types.LineAddons{
		{ID: "2", Name: "Olives", PriceCents: 30, Quantity: 1},
		{ID: "1", Name: "Cheese", PriceCents: 50, Quantity: 1},
	}
	out := canonicalAddons(in)
	assert.Equal(t, "Olives", in[0].Name)
	assert.Equal(t, "Cheese", out[0].Name)
}
