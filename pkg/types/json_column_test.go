package types

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/pepdine/pep-backend/pkg/enums"
)

func TestLineAddonsColumnRoundTrip(t *testing.T) {
	in := LineAddons{{ID: "a1", Name: "Cheese", PriceCents: 150, Quantity: 2}}
	v, err := in.Value()
	require.NoError(t, err)
	require.IsType(t, "", v)

	var out LineAddons
	require.NoError(t, out.Scan([]byte(v.(string))))
	require.Equal(t, in, out)
}

func TestNilSlicesEncodeAsEmptyArrays(t *testing.T) {
	v, err := MenuSizes(nil).Value()
	require.NoError(t, err)
	require.Equal(t, "[]", v)
}

func TestAppliedCouponScanFromString(t *testing.T) {
	var c AppliedCoupon
	require.NoError(t, c.Scan(`{"code":"SAVE10","type":"percentage","value":"10","min_order_cents":10000}`))
	require.Equal(t, "SAVE10", c.Code)
	require.Equal(t, enums.CouponTypePercentage, c.Type)
	require.True(t, c.Amount.Equal(decimal.NewFromInt(10)))
}

func TestScanRejectsUnknownTypes(t *testing.T) {
	var sizes MenuSizes
	require.Error(t, sizes.Scan(42))
}
