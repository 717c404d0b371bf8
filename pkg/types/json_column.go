package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSON columns are written as text so they bind cleanly to jsonb under the
// simple protocol and to TEXT in sqlite.

func jsonValue(v any) (driver.Value, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

func scanJSON(value any, dest any, name string) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("%s: unsupported scan type %T", name, value)
	}
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func (s MenuSizes) Value() (driver.Value, error) {
	if s == nil {
		s = MenuSizes{}
	}
	return jsonValue([]MenuSize(s))
}

func (s *MenuSizes) Scan(value any) error {
	*s = nil
	return scanJSON(value, (*[]MenuSize)(s), "menu sizes")
}

func (a MenuAddons) Value() (driver.Value, error) {
	if a == nil {
		a = MenuAddons{}
	}
	return jsonValue([]MenuAddon(a))
}

func (a *MenuAddons) Scan(value any) error {
	*a = nil
	return scanJSON(value, (*[]MenuAddon)(a), "menu addons")
}

func (a LineAddons) Value() (driver.Value, error) {
	if a == nil {
		a = LineAddons{}
	}
	return jsonValue([]LineAddon(a))
}

func (a *LineAddons) Scan(value any) error {
	*a = nil
	return scanJSON(value, (*[]LineAddon)(a), "line addons")
}

func (a Address) Value() (driver.Value, error) {
	return jsonValue(a)
}

func (a *Address) Scan(value any) error {
	*a = Address{}
	return scanJSON(value, a, "address")
}

func (c AppliedCoupon) Value() (driver.Value, error) {
	return jsonValue(c)
}

func (c *AppliedCoupon) Scan(value any) error {
	*c = AppliedCoupon{}
	return scanJSON(value, c, "applied coupon")
}

// RawJSON is a pre-encoded JSON document such as an outbox payload.
type RawJSON []byte

func (r RawJSON) Value() (driver.Value, error) {
	if len(r) == 0 {
		return "null", nil
	}
	return string(r), nil
}

func (r *RawJSON) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*r = nil
	case []byte:
		*r = append((*r)[:0], v...)
	case string:
		*r = RawJSON(v)
	default:
		return fmt.Errorf("raw json: unsupported scan type %T", value)
	}
	return nil
}

// MarshalJSON keeps RawJSON embeddable in API responses.
func (r RawJSON) MarshalJSON() ([]byte, error) {
	if len(r) == 0 {
		return []byte("null"), nil
	}
	return r, nil
}
