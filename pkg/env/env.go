package env

import (
	"os"
	"slices"
	"strings"
)

// Choice reads key as a trimmed, lower-cased value and returns fallback when
// the variable is unset or not one of allowed. An empty allowed list accepts
// any non-empty value.
func Choice(key, fallback string, allowed ...string) string {
	val := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if val == "" {
		return fallback
	}
	if len(allowed) > 0 && !slices.Contains(allowed, val) {
		return fallback
	}
	return val
}
