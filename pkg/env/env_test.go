package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChoiceFallsBackWhenUnset(t *testing.T) {
	t.Setenv("PEP_TEST_FORMAT", "")
	assert.Equal(t, "json", Choice("PEP_TEST_FORMAT", "json", "json", "console"))
}

func TestChoiceNormalizesValue(t *testing.T) {
	t.Setenv("PEP_TEST_FORMAT", "  Console ")
	assert.Equal(t, "console", Choice("PEP_TEST_FORMAT", "json", "json", "console"))
}

func TestChoiceRejectsUnknownValue(t *testing.T) {
	t.Setenv("PEP_TEST_FORMAT", "pretty")
	assert.Equal(t, "json", Choice("PEP_TEST_FORMAT", "json", "json", "console"))
}

func TestChoiceWithoutAllowList(t *testing.T) {
	t.Setenv("PEP_TEST_FORMAT", "Pretty")
	assert.Equal(t, "pretty", Choice("PEP_TEST_FORMAT", "json"))
}
