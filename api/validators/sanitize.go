package validators

import (
	"fmt"
	"strings"
	"unicode/utf8"

	pkgerrors "github.com/pepdine/pep-backend/pkg/errors"
)

// CleanText trims free-form input and rejects it when it is not valid UTF-8
// or holds more than maxRunes characters. Text is never cut short.
func CleanText(field, input string, maxRunes int) (string, error) {
	trimmed := strings.TrimSpace(input)
	if !utf8.ValidString(trimmed) {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
			WithDetails(map[string]any{field: "must be valid UTF-8 text"})
	}
	if maxRunes > 0 && utf8.RuneCountInString(trimmed) > maxRunes {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
			WithDetails(map[string]any{field: fmt.Sprintf("must be at most %d characters", maxRunes)})
	}
	return trimmed, nil
}
