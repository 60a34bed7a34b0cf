package domain

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

const (
	maxFilters        = 10
	maxFilterValueLen = 100
)

// Allowed characters: Unicode letters/digits, spaces, hyphens, underscores,
// dots (numeric attribute values).
var validFilterValueRegex = regexp.MustCompile(`^[\p{L}\p{N}\s\-_.]+$`)

// ValidateFilters validates filter values for size and character safety.
// Field-name validity against the index is checked by the store itself.
func ValidateFilters(filters map[string]string) error {
	if len(filters) > maxFilters {
		return &ValidationError{Msg: fmt.Sprintf("too many filters: maximum %d allowed, got %d", maxFilters, len(filters))}
	}

	for field, value := range filters {
		if strings.TrimSpace(field) == "" {
			return &ValidationError{Msg: "empty filter field name not allowed"}
		}
		if strings.TrimSpace(value) == "" {
			return &ValidationError{Field: field, Msg: "empty or whitespace-only filter value not allowed"}
		}
		if len(value) > maxFilterValueLen {
			return &ValidationError{Field: field, Msg: fmt.Sprintf("filter value too long: maximum %d characters, got %d", maxFilterValueLen, len(value))}
		}
		if !validFilterValueRegex.MatchString(value) {
			return &ValidationError{Field: field, Msg: "invalid characters in filter value"}
		}
		for _, r := range value {
			if unicode.IsControl(r) {
				return &ValidationError{Field: field, Msg: "control characters not allowed in filter value"}
			}
		}
	}

	return nil
}
