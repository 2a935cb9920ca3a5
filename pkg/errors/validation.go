package errors

import (
	"unicode"
)

// maxIDLength bounds entity identifiers accepted from graph files and the
// HTTP API.
const maxIDLength = 256

// ValidateID validates a node or link identifier.
//
// The rules are intentionally conservative:
//   - No empty ids
//   - No control characters (ids end up in terminal output and URLs)
//   - Maximum length of 256 bytes
func ValidateID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "id cannot be empty")
	}

	if len(id) > maxIDLength {
		return New(ErrCodeInvalidInput, "id too long (max %d characters)", maxIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "id %q contains control characters", id)
		}
	}

	return nil
}

// ValidateRange checks that min < max for a configured numeric range.
func ValidateRange(name string, min, max float64) error {
	if !(min < max) {
		return New(ErrCodeInvalidConfig, "%s: min (%v) must be less than max (%v)", name, min, max)
	}
	return nil
}

// ValidatePositive checks that a configured value is strictly positive.
func ValidatePositive(name string, v float64) error {
	if !(v > 0) {
		return New(ErrCodeInvalidConfig, "%s must be positive, got %v", name, v)
	}
	return nil
}
