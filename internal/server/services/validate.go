package services

import (
	"regexp"
	"strings"

	"github.com/velotrans/tms/internal/common"
)

const (
	maxEmailLength    = 254
	minPasswordLength = 6
	maxPasswordLength = 128
	maxStringLength   = 500
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// validateEmail trims, lowercases and shape-checks an email address. The
// normalized form is what gets stored, so lookups are case-insensitive.
func validateEmail(email string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(email))
	if trimmed == "" {
		return "", common.Invalid("email", "is required")
	}
	if len(trimmed) > maxEmailLength {
		return "", common.Invalid("email", "is too long")
	}
	if !emailPattern.MatchString(trimmed) {
		return "", common.Invalid("email", "has invalid format")
	}
	return trimmed, nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return common.Invalid("password", "must be at least 6 characters")
	}
	if len(password) > maxPasswordLength {
		return common.Invalid("password", "must be at most 128 characters")
	}
	return nil
}

func validateRequiredString(field, value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", common.Invalid(field, "is required")
	}
	if len(trimmed) > maxStringLength {
		return "", common.Invalid(field, "must be at most 500 characters")
	}
	return trimmed, nil
}
