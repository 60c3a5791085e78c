package utils

import (
	"errors"
	"strings"
)

// ValidateCommandName validates that a command name is non-empty and free of
// whitespace, so registered names always survive the space-splitting parser.
func ValidateCommandName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return errors.New("command name is required and must be a non-empty string")
	}
	if trimmed != name || strings.ContainsAny(name, " \t\n") {
		return errors.New("command name must not contain whitespace")
	}
	return nil
}

// IsDigits reports whether s is a non-empty string of decimal digits.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
