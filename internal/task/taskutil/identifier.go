package taskutil

import (
	"fmt"
	"strings"
)

func ValidateIdentifier(kind, value string) error {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fmt.Errorf("%s name cannot be empty", kind)
	}
	if trimmed != value {
		return fmt.Errorf("%s name %q has leading/trailing whitespace", kind, value)
	}
	for _, r := range value {
		if !isSafeNameRune(r) {
			return fmt.Errorf("%s name %q contains invalid character %q", kind, value, r)
		}
	}
	return nil
}

// ValidatePath requires an absolute, single-line path.
func ValidatePath(kind, value string) error {
	if value == "" {
		return fmt.Errorf("%s path cannot be empty", kind)
	}
	if !strings.HasPrefix(value, "/") {
		return fmt.Errorf("%s path %q must be absolute", kind, value)
	}
	if strings.ContainsAny(value, "\r\n") {
		return fmt.Errorf("%s path %q cannot contain newlines", kind, value)
	}
	return nil
}

// ValidateSingleLine rejects values that would break a line-oriented config file.
func ValidateSingleLine(kind, value string) error {
	if strings.ContainsAny(value, "\r\n") {
		return fmt.Errorf("%s cannot contain newlines", kind)
	}
	return nil
}

func isSafeNameRune(r rune) bool {
	return r >= 'a' && r <= 'z' ||
		r >= 'A' && r <= 'Z' ||
		r >= '0' && r <= '9' ||
		r == '-' || r == '_' || r == '.' || r == '+' || r == ':' || r == '@'
}
