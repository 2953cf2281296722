// Package phone normalizes Russian phone numbers to the canonical
// +7(XXX)-XXX-XX-XX form used throughout the application.
package phone

import (
	"regexp"
	"strings"
)

var canonicalPattern = regexp.MustCompile(`^\+7\(\d{3}\)-\d{3}-\d{2}-\d{2}$`)

// IsValid reports whether phone is already in canonical form.
func IsValid(phone string) bool {
	return canonicalPattern.MatchString(phone)
}

// FormatInput formats a partially typed number. Non-digits are stripped, a
// leading 8 becomes 7, a missing country code is prefixed, and the result is
// capped at 11 digits before being laid out as +7(XXX)-XXX-XX-XX.
func FormatInput(input string) string {
	var digits strings.Builder
	for _, r := range input {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}

	clean := digits.String()
	if clean == "" {
		return ""
	}
	if strings.HasPrefix(clean, "8") {
		clean = "7" + clean[1:]
	}
	if !strings.HasPrefix(clean, "7") {
		clean = "7" + clean
	}
	if len(clean) > 11 {
		clean = clean[:11]
	}

	switch {
	case len(clean) <= 1:
		return "+7"
	case len(clean) <= 4:
		return "+7(" + clean[1:]
	case len(clean) <= 7:
		return "+7(" + clean[1:4] + ")-" + clean[4:]
	case len(clean) <= 9:
		return "+7(" + clean[1:4] + ")-" + clean[4:7] + "-" + clean[7:]
	default:
		return "+7(" + clean[1:4] + ")-" + clean[4:7] + "-" + clean[7:9] + "-" + clean[9:]
	}
}

// FormatDisplay formats a stored number for display. Canonical input is
// returned unchanged, so re-formatting is a no-op. If the input cannot be
// formatted at all, it is returned as-is.
func FormatDisplay(phone string) string {
	if IsValid(phone) {
		return phone
	}

	formatted := FormatInput(phone)
	if formatted == "" {
		return phone
	}
	return formatted
}
