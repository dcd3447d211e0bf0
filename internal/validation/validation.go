package validation

import (
	"regexp"
	"strings"

	validator "github.com/go-playground/validator/v10"
)

// Input length caps, matching the public form fields.
const (
	MaxEmailLength        = 255
	MaxNameLength         = 100
	MaxOrganizationLength = 200
	MaxInterestLength     = 100
	MaxMessageLength      = 2000
)

// emailPattern is deliberately loose: one @, no whitespace, a dot in the
// domain. Deliverability is decided by the mail provider, not here.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// SanitizeString trims whitespace, caps the length, and strips angle
// brackets so form input can never smuggle markup into emails or views.
func SanitizeString(input string, maxLength int) string {
	s := strings.TrimSpace(input)
	if len(s) > maxLength {
		s = s[:maxLength]
	}
	s = strings.ReplaceAll(s, "<", "")
	s = strings.ReplaceAll(s, ">", "")
	return s
}

// NormalizeEmail sanitizes and lowercases an email address. Submissions and
// status checks must normalize identically so they address the same rows.
func NormalizeEmail(raw string) string {
	return strings.ToLower(SanitizeString(raw, MaxEmailLength))
}

// ValidateEmail checks a normalized email against the address-shape pattern.
func ValidateEmail(email string) bool {
	if email == "" || len(email) > MaxEmailLength {
		return false
	}
	return emailPattern.MatchString(email)
}

// New returns the shared validator instance used to check request bodies
// after sanitization.
func New() *validator.Validate {
	return validator.New()
}
