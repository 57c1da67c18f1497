package validation

import (
	"regexp"
	"strings"
)

// Email shape: something@something.tld, no whitespace, no second @.
// Deliberately simple; the provider is the authority on deliverability.
var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsEmail reports whether the identifier is email-shaped (after trimming).
// Non-email identifiers are treated as usernames by the login flow.
func IsEmail(identifier string) bool {
	return emailRe.MatchString(strings.TrimSpace(identifier))
}
