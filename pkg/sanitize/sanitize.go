package sanitize

import (
	"regexp"
	"strings"
	"unicode"
)

var usernamePattern = regexp.MustCompile(`[^a-zA-Z0-9_.-]`)

// Email normalizes an email address for storage and lookup
func Email(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Username strips characters outside the allowed username alphabet
func Username(username string) string {
	return usernamePattern.ReplaceAllString(strings.TrimSpace(username), "")
}

// Message removes control characters from message content, keeping
// newlines and tabs, and trims surrounding whitespace.
func Message(content string) string {
	cleaned := strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, content)

	return strings.TrimSpace(cleaned)
}
