// Package validation holds the pure field predicates used by the input
// forms. All functions are total: malformed input yields false, never an
// error.
package validation

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	urlPattern   = regexp.MustCompile(`^(http|https)://\S+$`)
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,4}$`)
)

// IsNotEmpty reports whether s contains anything besides whitespace.
func IsNotEmpty(s string) bool {
	return strings.TrimSpace(s) != ""
}

// IsCharactersLong reports whether the trimmed value is exactly n
// characters long. This is an exact match, not a minimum.
func IsCharactersLong(s string, n int) bool {
	return len([]rune(strings.TrimSpace(s))) == n
}

// IsURLValid reports whether s looks like an http or https URL.
func IsURLValid(s string) bool {
	return urlPattern.MatchString(s)
}

// IsPriceValid reports whether s parses as a number greater than zero.
func IsPriceValid(s string) bool {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err == nil && v > 0
}

// IsValidEmail reports whether s matches a basic local@domain.tld shape
// with a 2-4 letter TLD.
func IsValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// IsPasswordMatched reports whether the confirmation equals the password.
func IsPasswordMatched(confirm, password string) bool {
	return confirm == password
}
