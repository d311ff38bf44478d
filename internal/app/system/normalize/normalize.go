// Package normalize canonicalizes user input before it reaches the stores.
package normalize

import (
	"strings"
)

// Username lowercases and trims a login name.
func Username(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace and collapses inner runs of spaces.
// Case is preserved.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Slug lowercases and trims a URL slug. It does not validate the format;
// see inputval for that.
func Slug(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Status returns "active" or "disabled". Anything unrecognized is "active".
func Status(s string) string {
	if strings.EqualFold(strings.TrimSpace(s), "disabled") {
		return "disabled"
	}
	return "active"
}

// QueryParam trims a query string value.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}

// Bool reads an HTML form checkbox or JSON-ish boolean string.
func Bool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}
