// Package htmlsanitize cleans user-supplied text before it is stored.
//
// Chapter descriptions, sponsor blurbs and event descriptions accept a small
// subset of formatting HTML. Comment bodies and support-request descriptions
// are plain text, so every tag is stripped.
package htmlsanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	rich   = bluemonday.UGCPolicy()
	strict = bluemonday.StrictPolicy()
)

// Sanitize keeps safe formatting HTML and removes scripts, event handlers,
// and javascript: URLs.
func Sanitize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return strings.TrimSpace(rich.Sanitize(s))
}

// StripTags removes all markup, leaving text content.
func StripTags(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return strings.TrimSpace(strict.Sanitize(s))
}

// IsPlainText reports whether s contains no HTML tags.
func IsPlainText(s string) bool {
	return !strings.Contains(s, "<") || !strings.Contains(s, ">")
}
