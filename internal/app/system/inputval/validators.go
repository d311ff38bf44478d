package inputval

import (
	"net/url"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var slugRe = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// IsValidSlug reports whether s is a lowercase, hyphen-separated URL slug.
func IsValidSlug(s string) bool {
	return len(s) <= 100 && slugRe.MatchString(s)
}

// reservedChapterSlugs are path segments the /meetup router claims for
// itself, so a chapter with one of these slugs could never be reached.
var reservedChapterSlugs = map[string]bool{
	"requests":  true,
	"locations": true,
}

// IsReservedChapterSlug reports whether s is claimed by a fixed route.
func IsReservedChapterSlug(s string) bool {
	return reservedChapterSlugs[strings.ToLower(strings.TrimSpace(s))]
}

// IsValidObjectID reports whether s is a 24-char hex ObjectID.
func IsValidObjectID(s string) bool {
	_, err := primitive.ObjectIDFromHex(strings.TrimSpace(s))
	return err == nil
}

// IsValidClock reports whether s is a 24-hour "HH:MM" time.
func IsValidClock(s string) bool {
	if len(s) != 5 {
		return false
	}
	_, err := time.Parse("15:04", s)
	return err == nil
}

// IsValidHTTPURL reports whether s is an absolute http(s) URL with a host.
func IsValidHTTPURL(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
