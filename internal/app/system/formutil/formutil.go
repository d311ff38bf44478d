// Package formutil reads submitted form fields and route parameters into
// the shapes handlers validate.
//
// Handlers call r.ParseForm once, then pull fields with these helpers:
//
//	name := formutil.Trim(r, "name")
//	plusOne := formutil.Bool(r, "plus_one")
//	id, ok := formutil.ObjectIDParam(r, "id")
//	if !ok {
//		// 404
//	}
package formutil

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DateLayout is the form encoding of calendar days.
const DateLayout = "2006-01-02"

// Trim returns the named form value with surrounding whitespace removed.
func Trim(r *http.Request, key string) string {
	return strings.TrimSpace(r.FormValue(key))
}

// Bool interprets checkbox-style values. Missing or unrecognized values are
// false.
func Bool(r *http.Request, key string) bool {
	switch strings.ToLower(Trim(r, key)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

// Param returns the named chi route parameter, trimmed.
func Param(r *http.Request, name string) string {
	return strings.TrimSpace(chi.URLParam(r, name))
}

// ObjectIDParam parses the named route parameter as an ObjectID.
func ObjectIDParam(r *http.Request, name string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(Param(r, name))
	if err != nil {
		return primitive.NilObjectID, false
	}
	return oid, true
}

// ObjectID parses s, returning NilObjectID when it is not a valid hex ID.
// Callers validate the raw field first with the objectid rule.
func ObjectID(s string) primitive.ObjectID {
	oid, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return primitive.NilObjectID
	}
	return oid
}

// Day parses a YYYY-MM-DD form value as a UTC calendar day.
func Day(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}
