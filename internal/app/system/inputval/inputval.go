// Package inputval validates decoded form input with struct tags.
//
// Fields carry a `validate:"..."` rule list and a `label:"..."` used in
// messages:
//
//	type chapterForm struct {
//	    Name string `validate:"required,max=100" label:"Name"`
//	    Slug string `validate:"required,slug" label:"Slug"`
//	}
//
// Custom rules: slug, chapterslug, objectid, hhmm, httpurl.
package inputval

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// FieldError is one failed rule, already rendered for display.
type FieldError struct {
	Field   string
	Tag     string
	Message string
}

// Result collects validation failures in struct field order.
type Result struct {
	Errors []FieldError
}

// HasErrors reports whether any rule failed.
func (r *Result) HasErrors() bool { return len(r.Errors) > 0 }

// First returns the first message, or "".
func (r *Result) First() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Message
}

// All joins every message with "; ".
func (r *Result) All() string {
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

// Err returns the result as an error, or nil when valid.
func (r *Result) Err() error {
	if !r.HasErrors() {
		return nil
	}
	return errors.New(r.All())
}

var (
	once sync.Once
	v    *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		v = validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			if l := f.Tag.Get("label"); l != "" {
				return l
			}
			return f.Name
		})
		mustRegister(v, "slug", func(fl validator.FieldLevel) bool { return IsValidSlug(fl.Field().String()) })
		mustRegister(v, "chapterslug", func(fl validator.FieldLevel) bool { return !IsReservedChapterSlug(fl.Field().String()) })
		mustRegister(v, "objectid", func(fl validator.FieldLevel) bool { return IsValidObjectID(fl.Field().String()) })
		mustRegister(v, "hhmm", func(fl validator.FieldLevel) bool { return IsValidClock(fl.Field().String()) })
		mustRegister(v, "httpurl", func(fl validator.FieldLevel) bool { return IsValidHTTPURL(fl.Field().String()) })
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("inputval: register %q: %v", tag, err))
	}
}

// Validate runs the struct's rules. s must be a struct or pointer to struct.
func Validate(s any) *Result {
	res := &Result{}
	err := instance().Struct(s)
	if err == nil {
		return res
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		res.Errors = append(res.Errors, FieldError{Message: err.Error()})
		return res
	}
	for _, fe := range verrs {
		res.Errors = append(res.Errors, FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Message: message(fe),
		})
	}
	return res
}

func message(fe validator.FieldError) string {
	label := fe.Field()
	switch fe.Tag() {
	case "required":
		return label + " is required."
	case "max":
		return fmt.Sprintf("%s must be at most %s characters.", label, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters.", label, fe.Param())
	case "email":
		return "A valid email address is required."
	case "slug":
		return label + " may contain only lowercase letters, numbers, and single hyphens."
	case "chapterslug":
		return label + " is reserved. Choose another."
	case "objectid":
		return label + " must be a valid ID."
	case "hhmm":
		return label + " must be a time in HH:MM format."
	case "datetime":
		return fmt.Sprintf("%s must be a date in %s format.", label, dateLayoutName(fe.Param()))
	case "httpurl":
		return label + " must be an http or https URL."
	}
	return label + " is invalid."
}

func dateLayoutName(layout string) string {
	if layout == "2006-01-02" {
		return "YYYY-MM-DD"
	}
	return layout
}
