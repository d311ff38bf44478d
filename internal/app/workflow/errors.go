package workflow

import (
	"errors"

	"github.com/dalemusser/meetuphub/internal/app/system/status"
)

var (
	// ErrForbidden means the actor lacks the role the operation needs
	// (organizer, author or staff).
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound means a slug, id or username did not resolve, or a
	// chapter/event pair does not belong together.
	ErrNotFound = errors.New("not found")
	// ErrConflict means a uniqueness rule blocked the operation.
	ErrConflict = errors.New("conflict")
	// ErrInvalid means the input was rejected before touching the registry.
	ErrInvalid = errors.New("invalid input")
)

// ConflictError carries the status flag that explains a conflict. It
// matches ErrConflict under errors.Is.
type ConflictError struct {
	Status  status.Flag
	Subject string
}

func (e *ConflictError) Error() string {
	return e.Status.Message(e.Subject)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

func conflict(flag status.Flag, subject string) error {
	return &ConflictError{Status: flag, Subject: subject}
}

// InvalidError wraps a user-facing validation message. It matches
// ErrInvalid under errors.Is.
type InvalidError struct {
	Message string
}

func (e *InvalidError) Error() string { return e.Message }

func (e *InvalidError) Unwrap() error { return ErrInvalid }

func invalid(msg string) error {
	return &InvalidError{Message: msg}
}
