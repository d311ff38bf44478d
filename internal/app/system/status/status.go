// Package status defines the result flags mutating endpoints attach to their
// redirect target, and the user-facing message for each.
package status

import "fmt"

// Flag is the machine-readable outcome of a mutation.
type Flag string

const (
	OK                    Flag = "success"
	NameAlreadyExists     Flag = "name_already_exists"
	SlugAlreadyExists     Flag = "slug_already_exists"
	LocationAlreadyExists Flag = "location_already_exists"

	// Warnings: the operation was a no-op but is not an error.
	AlreadyMember    Flag = "already_member"
	AlreadyRequested Flag = "already_requested"
	JoinRequested    Flag = "join_requested"
)

// Warning reports whether f is a non-fatal no-op outcome.
func (f Flag) Warning() bool {
	return f == AlreadyMember || f == AlreadyRequested
}

// Conflict reports whether f blocks a chapter-request approval.
func (f Flag) Conflict() bool {
	switch f {
	case NameAlreadyExists, SlugAlreadyExists, LocationAlreadyExists:
		return true
	}
	return false
}

// Message renders f for display. subject is the name, slug or location the
// flag refers to.
func (f Flag) Message(subject string) string {
	switch f {
	case OK:
		return "Meetup Location created successfully!"
	case NameAlreadyExists:
		return fmt.Sprintf("Name %s already exists, please choose a different name.", subject)
	case SlugAlreadyExists:
		return fmt.Sprintf("Slug %s already exists, please choose a different slug.", subject)
	case LocationAlreadyExists:
		return fmt.Sprintf("A Meetup Location at this location %s exists.", subject)
	case AlreadyMember:
		return fmt.Sprintf("You are already a member of meetup location %s.", subject)
	case AlreadyRequested:
		return fmt.Sprintf("You have already requested to join meetup location %s.", subject)
	case JoinRequested:
		return fmt.Sprintf("Your request to join meetup location %s has been sent.", subject)
	}
	return "Something went wrong. Please try again"
}

// Parse maps a query value back to a Flag. Unknown values yield "" and false.
func Parse(s string) (Flag, bool) {
	switch f := Flag(s); f {
	case OK, NameAlreadyExists, SlugAlreadyExists, LocationAlreadyExists,
		AlreadyMember, AlreadyRequested, JoinRequested:
		return f, true
	}
	return "", false
}
