// internal/domain/models/comment.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OwnerKind tags what a comment is attached to.
type OwnerKind string

const (
	OwnerEvent          OwnerKind = "event"
	OwnerSupportRequest OwnerKind = "support_request"
)

// Valid reports whether k is a known owner kind.
func (k OwnerKind) Valid() bool {
	return k == OwnerEvent || k == OwnerSupportRequest
}

// OwnerRef points a comment at its subject. The comment does not own the
// subject; the subject's deletion removes its comments.
type OwnerRef struct {
	Kind OwnerKind          `bson:"kind" json:"kind"`
	ID   primitive.ObjectID `bson:"id" json:"id"`
}

// EventOwner builds a reference to an event.
func EventOwner(id primitive.ObjectID) OwnerRef {
	return OwnerRef{Kind: OwnerEvent, ID: id}
}

// SupportRequestOwner builds a reference to a support request.
func SupportRequestOwner(id primitive.ObjectID) OwnerRef {
	return OwnerRef{Kind: OwnerSupportRequest, ID: id}
}

type Comment struct {
	ID         primitive.ObjectID `bson:"_id" json:"id"`
	Owner      OwnerRef           `bson:"owner" json:"owner"`
	AuthorID   primitive.ObjectID `bson:"author_id" json:"author_id"`
	Body       string             `bson:"body" json:"body"`
	IsApproved bool               `bson:"is_approved" json:"is_approved"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at" json:"updated_at"`
}
