// internal/domain/models/supportrequest.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SupportRequest is a volunteer offer tied to one event.
type SupportRequest struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	EventID     primitive.ObjectID `bson:"event_id" json:"event_id"`
	VolunteerID primitive.ObjectID `bson:"volunteer_id" json:"volunteer_id"`
	Description string             `bson:"description" json:"description"`
	IsApproved  bool               `bson:"is_approved" json:"is_approved"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}
