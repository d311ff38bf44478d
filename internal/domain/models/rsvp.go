// internal/domain/models/rsvp.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RSVP is one attendance response. Responses are appended, never updated,
// so a user who answers twice has two rows.
type RSVP struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	EventID   primitive.ObjectID `bson:"event_id" json:"event_id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	Coming    bool               `bson:"coming" json:"coming"`
	PlusOne   bool               `bson:"plus_one" json:"plus_one"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
