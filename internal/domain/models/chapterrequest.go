// internal/domain/models/chapterrequest.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ChapterRequest is a user's proposal for a new chapter. Staff resolve it
// once: approval materializes a Chapter, rejection deletes the request.
type ChapterRequest struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Slug        string             `bson:"slug" json:"slug"`
	LocationID  primitive.ObjectID `bson:"location_id" json:"location_id"`
	Description string             `bson:"description" json:"description"`
	UserID      primitive.ObjectID `bson:"user_id" json:"user_id"`
	IsApproved  bool               `bson:"is_approved" json:"is_approved"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}
