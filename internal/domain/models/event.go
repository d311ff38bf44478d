// internal/domain/models/event.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event is a scheduled meetup owned by exactly one chapter.
//
// Date is stored as midnight UTC of the calendar day so that past/upcoming
// partitioning is a plain range query. Time is the local "15:04" start time.
type Event struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	ChapterID   primitive.ObjectID `bson:"chapter_id" json:"chapter_id"`
	Title       string             `bson:"title" json:"title"`
	Slug        string             `bson:"slug" json:"slug"`
	Date        time.Time          `bson:"date" json:"date"`
	Time        string             `bson:"time" json:"time"`
	Description string             `bson:"description" json:"description"`
	CreatedBy   primitive.ObjectID `bson:"created_by" json:"created_by"`
	LastUpdated time.Time          `bson:"last_updated" json:"last_updated"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}
