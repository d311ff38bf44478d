// internal/domain/models/location.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Location is a geographic place from the location directory.
type Location struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Name        string             `bson:"name" json:"name"`
	DisplayName string             `bson:"display_name" json:"display_name"`
	Country     string             `bson:"country" json:"country"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}
