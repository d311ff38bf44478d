// internal/domain/models/chapter.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Chapter is a local meetup location. Role sets are stored inline so every
// membership change is a single-document update.
type Chapter struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Name        string             `bson:"name" json:"name"`
	NameCI      string             `bson:"name_ci" json:"-"`
	Slug        string             `bson:"slug" json:"slug"`
	LocationID  primitive.ObjectID `bson:"location_id" json:"location_id"`
	Description string             `bson:"description" json:"description"`
	Sponsors    string             `bson:"sponsors" json:"sponsors"`

	MemberIDs      []primitive.ObjectID `bson:"member_ids" json:"member_ids"`
	OrganizerIDs   []primitive.ObjectID `bson:"organizer_ids" json:"organizer_ids"`
	JoinRequestIDs []primitive.ObjectID `bson:"join_request_ids" json:"join_request_ids"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
