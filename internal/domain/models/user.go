// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is the identity record behind every principal. Chapter roles are not
// stored here; they live on the chapter documents that own them.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username     string             `bson:"username" json:"username"`
	UsernameCI   string             `bson:"username_ci" json:"-"`
	FullName     string             `bson:"full_name" json:"full_name"`
	Email        string             `bson:"email,omitempty" json:"email,omitempty"`
	PasswordHash string             `bson:"password_hash,omitempty" json:"-"`
	IsStaff      bool               `bson:"is_staff" json:"is_staff"`
	Status       string             `bson:"status" json:"status"` // active | disabled

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
