// internal/app/system/authz/authz.go
package authz

import (
	"net/http"

	"github.com/dalemusser/meetuphub/internal/app/system/auth"
	"github.com/dalemusser/meetuphub/internal/app/workflow"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the user's login ID, Mongo ObjectID, and a found flag.
// If no user is present in context or the user ID is malformed, it returns
// "", NilObjectID, false. Callers can trust that ok=true means a signed-in
// user with a valid ObjectID.
func UserCtx(r *http.Request) (loginID string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed user ID in session; fail closed.
		return "", primitive.NilObjectID, false
	}
	return user.LoginID, userID, true
}

// IsStaff reports whether the current request's user is staff.
func IsStaff(r *http.Request) bool {
	user, ok := auth.CurrentUser(r)
	return ok && user.IsStaff
}

// Actor builds the workflow principal for the current request.
func Actor(r *http.Request) (workflow.Actor, bool) {
	loginID, id, ok := UserCtx(r)
	if !ok {
		return workflow.Actor{}, false
	}
	return workflow.Actor{ID: id, Username: loginID, IsStaff: IsStaff(r)}, true
}
