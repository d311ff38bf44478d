// internal/app/policy/chapterpolicy/chapterpolicy.go
package chapterpolicy

import (
	"github.com/dalemusser/meetuphub/internal/app/system/status"
	"github.com/dalemusser/meetuphub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func has(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

// IsMember reports whether uid is in the chapter's member set.
func IsMember(ch *models.Chapter, uid primitive.ObjectID) bool {
	return ch != nil && has(ch.MemberIDs, uid)
}

// IsOrganizer reports whether uid organizes the chapter. Staff are not
// implicit organizers.
func IsOrganizer(ch *models.Chapter, uid primitive.ObjectID) bool {
	return ch != nil && has(ch.OrganizerIDs, uid)
}

// HasJoinRequest reports whether uid is waiting in the join queue.
func HasJoinRequest(ch *models.Chapter, uid primitive.ObjectID) bool {
	return ch != nil && has(ch.JoinRequestIDs, uid)
}

// JoinOutcome decides what a join request from uid does:
//   - already a member: AlreadyMember (no-op)
//   - already queued: AlreadyRequested (no-op)
//   - otherwise: JoinRequested, and the caller should queue uid
func JoinOutcome(ch *models.Chapter, uid primitive.ObjectID) status.Flag {
	switch {
	case IsMember(ch, uid):
		return status.AlreadyMember
	case HasJoinRequest(ch, uid):
		return status.AlreadyRequested
	}
	return status.JoinRequested
}

// OrganizersAreMembers reports whether every organizer is also a member.
func OrganizersAreMembers(ch *models.Chapter) bool {
	for _, id := range ch.OrganizerIDs {
		if !has(ch.MemberIDs, id) {
			return false
		}
	}
	return true
}
