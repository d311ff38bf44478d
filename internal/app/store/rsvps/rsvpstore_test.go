package rsvpstore_test

import (
	"testing"

	rsvpstore "github.com/dalemusser/meetuphub/internal/app/store/rsvps"
	"github.com/dalemusser/meetuphub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_AppendOnly(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := rsvpstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ev := primitive.NewObjectID()
	user := primitive.NewObjectID()

	if _, err := store.Create(ctx, ev, user, true, false); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := store.Create(ctx, ev, user, true, true); err != nil {
		t.Fatalf("second Create failed: %v", err)
	}
	store.Create(ctx, ev, primitive.NewObjectID(), false, false)

	n, err := db.Collection("rsvps").CountDocuments(ctx, bson.M{"event_id": ev, "user_id": user})
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 rows for repeated RSVP, got %d", n)
	}

	going, err := store.ListGoing(ctx, ev)
	if err != nil {
		t.Fatalf("ListGoing failed: %v", err)
	}
	if len(going) != 2 {
		t.Errorf("expected 2 going rows, got %d", len(going))
	}

	deleted, err := store.DeleteByEvents(ctx, []primitive.ObjectID{ev})
	if err != nil {
		t.Fatalf("DeleteByEvents failed: %v", err)
	}
	if deleted != 3 {
		t.Errorf("expected 3 rows deleted, got %d", deleted)
	}
}
