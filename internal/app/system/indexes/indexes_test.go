package indexes_test

import (
	"context"
	"testing"

	"github.com/dalemusser/meetuphub/internal/app/system/indexes"
	"github.com/dalemusser/meetuphub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func indexNames(t *testing.T, ctx context.Context, c *mongo.Collection) map[string]bool {
	t.Helper()
	cur, err := c.Indexes().List(ctx)
	if err != nil {
		t.Fatalf("List indexes failed: %v", err)
	}
	defer cur.Close(ctx)

	names := make(map[string]bool)
	for cur.Next(ctx) {
		var idx bson.M
		if err := cur.Decode(&idx); err != nil {
			continue
		}
		if name, ok := idx["name"].(string); ok {
			names[name] = true
		}
	}
	return names
}

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("First EnsureAll failed: %v", err)
	}
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("Second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesIndexes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	expected := map[string][]string{
		"users":            {"uniq_users_usernameci"},
		"chapters":         {"uniq_chapters_slug", "idx_chapters_nameci", "idx_chapters_location", "idx_chapters_members"},
		"chapter_requests": {"idx_chapterreq_approved_created", "idx_chapterreq_user"},
		"events":           {"uniq_events_chapter_slug", "idx_events_chapter_date", "idx_events_date"},
		"rsvps":            {"idx_rsvps_event_coming"},
		"support_requests": {"idx_support_event_approved_created"},
		"comments":         {"idx_comments_owner_created"},
		"audit_events":     {"idx_audit_timestamp", "idx_audit_chapter_timestamp"},
		"login_records":    {"idx_logins_user_created"},
	}

	for coll, want := range expected {
		names := indexNames(t, ctx, db.Collection(coll))
		for _, name := range want {
			if !names[name] {
				t.Errorf("expected index %q on %s", name, coll)
			}
		}
	}
}

func TestEnsureAll_RenamesMisnamedIndex(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := db.Collection("rsvps").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "event_id", Value: 1}, {Key: "coming", Value: 1}},
	})
	if err != nil {
		t.Fatalf("create legacy index: %v", err)
	}

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	names := indexNames(t, ctx, db.Collection("rsvps"))
	if !names["idx_rsvps_event_coming"] {
		t.Error("expected legacy index to be renamed")
	}
	if names["event_id_1_coming_1"] {
		t.Error("expected legacy index name to be gone")
	}
}

func TestEnsureAll_UniqueEventSlugPerChapter(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	ch1 := primitive.NewObjectID()
	ch2 := primitive.NewObjectID()
	events := db.Collection("events")

	if _, err := events.InsertOne(ctx, bson.M{"chapter_id": ch1, "slug": "kickoff"}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := events.InsertOne(ctx, bson.M{"chapter_id": ch2, "slug": "kickoff"}); err != nil {
		t.Errorf("same slug in another chapter should be allowed: %v", err)
	}
	if _, err := events.InsertOne(ctx, bson.M{"chapter_id": ch1, "slug": "kickoff"}); err == nil {
		t.Error("expected duplicate key error for repeated slug within a chapter")
	}
}

func TestEnsureAll_RSVPsAllowDuplicates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	doc := bson.M{"event_id": primitive.NewObjectID(), "user_id": primitive.NewObjectID(), "coming": true}
	for i := 0; i < 2; i++ {
		d := bson.M{}
		for k, v := range doc {
			d[k] = v
		}
		if _, err := db.Collection("rsvps").InsertOne(ctx, d); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}
}
