package loginstore_test

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	loginstore "github.com/dalemusser/meetuphub/internal/app/store/logins"
	"github.com/dalemusser/meetuphub/internal/domain/models"
	"github.com/dalemusser/meetuphub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_CreateFrom(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := loginstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := testutil.NewFixtures(t, db).CreateUser(ctx, "alice")

	r := httptest.NewRequest("POST", "/login", nil)
	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	r.Header.Set("User-Agent", strings.Repeat("x", 400))

	rec, err := store.CreateFrom(ctx, r, &u)
	if err != nil {
		t.Fatalf("CreateFrom failed: %v", err)
	}
	if rec.ID.IsZero() || rec.CreatedAt.IsZero() {
		t.Error("expected ID and CreatedAt to be stamped")
	}
	if rec.IP != "203.0.113.9" {
		t.Errorf("IP: got %q, want %q", rec.IP, "203.0.113.9")
	}
	if len(rec.UserAgent) != 256 {
		t.Errorf("UserAgent length: got %d, want 256", len(rec.UserAgent))
	}

	got, err := store.ListRecent(ctx, u.ID, 10)
	if err != nil {
		t.Fatalf("ListRecent failed: %v", err)
	}
	if len(got) != 1 || got[0].Username != "alice" {
		t.Errorf("unexpected records: %+v", got)
	}
}

func TestStore_ListRecent_NewestFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := loginstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		if _, err := store.Create(ctx, models.LoginRecord{
			UserID:    userID,
			Username:  "bob",
			IP:        "192.0.2.1",
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}
	// Another user's record is not listed.
	if _, err := store.Create(ctx, models.LoginRecord{UserID: primitive.NewObjectID(), Username: "carol"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := store.ListRecent(ctx, userID, 2)
	if err != nil {
		t.Fatalf("ListRecent failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if !got[0].CreatedAt.Equal(base.Add(2 * time.Hour)) {
		t.Errorf("first record: got %v, want newest", got[0].CreatedAt)
	}
	if !got[1].CreatedAt.After(base) {
		t.Errorf("second record: got %v, want the middle one", got[1].CreatedAt)
	}
}

func TestStore_ListRecent_Empty(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	got, err := loginstore.New(db).ListRecent(ctx, primitive.NewObjectID(), 5)
	if err != nil {
		t.Fatalf("ListRecent failed: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", got)
	}
}
