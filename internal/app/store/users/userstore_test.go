package userstore_test

import (
	"errors"
	"testing"

	userstore "github.com/dalemusser/meetuphub/internal/app/store/users"
	"github.com/dalemusser/meetuphub/internal/app/system/indexes"
	"github.com/dalemusser/meetuphub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, userstore.NewUser{
		Username: "  Ada ",
		FullName: "Ada  Lovelace",
		Password: "s3cret",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.Username != "ada" {
		t.Errorf("Username = %q, want ada", created.Username)
	}
	if created.FullName != "Ada Lovelace" {
		t.Errorf("FullName = %q, want normalized", created.FullName)
	}
	if created.Status != "active" {
		t.Errorf("Status = %q, want active", created.Status)
	}
	if created.PasswordHash == "s3cret" || created.PasswordHash == "" {
		t.Error("expected password to be hashed")
	}
	if !userstore.CheckPassword(&created, "s3cret") {
		t.Error("CheckPassword should accept the original password")
	}
	if userstore.CheckPassword(&created, "wrong") {
		t.Error("CheckPassword should reject a wrong password")
	}
}

func TestStore_Create_DuplicateUsername(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	store := userstore.New(db)

	if _, err := store.Create(ctx, userstore.NewUser{Username: "grace", Password: "x"}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	_, err := store.Create(ctx, userstore.NewUser{Username: "GRACE", Password: "y"})
	if !errors.Is(err, userstore.ErrDuplicateUsername) {
		t.Errorf("expected ErrDuplicateUsername, got %v", err)
	}
}

func TestStore_GetByUsername(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateUser(ctx, "linus")

	got, err := store.GetByUsername(ctx, "LINUS")
	if err != nil {
		t.Fatalf("GetByUsername failed: %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("got user %v, want %v", got.ID, u.ID)
	}

	if _, err := store.GetByUsername(ctx, "nobody"); !errors.Is(err, userstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_ListByIDs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	b := fx.CreateUser(ctx, "bob")
	a := fx.CreateUser(ctx, "alice")
	fx.CreateUser(ctx, "carol")

	users, err := store.ListByIDs(ctx, []primitive.ObjectID{b.ID, a.ID, primitive.NewObjectID()})
	if err != nil {
		t.Fatalf("ListByIDs failed: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	if users[0].Username != "alice" || users[1].Username != "bob" {
		t.Errorf("unexpected order: %s, %s", users[0].Username, users[1].Username)
	}
	if users[0].PasswordHash != "" {
		t.Error("expected password hash to be projected out")
	}

	empty, err := store.ListByIDs(ctx, nil)
	if err != nil || len(empty) != 0 {
		t.Errorf("ListByIDs(nil) = %v, %v", empty, err)
	}
}

func TestStore_SetStaff(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateUser(ctx, "root")

	if err := store.SetStaff(ctx, "root", true); err != nil {
		t.Fatalf("SetStaff failed: %v", err)
	}
	got, err := store.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if !got.IsStaff {
		t.Error("expected user to be staff")
	}

	if err := store.SetStaff(ctx, "ghost", true); !errors.Is(err, userstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFetcher_FetchUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	fetcher := userstore.NewFetcher(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	active := fx.CreateStaff(ctx, "ops")
	disabled := fx.CreateDisabledUser(ctx, "gone")

	su := fetcher.FetchUser(ctx, active.ID.Hex())
	if su == nil {
		t.Fatal("expected session user for active account")
	}
	if su.LoginID != "ops" || !su.IsStaff {
		t.Errorf("unexpected session user: %+v", su)
	}

	if fetcher.FetchUser(ctx, disabled.ID.Hex()) != nil {
		t.Error("expected nil for disabled user")
	}
	if fetcher.FetchUser(ctx, "not-hex") != nil {
		t.Error("expected nil for malformed id")
	}
}
