package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/meetuphub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// TestPassword is the plaintext password every fixture user gets.
const TestPassword = "correct horse battery staple"

// WithChiURLParam adds a chi URL parameter to the request context.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	return WithChiURLParams(r, map[string]string{key: value})
}

// WithChiURLParams adds several chi URL parameters at once.
func WithChiURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser creates an active user whose password is TestPassword.
func (f *Fixtures) CreateUser(ctx context.Context, username string) models.User {
	f.t.Helper()
	return f.insertUser(ctx, username, false, "active")
}

// CreateStaff creates an active staff user.
func (f *Fixtures) CreateStaff(ctx context.Context, username string) models.User {
	f.t.Helper()
	return f.insertUser(ctx, username, true, "active")
}

// CreateDisabledUser creates a user who cannot sign in.
func (f *Fixtures) CreateDisabledUser(ctx context.Context, username string) models.User {
	f.t.Helper()
	return f.insertUser(ctx, username, false, "disabled")
}

func (f *Fixtures) insertUser(ctx context.Context, username string, staff bool, status string) models.User {
	f.t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		f.t.Fatalf("hash password: %v", err)
	}
	now := time.Now().UTC()
	u := models.User{
		ID:           primitive.NewObjectID(),
		Username:     username,
		UsernameCI:   text.Fold(username),
		FullName:     username,
		PasswordHash: string(hash),
		IsStaff:      staff,
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateLocation creates a location in the directory.
func (f *Fixtures) CreateLocation(ctx context.Context, name string) models.Location {
	f.t.Helper()

	loc := models.Location{
		ID:          primitive.NewObjectID(),
		Name:        name,
		DisplayName: name + ", Testland",
		Country:     "Testland",
		CreatedAt:   time.Now().UTC(),
	}
	if _, err := f.db.Collection("locations").InsertOne(ctx, loc); err != nil {
		f.t.Fatalf("failed to create test location: %v", err)
	}
	return loc
}

// CreateChapter inserts a chapter whose only member and organizer is
// organizer.
func (f *Fixtures) CreateChapter(ctx context.Context, name, slug string, locationID, organizer primitive.ObjectID) models.Chapter {
	f.t.Helper()

	now := time.Now().UTC()
	ch := models.Chapter{
		ID:             primitive.NewObjectID(),
		Name:           name,
		NameCI:         text.Fold(name),
		Slug:           slug,
		LocationID:     locationID,
		Description:    "A test chapter",
		MemberIDs:      []primitive.ObjectID{organizer},
		OrganizerIDs:   []primitive.ObjectID{organizer},
		JoinRequestIDs: []primitive.ObjectID{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if _, err := f.db.Collection("chapters").InsertOne(ctx, ch); err != nil {
		f.t.Fatalf("failed to create test chapter: %v", err)
	}
	return ch
}

// CreateEvent inserts an event on the given calendar day (UTC midnight).
func (f *Fixtures) CreateEvent(ctx context.Context, chapterID primitive.ObjectID, slug string, day time.Time, createdBy primitive.ObjectID) models.Event {
	f.t.Helper()

	y, m, d := day.UTC().Date()
	now := time.Now().UTC()
	ev := models.Event{
		ID:          primitive.NewObjectID(),
		ChapterID:   chapterID,
		Title:       "Event " + slug,
		Slug:        slug,
		Date:        time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		Time:        "18:30",
		Description: "A test event",
		CreatedBy:   createdBy,
		LastUpdated: now,
		CreatedAt:   now,
	}
	if _, err := f.db.Collection("events").InsertOne(ctx, ev); err != nil {
		f.t.Fatalf("failed to create test event: %v", err)
	}
	return ev
}
