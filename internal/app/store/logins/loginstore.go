// internal/app/store/logins/loginstore.go
package loginstore

// Terminology: User Identifiers
//   - UserID / userID / user_id: The MongoDB ObjectID (_id) that uniquely identifies a user record
//   - LoginID / loginID / login_id: The username people type to sign in

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/meetuphub/internal/app/system/ratelimit"
	"github.com/dalemusser/meetuphub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// maxUserAgent bounds the stored User-Agent header.
const maxUserAgent = 256

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("login_records")}
}

// Create inserts rec, stamping ID and CreatedAt when unset.
func (s *Store) Create(ctx context.Context, rec models.LoginRecord) (models.LoginRecord, error) {
	if rec.ID.IsZero() {
		rec.ID = primitive.NewObjectID()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	if _, err := s.c.InsertOne(ctx, rec); err != nil {
		return models.LoginRecord{}, err
	}
	return rec, nil
}

// CreateFrom records a sign-in by u, taking the address and agent from r.
func (s *Store) CreateFrom(ctx context.Context, r *http.Request, u *models.User) (models.LoginRecord, error) {
	ua := r.UserAgent()
	if len(ua) > maxUserAgent {
		ua = ua[:maxUserAgent]
	}
	return s.Create(ctx, models.LoginRecord{
		UserID:    u.ID,
		Username:  u.Username,
		IP:        ratelimit.ClientIP(r),
		UserAgent: ua,
	})
}

// ListRecent returns up to limit sign-ins by userID, newest first.
func (s *Store) ListRecent(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.LoginRecord, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(limit)
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.LoginRecord{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
