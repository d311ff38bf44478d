// Package chapterrequeststore persists pending chapter proposals.
package chapterrequeststore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/meetuphub/internal/app/system/normalize"
	"github.com/dalemusser/meetuphub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when no request matches.
var ErrNotFound = errors.New("chapter request not found")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("chapter_requests")}
}

// Create stores a new pending request.
func (s *Store) Create(ctx context.Context, req models.ChapterRequest) (models.ChapterRequest, error) {
	if req.ID.IsZero() {
		req.ID = primitive.NewObjectID()
	}
	req.Name = normalize.Name(req.Name)
	req.Slug = normalize.Slug(req.Slug)
	req.IsApproved = false
	now := time.Now().UTC()
	req.CreatedAt = now
	req.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, req); err != nil {
		return models.ChapterRequest{}, err
	}
	return req, nil
}

// GetByID loads a request.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.ChapterRequest, error) {
	var req models.ChapterRequest
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&req); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

// ListPending returns unapproved requests, oldest first.
func (s *Store) ListPending(ctx context.Context) ([]models.ChapterRequest, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"is_approved": false}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.ChapterRequest{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update holds the fields staff may correct before approving.
type Update struct {
	Name        string
	Slug        string
	LocationID  primitive.ObjectID
	Description string
}

// Update rewrites a pending request. Approved requests are left alone.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd Update) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "is_approved": false},
		bson.M{"$set": bson.M{
			"name":        normalize.Name(upd.Name),
			"slug":        normalize.Slug(upd.Slug),
			"location_id": upd.LocationID,
			"description": upd.Description,
			"updated_at":  time.Now().UTC(),
		}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkApproved flips a pending request to approved. A request that is
// missing or already approved yields ErrNotFound, so approval is one-shot.
func (s *Store) MarkApproved(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "is_approved": false},
		bson.M{"$set": bson.M{"is_approved": true, "updated_at": time.Now().UTC()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a request.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
