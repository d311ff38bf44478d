// Package commentstore persists comments attached to events and support
// requests through a tagged owner reference.
package commentstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/meetuphub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when no comment matches.
	ErrNotFound = errors.New("comment not found")
	// ErrBadOwner is returned for an owner reference with an unknown kind.
	ErrBadOwner = errors.New("invalid comment owner")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("comments")}
}

// Create attaches a new approved comment to owner.
func (s *Store) Create(ctx context.Context, owner models.OwnerRef, authorID primitive.ObjectID, body string) (models.Comment, error) {
	if !owner.Kind.Valid() || owner.ID.IsZero() {
		return models.Comment{}, ErrBadOwner
	}
	now := time.Now().UTC()
	c := models.Comment{
		ID:         primitive.NewObjectID(),
		Owner:      owner,
		AuthorID:   authorID,
		Body:       body,
		IsApproved: true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := s.c.InsertOne(ctx, c); err != nil {
		return models.Comment{}, err
	}
	return c, nil
}

// Get loads a comment only if it hangs off owner.
func (s *Store) Get(ctx context.Context, owner models.OwnerRef, id primitive.ObjectID) (*models.Comment, error) {
	var c models.Comment
	err := s.c.FindOne(ctx, bson.M{"_id": id, "owner.kind": owner.Kind, "owner.id": owner.ID}).Decode(&c)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// List returns owner's approved comments in posting order.
func (s *Store) List(ctx context.Context, owner models.OwnerRef) ([]models.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"owner.kind": owner.Kind, "owner.id": owner.ID, "is_approved": true}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Comment{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateBody rewrites a comment's text.
func (s *Store) UpdateBody(ctx context.Context, id primitive.ObjectID, body string) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"body":       body,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes one comment.
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

// DeleteByOwners removes every comment attached to any of ids of the given
// kind.
func (s *Store) DeleteByOwners(ctx context.Context, kind models.OwnerKind, ids []primitive.ObjectID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := s.c.DeleteMany(ctx, bson.M{"owner.kind": kind, "owner.id": bson.M{"$in": ids}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
