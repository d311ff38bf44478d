// Package rsvpstore is the append-only RSVP ledger.
//
// There is no unique (event, user) index: every submission is a new row.
package rsvpstore

import (
	"context"
	"time"

	"github.com/dalemusser/meetuphub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("rsvps")}
}

// Create appends a response.
func (s *Store) Create(ctx context.Context, eventID, userID primitive.ObjectID, coming, plusOne bool) (models.RSVP, error) {
	r := models.RSVP{
		ID:        primitive.NewObjectID(),
		EventID:   eventID,
		UserID:    userID,
		Coming:    coming,
		PlusOne:   plusOne,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, r); err != nil {
		return models.RSVP{}, err
	}
	return r, nil
}

// ListGoing returns every row with coming=true for the event, oldest first.
func (s *Store) ListGoing(ctx context.Context, eventID primitive.ObjectID) ([]models.RSVP, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"event_id": eventID, "coming": true}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.RSVP{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteByEvents removes all responses for the given events.
func (s *Store) DeleteByEvents(ctx context.Context, eventIDs []primitive.ObjectID) (int64, error) {
	if len(eventIDs) == 0 {
		return 0, nil
	}
	res, err := s.c.DeleteMany(ctx, bson.M{"event_id": bson.M{"$in": eventIDs}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
