// Package supportstore persists volunteer support requests.
package supportstore

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

// ErrNotFound is returned when no support request matches.
var ErrNotFound = errors.New("support request not found")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("support_requests")}
}

// Create stores a new, unapproved request.
func (s *Store) Create(ctx context.Context, eventID, volunteerID primitive.ObjectID, description string) (models.SupportRequest, error) {
	now := time.Now().UTC()
	sr := models.SupportRequest{
		ID:          primitive.NewObjectID(),
		EventID:     eventID,
		VolunteerID: volunteerID,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := s.c.InsertOne(ctx, sr); err != nil {
		return models.SupportRequest{}, err
	}
	return sr, nil
}

// Get loads a support request scoped to its event.
func (s *Store) Get(ctx context.Context, eventID, id primitive.ObjectID) (*models.SupportRequest, error) {
	var sr models.SupportRequest
	if err := s.c.FindOne(ctx, bson.M{"_id": id, "event_id": eventID}).Decode(&sr); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &sr, nil
}

// List returns the event's requests with the given approval state, oldest
// first.
func (s *Store) List(ctx context.Context, eventID primitive.ObjectID, approved bool) ([]models.SupportRequest, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"event_id": eventID, "is_approved": approved}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.SupportRequest{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateDescription rewrites the request text.
func (s *Store) UpdateDescription(ctx context.Context, id primitive.ObjectID, description string) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"description": description,
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

// Approve marks the request approved. Approving twice is harmless.
func (s *Store) Approve(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"is_approved": true,
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

// Delete removes one request.
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

// IDsByEvents lists request ids for the given events.
func (s *Store) IDsByEvents(ctx context.Context, eventIDs []primitive.ObjectID) ([]primitive.ObjectID, error) {
	if len(eventIDs) == 0 {
		return nil, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"event_id": bson.M{"$in": eventIDs}}, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var ids []primitive.ObjectID
	for cur.Next(ctx) {
		var row struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		ids = append(ids, row.ID)
	}
	return ids, cur.Err()
}

// DeleteByEvents removes every request attached to the given events.
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
