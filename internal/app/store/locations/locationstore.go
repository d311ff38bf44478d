package locationstore

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

// ErrNotFound is returned when no location matches.
var ErrNotFound = errors.New("location not found")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("locations")}
}

// Create inserts a location. DisplayName defaults to Name.
func (s *Store) Create(ctx context.Context, loc models.Location) (models.Location, error) {
	loc.ID = primitive.NewObjectID()
	loc.Name = normalize.Name(loc.Name)
	loc.Country = normalize.Name(loc.Country)
	if loc.DisplayName == "" {
		loc.DisplayName = loc.Name
	}
	loc.CreatedAt = time.Now().UTC()
	if _, err := s.c.InsertOne(ctx, loc); err != nil {
		return models.Location{}, err
	}
	return loc, nil
}

// GetByID loads a location.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Location, error) {
	var loc models.Location
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&loc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &loc, nil
}

// List returns every location ordered by country then name.
func (s *Store) List(ctx context.Context) ([]models.Location, error) {
	opts := options.Find().SetSort(bson.D{{Key: "country", Value: 1}, {Key: "name", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Location{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MapByIDs returns the locations for ids keyed by ID.
func (s *Store) MapByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Location, error) {
	out := make(map[primitive.ObjectID]models.Location, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var loc models.Location
		if err := cur.Decode(&loc); err != nil {
			return nil, err
		}
		out[loc.ID] = loc
	}
	return out, cur.Err()
}
