// Package eventstore persists chapter events.
//
// Dates are calendar days stored as UTC midnight. Callers pass "today" in
// the same form so the past/upcoming split is a single range predicate.
package eventstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/meetuphub/internal/app/system/normalize"
	"github.com/dalemusser/meetuphub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when no event matches.
	ErrNotFound = errors.New("event not found")
	// ErrDuplicateSlug is returned when the chapter already has an event
	// with this slug.
	ErrDuplicateSlug = errors.New("an event with this slug already exists in this chapter")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("events")}
}

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Create inserts ev.
func (s *Store) Create(ctx context.Context, ev models.Event) (models.Event, error) {
	if ev.ID.IsZero() {
		ev.ID = primitive.NewObjectID()
	}
	ev.Slug = normalize.Slug(ev.Slug)
	ev.Date = Day(ev.Date)
	now := time.Now().UTC()
	ev.CreatedAt = now
	ev.LastUpdated = now

	if _, err := s.c.InsertOne(ctx, ev); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Event{}, ErrDuplicateSlug
		}
		return models.Event{}, err
	}
	return ev, nil
}

// GetByChapterAndSlug loads an event only if it belongs to chapterID.
func (s *Store) GetByChapterAndSlug(ctx context.Context, chapterID primitive.ObjectID, slug string) (*models.Event, error) {
	var ev models.Event
	err := s.c.FindOne(ctx, bson.M{"chapter_id": chapterID, "slug": normalize.Slug(slug)}).Decode(&ev)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ev, nil
}

func (s *Store) find(ctx context.Context, filter bson.M, sort bson.D) ([]models.Event, error) {
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Event{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

var (
	ascByDate  = bson.D{{Key: "date", Value: 1}, {Key: "time", Value: 1}, {Key: "_id", Value: 1}}
	descByDate = bson.D{{Key: "date", Value: -1}, {Key: "time", Value: -1}, {Key: "_id", Value: -1}}
)

// ListUpcoming returns events dated today or later, soonest first.
func (s *Store) ListUpcoming(ctx context.Context, chapterID primitive.ObjectID, today time.Time) ([]models.Event, error) {
	return s.find(ctx, bson.M{"chapter_id": chapterID, "date": bson.M{"$gte": Day(today)}}, ascByDate)
}

// ListPast returns events dated before today, most recent first.
func (s *Store) ListPast(ctx context.Context, chapterID primitive.ObjectID, today time.Time) ([]models.Event, error) {
	return s.find(ctx, bson.M{"chapter_id": chapterID, "date": bson.M{"$lt": Day(today)}}, descByDate)
}

// UpcomingByChapter returns upcoming events for every chapter in one query,
// keyed by chapter id.
func (s *Store) UpcomingByChapter(ctx context.Context, chapterIDs []primitive.ObjectID, today time.Time) (map[primitive.ObjectID][]models.Event, error) {
	out := make(map[primitive.ObjectID][]models.Event, len(chapterIDs))
	if len(chapterIDs) == 0 {
		return out, nil
	}
	evs, err := s.find(ctx, bson.M{
		"chapter_id": bson.M{"$in": chapterIDs},
		"date":       bson.M{"$gte": Day(today)},
	}, ascByDate)
	if err != nil {
		return nil, err
	}
	for _, ev := range evs {
		out[ev.ChapterID] = append(out[ev.ChapterID], ev)
	}
	return out, nil
}

// Update holds the editable event fields.
type Update struct {
	Title       string
	Slug        string
	Date        time.Time
	Time        string
	Description string
}

// Update rewrites an event and stamps last_updated.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd Update) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"title":        upd.Title,
		"slug":         normalize.Slug(upd.Slug),
		"date":         Day(upd.Date),
		"time":         upd.Time,
		"description":  upd.Description,
		"last_updated": time.Now().UTC(),
	}})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateSlug
		}
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes one event.
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

// IDsByChapter lists the ids of every event in a chapter.
func (s *Store) IDsByChapter(ctx context.Context, chapterID primitive.ObjectID) ([]primitive.ObjectID, error) {
	cur, err := s.c.Find(ctx, bson.M{"chapter_id": chapterID}, options.Find().SetProjection(bson.M{"_id": 1}))
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

// DeleteByChapter removes every event in a chapter.
func (s *Store) DeleteByChapter(ctx context.Context, chapterID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"chapter_id": chapterID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
