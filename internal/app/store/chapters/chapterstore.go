// Package chapterstore persists chapters and their inline role sets.
//
// Every membership mutation is a single atomic update on the chapter
// document ($addToSet / $pull), so concurrent joins and approvals never lose
// writes.
package chapterstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/meetuphub/internal/app/system/normalize"
	"github.com/dalemusser/meetuphub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when no chapter matches.
	ErrNotFound = errors.New("chapter not found")
	// ErrDuplicateSlug is returned when the slug is already taken.
	ErrDuplicateSlug = errors.New("a chapter with this slug already exists")
	// ErrNotMember is returned when promoting someone outside the member set.
	ErrNotMember = errors.New("user is not a member of this chapter")
	// ErrNoJoinRequest is returned when approving or rejecting a user who
	// never asked to join.
	ErrNoJoinRequest = errors.New("user has not requested to join this chapter")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("chapters")}
}

// Create inserts ch. Nil role sets are stored as empty arrays so that
// $addToSet and $pull always operate on arrays.
func (s *Store) Create(ctx context.Context, ch models.Chapter) (models.Chapter, error) {
	if ch.ID.IsZero() {
		ch.ID = primitive.NewObjectID()
	}
	ch.Name = normalize.Name(ch.Name)
	ch.NameCI = text.Fold(ch.Name)
	ch.Slug = normalize.Slug(ch.Slug)
	if ch.MemberIDs == nil {
		ch.MemberIDs = []primitive.ObjectID{}
	}
	if ch.OrganizerIDs == nil {
		ch.OrganizerIDs = []primitive.ObjectID{}
	}
	if ch.JoinRequestIDs == nil {
		ch.JoinRequestIDs = []primitive.ObjectID{}
	}
	now := time.Now().UTC()
	ch.CreatedAt = now
	ch.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, ch); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Chapter{}, ErrDuplicateSlug
		}
		return models.Chapter{}, err
	}
	return ch, nil
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (*models.Chapter, error) {
	var ch models.Chapter
	if err := s.c.FindOne(ctx, filter).Decode(&ch); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ch, nil
}

// GetByID loads a chapter.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Chapter, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

// GetBySlug loads a chapter by its slug.
func (s *Store) GetBySlug(ctx context.Context, slug string) (*models.Chapter, error) {
	return s.findOne(ctx, bson.M{"slug": normalize.Slug(slug)})
}

func (s *Store) exists(ctx context.Context, filter bson.M) (bool, error) {
	err := s.c.FindOne(ctx, filter, options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if err == nil {
		return true, nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	return false, err
}

// ExistsByName reports whether a chapter has this name (case and
// diacritics folded).
func (s *Store) ExistsByName(ctx context.Context, name string) (bool, error) {
	return s.exists(ctx, bson.M{"name_ci": text.Fold(normalize.Name(name))})
}

// ExistsBySlug reports whether the slug is taken.
func (s *Store) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	return s.exists(ctx, bson.M{"slug": normalize.Slug(slug)})
}

// ExistsAtLocation reports whether any chapter is bound to the location.
func (s *Store) ExistsAtLocation(ctx context.Context, locationID primitive.ObjectID) (bool, error) {
	return s.exists(ctx, bson.M{"location_id": locationID})
}

// List returns all chapters ordered by name.
func (s *Store) List(ctx context.Context) ([]models.Chapter, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Chapter{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update holds the editable chapter fields. The slug is immutable.
type Update struct {
	Name        string
	Description string
	Sponsors    string
	LocationID  primitive.ObjectID
}

// Update rewrites the editable fields.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd Update) error {
	name := normalize.Name(upd.Name)
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"name":        name,
		"name_ci":     text.Fold(name),
		"description": upd.Description,
		"sponsors":    upd.Sponsors,
		"location_id": upd.LocationID,
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

// Delete removes the chapter document. Callers own the cascade.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Role sets                                                                   |
*─────────────────────────────────────────────────────────────────────────────*/

// apply runs update against the chapter and reports whether it changed
// anything. require must hold for the update to be legal; when the chapter
// exists but fails it, requireErr is returned instead of ErrNotFound. change
// selects only documents the update would modify, so MatchedCount tells a
// real change from a no-op without relying on ModifiedCount (updated_at is
// always stamped).
func (s *Store) apply(ctx context.Context, id primitive.ObjectID, require, change bson.M, update bson.M, requireErr error) (bool, error) {
	base := bson.M{"_id": id}
	for k, v := range require {
		base[k] = v
	}
	filter := bson.M{}
	for k, v := range base {
		filter[k] = v
	}
	for k, v := range change {
		filter[k] = v
	}
	if set, ok := update["$set"].(bson.M); ok {
		set["updated_at"] = time.Now().UTC()
	} else {
		update["$set"] = bson.M{"updated_at": time.Now().UTC()}
	}

	res, err := s.c.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	if res.MatchedCount > 0 {
		return true, nil
	}

	// Nothing matched: the chapter is missing, fails require, or already
	// has the requested shape.
	if len(change) > 0 {
		ok, err := s.exists(ctx, base)
		if err != nil {
			return false, err
		}
		if ok {
			return false, nil
		}
	}
	if len(require) > 0 {
		ok, err := s.exists(ctx, bson.M{"_id": id})
		if err != nil {
			return false, err
		}
		if ok {
			return false, requireErr
		}
	}
	return false, ErrNotFound
}

// AddMember adds uid to members. It reports false when uid was already a
// member.
func (s *Store) AddMember(ctx context.Context, id, uid primitive.ObjectID) (bool, error) {
	return s.apply(ctx, id, nil,
		bson.M{"member_ids": bson.M{"$ne": uid}},
		bson.M{"$addToSet": bson.M{"member_ids": uid}},
		nil)
}

// RemoveMember drops uid from members and organizers. It reports false when
// uid was not a member.
func (s *Store) RemoveMember(ctx context.Context, id, uid primitive.ObjectID) (bool, error) {
	return s.apply(ctx, id, nil,
		bson.M{"member_ids": uid},
		bson.M{"$pull": bson.M{"member_ids": uid, "organizer_ids": uid}},
		nil)
}

// AddOrganizer promotes a member. Returns ErrNotMember if uid is not a
// member, and false if uid already organizes.
func (s *Store) AddOrganizer(ctx context.Context, id, uid primitive.ObjectID) (bool, error) {
	return s.apply(ctx, id,
		bson.M{"member_ids": uid},
		bson.M{"organizer_ids": bson.M{"$ne": uid}},
		bson.M{"$addToSet": bson.M{"organizer_ids": uid}},
		ErrNotMember)
}

// RemoveOrganizer demotes uid; membership is kept. It reports false when uid
// was not an organizer.
func (s *Store) RemoveOrganizer(ctx context.Context, id, uid primitive.ObjectID) (bool, error) {
	return s.apply(ctx, id, nil,
		bson.M{"organizer_ids": uid},
		bson.M{"$pull": bson.M{"organizer_ids": uid}},
		nil)
}

// AddJoinRequest queues uid. It reports false when uid is already queued.
func (s *Store) AddJoinRequest(ctx context.Context, id, uid primitive.ObjectID) (bool, error) {
	return s.apply(ctx, id, nil,
		bson.M{"join_request_ids": bson.M{"$ne": uid}},
		bson.M{"$addToSet": bson.M{"join_request_ids": uid}},
		nil)
}

// ApproveJoin moves uid from the join queue into members.
func (s *Store) ApproveJoin(ctx context.Context, id, uid primitive.ObjectID) error {
	_, err := s.apply(ctx, id,
		bson.M{"join_request_ids": uid}, nil,
		bson.M{"$pull": bson.M{"join_request_ids": uid}, "$addToSet": bson.M{"member_ids": uid}},
		ErrNoJoinRequest)
	return err
}

// RejectJoin removes uid from the join queue only.
func (s *Store) RejectJoin(ctx context.Context, id, uid primitive.ObjectID) error {
	_, err := s.apply(ctx, id,
		bson.M{"join_request_ids": uid}, nil,
		bson.M{"$pull": bson.M{"join_request_ids": uid}},
		ErrNoJoinRequest)
	return err
}
