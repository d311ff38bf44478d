package userstore

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
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrNotFound is returned when no user matches.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateUsername is returned when the username is taken.
	ErrDuplicateUsername = errors.New("a user with this username already exists")
	errBadUsername       = errors.New("username is required")
	errBadPassword       = errors.New("password is required")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

// GetByUsername looks up a user by case-insensitive username.
func (s *Store) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"username_ci": text.Fold(normalize.Username(username))})
}

// ListByIDs returns the users with the given IDs ordered by username.
// Unknown IDs are skipped.
func (s *Store) ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "username_ci", Value: 1}}).
		SetProjection(bson.M{"password_hash": 0})
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.User{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// NewUser holds the fields needed to register a user.
type NewUser struct {
	Username string
	FullName string
	Email    string
	Password string
	IsStaff  bool
}

// Create hashes the password and inserts the user.
func (s *Store) Create(ctx context.Context, in NewUser) (models.User, error) {
	username := normalize.Username(in.Username)
	if username == "" {
		return models.User{}, errBadUsername
	}
	if in.Password == "" {
		return models.User{}, errBadPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}

	now := time.Now().UTC()
	u := models.User{
		ID:           primitive.NewObjectID(),
		Username:     username,
		UsernameCI:   text.Fold(username),
		FullName:     normalize.Name(in.FullName),
		Email:        normalize.Email(in.Email),
		PasswordHash: string(hash),
		IsStaff:      in.IsStaff,
		Status:       "active",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if u.FullName == "" {
		u.FullName = username
	}

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateUsername
		}
		return models.User{}, err
	}
	return u, nil
}

// CheckPassword reports whether password matches the stored hash.
func CheckPassword(u *models.User, password string) bool {
	if u == nil || u.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// SetStaff flips the staff flag for a username.
func (s *Store) SetStaff(ctx context.Context, username string, staff bool) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"username_ci": text.Fold(normalize.Username(username))},
		bson.M{"$set": bson.M{"is_staff": staff, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
