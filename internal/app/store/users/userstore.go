// internal/app/store/users/userstore.go
package users

// Terminology: User Identifiers
//   - UID / uid: the identity-provider subject; partition key of every habit
//     collection and the value handlers see in the request context
//   - ID / _id: the MongoDB ObjectID of the user record itself

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/pocketwell/pocketwell/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when no user matches the given uid or email.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicate is returned when a uid or email is already taken.
	ErrDuplicate = errors.New("a user with this uid or email already exists")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// normEmail lowercases and trims an email for storage; the folded form is
// kept alongside it for case/diacritic-insensitive lookup.
func normEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create inserts a new user after normalizing fields and applying default
// habit targets.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.Email = normEmail(u.Email)
	u.DisplayName = strings.TrimSpace(u.DisplayName)

	if u.WaterTarget == 0 {
		u.WaterTarget = models.DefaultWaterTarget
	}
	if u.StepsTarget == 0 {
		u.StepsTarget = models.DefaultStepsTarget
	}

	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now

	doc := bson.M{
		"_id":          u.ID,
		"uid":          u.UID,
		"email":        u.Email,
		"email_ci":     text.Fold(u.Email),
		"display_name": u.DisplayName,
		"photo_url":    u.PhotoURL,
		"water_target": u.WaterTarget,
		"steps_target": u.StepsTarget,
		"created_at":   u.CreatedAt,
		"updated_at":   u.UpdatedAt,
	}
	if u.Credentials != nil {
		doc["credentials"] = u.Credentials
	}

	if _, err := s.c.InsertOne(ctx, doc); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicate
		}
		return models.User{}, err
	}
	return u, nil
}

// GetByUID loads a user by identity-provider subject.
func (s *Store) GetByUID(ctx context.Context, uid string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"uid": uid}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by case/diacritic-insensitive email.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email_ci": text.Fold(normEmail(email))}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// UpdateWaterTarget sets the daily glass target. Validation happens at the
// HTTP boundary; the store only requires the user to exist.
func (s *Store) UpdateWaterTarget(ctx context.Context, uid string, target int) error {
	return s.setFields(ctx, uid, bson.M{"water_target": target})
}

// UpdateStepsTarget sets the daily step target.
func (s *Store) UpdateStepsTarget(ctx context.Context, uid string, target int) error {
	return s.setFields(ctx, uid, bson.M{"steps_target": target})
}

// UpdatePhotoURL sets the profile image URL after an upload.
func (s *Store) UpdatePhotoURL(ctx context.Context, uid, photoURL string) error {
	return s.setFields(ctx, uid, bson.M{"photo_url": photoURL})
}

// UpdateDisplayName sets the display name shown in the app.
func (s *Store) UpdateDisplayName(ctx context.Context, uid, name string) error {
	return s.setFields(ctx, uid, bson.M{"display_name": strings.TrimSpace(name)})
}

// SetPasswordHash replaces the stored password hash (local identity mode).
func (s *Store) SetPasswordHash(ctx context.Context, uid string, hash []byte) error {
	return s.setFields(ctx, uid, bson.M{"credentials.password_hash": hash})
}

// RevokeTokens invalidates every token issued before now by bumping
// credentials.tokens_valid_after (local identity mode).
func (s *Store) RevokeTokens(ctx context.Context, uid string, now time.Time) error {
	return s.setFields(ctx, uid, bson.M{"credentials.tokens_valid_after": now})
}

func (s *Store) setFields(ctx context.Context, uid string, set bson.M) error {
	set["updated_at"] = time.Now()
	res, err := s.c.UpdateOne(ctx, bson.M{"uid": uid}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of registered users.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}

// EnsureIndexes creates the unique uid and email indexes.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "uid", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_uid"),
		},
		{
			Keys:    bson.D{{Key: "email_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_email_ci"),
		},
	})
	return err
}
