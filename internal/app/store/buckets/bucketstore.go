// Package buckets persists the per-user daily counters behind the water and
// steps trackers.
//
// Layout mirrors the app's original document model: one document per user per
// metric collection, with a records map keyed by date:
//
//	{ "uid": "u123", "records": { "2026-09-01": 6, "2026-09-02": 8 } }
//
// Every write is a single server-side atomic update ($inc or $set on one
// records.<date> field) with upsert, so document creation and first write are
// one operation and rapid repeated taps cannot lose increments.
package buckets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pocketwell/pocketwell/internal/datekey"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Metric collection names.
const (
	WaterCollection = "water"
	StepsCollection = "steps"
)

// Document is the stored shape of one user's bucket map.
type Document struct {
	UID       string                    `bson:"uid"`
	Records   map[datekey.DateKey]int64 `bson:"records"`
	UpdatedAt time.Time                 `bson:"updated_at"`
}

// Store provides one metric's daily buckets.
type Store struct {
	c *mongo.Collection
}

// NewWater returns the store backing the water tracker.
func NewWater(db *mongo.Database) *Store {
	return &Store{c: db.Collection(WaterCollection)}
}

// NewSteps returns the store backing the steps tracker.
func NewSteps(db *mongo.Database) *Store {
	return &Store{c: db.Collection(StepsCollection)}
}

// New returns a store over an arbitrary metric collection. Tests and
// background jobs use it; handlers go through NewWater/NewSteps.
func New(db *mongo.Database, collection string) *Store {
	return &Store{c: db.Collection(collection)}
}

func field(date datekey.DateKey) string {
	return "records." + string(date)
}

// Increment atomically adds 1 to the bucket at (uid, date) and returns the
// new value. A missing document or missing day starts from zero.
func (s *Store) Increment(ctx context.Context, uid string, date datekey.DateKey) (int64, error) {
	update := bson.M{
		"$inc":         bson.M{field(date): int64(1)},
		"$set":         bson.M{"updated_at": time.Now().UTC()},
		"$setOnInsert": bson.M{"uid": uid},
	}
	return s.apply(ctx, uid, date, update)
}

// Replace atomically overwrites the bucket at (uid, date) with value and
// returns the stored value. Used by the steps tracker: the pedometer reports
// a cumulative daily total, so last write wins by design.
func (s *Store) Replace(ctx context.Context, uid string, date datekey.DateKey, value int64) (int64, error) {
	if value < 0 {
		return 0, fmt.Errorf("bucket value must be non-negative, got %d", value)
	}
	update := bson.M{
		"$set":         bson.M{field(date): value, "updated_at": time.Now().UTC()},
		"$setOnInsert": bson.M{"uid": uid},
	}
	return s.apply(ctx, uid, date, update)
}

func (s *Store) apply(ctx context.Context, uid string, date datekey.DateKey, update bson.M) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After).
		SetProjection(bson.M{field(date): 1})

	var doc Document
	if err := s.c.FindOneAndUpdate(ctx, bson.M{"uid": uid}, update, opts).Decode(&doc); err != nil {
		return 0, fmt.Errorf("upsert bucket %s: %w", date, err)
	}
	return doc.Records[date], nil
}

// Get returns the value at (uid, date), or 0 when the user has no document
// or no record for that day. Absence is the initial state, not an error.
func (s *Store) Get(ctx context.Context, uid string, date datekey.DateKey) (int64, error) {
	opts := options.FindOne().SetProjection(bson.M{field(date): 1})

	var doc Document
	err := s.c.FindOne(ctx, bson.M{"uid": uid}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read bucket %s: %w", date, err)
	}
	return doc.Records[date], nil
}

// GetRange returns a value for exactly the requested dates, defaulting
// missing days to 0. One query fetches the whole records map.
func (s *Store) GetRange(ctx context.Context, uid string, dates []datekey.DateKey) (map[datekey.DateKey]int64, error) {
	out := make(map[datekey.DateKey]int64, len(dates))
	for _, d := range dates {
		out[d] = 0
	}

	var doc Document
	err := s.c.FindOne(ctx, bson.M{"uid": uid}, options.FindOne().SetProjection(bson.M{"records": 1})).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return out, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read bucket range: %w", err)
	}

	for _, d := range dates {
		if v, ok := doc.Records[d]; ok {
			out[d] = v
		}
	}
	return out, nil
}

// EnsureIndexes creates the unique per-user index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "uid", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("idx_uid"),
	})
	return err
}
