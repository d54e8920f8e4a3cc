// Package photos persists the daily photo journal: per user, per calendar
// day, at most one record of photo URL, caption, location and the emotion
// derived from the caption.
//
// One document per user holds the whole journal, keyed by date:
//
//	{ "uid": "u123", "photos": { "2026-09-01": { ... } } }
//
// A second write for the same user and day replaces that day's record
// entirely; no history is kept within a day.
package photos

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/pocketwell/pocketwell/internal/datekey"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the MongoDB collection for daily photo journals.
const CollectionName = "daily_photos"

// ErrNotFound is returned when a journal or a day's record is absent.
var ErrNotFound = errors.New("photo record not found")

// Record is one day's journal entry. Emotion is empty when the caption was
// empty or the annotation service was unavailable at write time.
type Record struct {
	PhotoURL string `bson:"photo_url" json:"photoURL"`
	Caption  string `bson:"caption" json:"photoCaption"`
	Location string `bson:"location" json:"photoLocation"`
	Emotion  string `bson:"emotion,omitempty" json:"emotionAnalysis,omitempty"`
}

// DatedRecord is a Record with its journal date, as returned to clients.
type DatedRecord struct {
	Date datekey.DateKey `json:"date"`
	Record
}

type document struct {
	UID       string                     `bson:"uid"`
	Photos    map[datekey.DateKey]Record `bson:"photos"`
	UpdatedAt time.Time                  `bson:"updated_at"`
}

// Store provides photo journal persistence.
type Store struct {
	c *mongo.Collection
}

// New creates a new photo journal store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(CollectionName)}
}

// Put overwrites the record at (uid, date). Document creation and first
// write are one atomic upsert.
func (s *Store) Put(ctx context.Context, uid string, date datekey.DateKey, rec Record) error {
	update := bson.M{
		"$set": bson.M{
			"photos." + string(date): rec,
			"updated_at":             time.Now().UTC(),
		},
		"$setOnInsert": bson.M{"uid": uid},
	}
	opts := options.Update().SetUpsert(true)
	if _, err := s.c.UpdateOne(ctx, bson.M{"uid": uid}, update, opts); err != nil {
		return fmt.Errorf("upsert photo record %s: %w", date, err)
	}
	return nil
}

// SetEmotion fills in the emotion of an existing record without touching the
// rest of it. The backfill job uses this after a late classification.
func (s *Store) SetEmotion(ctx context.Context, uid string, date datekey.DateKey, emotion string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"uid": uid, "photos." + string(date): bson.M{"$exists": true}},
		bson.M{"$set": bson.M{"photos." + string(date) + ".emotion": emotion}},
	)
	if err != nil {
		return fmt.Errorf("set emotion %s: %w", date, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Get returns the record at (uid, date) or ErrNotFound.
func (s *Store) Get(ctx context.Context, uid string, date datekey.DateKey) (*Record, error) {
	doc, err := s.load(ctx, uid)
	if err != nil {
		return nil, err
	}
	rec, ok := doc.Photos[date]
	if !ok {
		return nil, ErrNotFound
	}
	return &rec, nil
}

// GetRange returns the records present for the requested dates. Dates with
// no record are simply omitted.
func (s *Store) GetRange(ctx context.Context, uid string, dates []datekey.DateKey) (map[datekey.DateKey]Record, error) {
	doc, err := s.load(ctx, uid)
	if errors.Is(err, ErrNotFound) {
		return map[datekey.DateKey]Record{}, nil
	}
	if err != nil {
		return nil, err
	}
	out := make(map[datekey.DateKey]Record)
	for _, d := range dates {
		if rec, ok := doc.Photos[d]; ok {
			out[d] = rec
		}
	}
	return out, nil
}

// History returns up to limit records ordered by date descending. A non-empty
// cursor is exclusive: the page starts strictly after the record whose date
// equals the cursor. A cursor that matches no record yields an empty page
// (strict-match semantics, not nearest-date). hasMore reports whether older
// records remain beyond the returned page.
func (s *Store) History(ctx context.Context, uid string, limit int, cursor datekey.DateKey) (recs []DatedRecord, hasMore bool, err error) {
	if limit <= 0 {
		limit = 10
	}

	doc, err := s.load(ctx, uid)
	if errors.Is(err, ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	all := make([]DatedRecord, 0, len(doc.Photos))
	for d, rec := range doc.Photos {
		all = append(all, DatedRecord{Date: d, Record: rec})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Date > all[j].Date })

	if cursor != "" {
		start := -1
		for i, r := range all {
			if r.Date == cursor {
				start = i + 1
				break
			}
		}
		if start < 0 {
			return nil, false, nil
		}
		all = all[start:]
	}

	if len(all) > limit {
		return all[:limit], true, nil
	}
	return all, false, nil
}

// Dates returns the journal dates in the half-open window (since, today],
// newest first. The emotion backfill job scans these.
func (s *Store) Dates(ctx context.Context, uid string, since datekey.DateKey) ([]datekey.DateKey, error) {
	doc, err := s.load(ctx, uid)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var dates []datekey.DateKey
	for d := range doc.Photos {
		if d > since {
			dates = append(dates, d)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i] > dates[j] })
	return dates, nil
}

// UIDs returns every user with a journal document. Used by background jobs;
// the journal collection stays small (one doc per user).
func (s *Store) UIDs(ctx context.Context) ([]string, error) {
	raw, err := s.c.Distinct(ctx, "uid", bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list journal uids: %w", err)
	}
	uids := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			uids = append(uids, s)
		}
	}
	return uids, nil
}

func (s *Store) load(ctx context.Context, uid string) (*document, error) {
	var doc document
	err := s.c.FindOne(ctx, bson.M{"uid": uid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read photo journal: %w", err)
	}
	return &doc, nil
}

// EnsureIndexes creates the unique per-user index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "uid", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("idx_uid"),
	})
	return err
}
