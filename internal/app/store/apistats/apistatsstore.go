// Package apistats provides storage for API request statistics with
// configurable bucket duration.
package apistats

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the MongoDB collection for API statistics.
const CollectionName = "api_stats"

// StatType identifies the type of API operation being tracked.
type StatType string

const (
	StatTypeWaterAdd     StatType = "water_add"
	StatTypeWaterToday   StatType = "water_today"
	StatTypeStepsReport  StatType = "steps_report"
	StatTypePhotoSave    StatType = "photo_save"
	StatTypePhotoToday   StatType = "photo_today"
	StatTypePhotoHistory StatType = "photo_history"
	StatTypeSettings     StatType = "settings"
	StatTypeAnalytics    StatType = "analytics"
	StatTypeAccount      StatType = "account"
)

// Bucket represents a time bucket of aggregated statistics.
type Bucket struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Bucket         time.Time          `bson:"bucket"`
	BucketDuration string             `bson:"bucket_duration"`
	StatType       StatType           `bson:"stat_type"`
	Requests       int64              `bson:"requests"`
	Errors         int64              `bson:"errors"` // 4xx and 5xx responses
	TotalMs        int64              `bson:"total_ms"`
	MinMs          int64              `bson:"min_ms"`
	MaxMs          int64              `bson:"max_ms"`
	UpdatedAt      time.Time          `bson:"updated_at"`
}

// AvgMs returns the average response time in milliseconds.
func (b *Bucket) AvgMs() float64 {
	if b.Requests == 0 {
		return 0
	}
	return float64(b.TotalMs) / float64(b.Requests)
}

// Store provides API statistics persistence.
type Store struct {
	c *mongo.Collection
}

// New creates a new API stats store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(CollectionName)}
}

// EnsureIndexes creates indexes for efficient queries.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "bucket", Value: 1},
				{Key: "stat_type", Value: 1},
				{Key: "bucket_duration", Value: 1},
			},
			Options: options.Index().SetUnique(true).SetName("idx_bucket_type_duration"),
		},
		{
			Keys: bson.D{
				{Key: "stat_type", Value: 1},
				{Key: "bucket", Value: 1},
			},
			Options: options.Index().SetName("idx_type_bucket"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// TruncateToBucket truncates a time to the start of its bucket.
func TruncateToBucket(t time.Time, duration time.Duration) time.Time {
	return t.UTC().Truncate(duration)
}

// Record records a single API request's statistics.
// This atomically updates the appropriate bucket, creating it if needed.
func (s *Store) Record(ctx context.Context, statType StatType, bucketDuration time.Duration, durationMs int64, isError bool) error {
	now := time.Now().UTC()
	bucket := TruncateToBucket(now, bucketDuration)
	durationStr := bucketDuration.String()

	// $min and $max handle both the insert and update cases, so min_ms and
	// max_ms stay out of $setOnInsert (which would conflict).
	update := bson.M{
		"$inc": bson.M{
			"requests": 1,
			"total_ms": durationMs,
		},
		"$set": bson.M{
			"updated_at": now,
		},
		"$setOnInsert": bson.M{
			"_id":             primitive.NewObjectID(),
			"bucket":          bucket,
			"bucket_duration": durationStr,
			"stat_type":       statType,
		},
		"$min": bson.M{
			"min_ms": durationMs,
		},
		"$max": bson.M{
			"max_ms": durationMs,
		},
	}

	if isError {
		update["$inc"].(bson.M)["errors"] = 1
	}

	opts := options.Update().SetUpsert(true)
	_, err := s.c.UpdateOne(ctx, bson.M{
		"bucket":          bucket,
		"stat_type":       statType,
		"bucket_duration": durationStr,
	}, update, opts)
	return err
}

// GetRange retrieves stats for a time range and stat type.
// If bucketDuration is empty, returns all resolutions.
func (s *Store) GetRange(ctx context.Context, statType StatType, startTime, endTime time.Time, bucketDuration string) ([]Bucket, error) {
	filter := bson.M{
		"stat_type": statType,
		"bucket": bson.M{
			"$gte": startTime.UTC(),
			"$lte": endTime.UTC(),
		},
	}
	if bucketDuration != "" {
		filter["bucket_duration"] = bucketDuration
	}

	opts := options.Find().SetSort(bson.D{{Key: "bucket", Value: 1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var buckets []Bucket
	if err := cur.All(ctx, &buckets); err != nil {
		return nil, err
	}
	return buckets, nil
}

// Summary represents a summary of stats for a stat type.
type Summary struct {
	StatType      StatType
	TotalRequests int64
	TotalErrors   int64
	AvgMs         float64
	MinMs         int64
	MaxMs         int64
	FirstBucket   time.Time
	LastBucket    time.Time
}

// GetSummary returns a summary of stats for each stat type in the given range.
// The health endpoint exposes this for operational checks.
func (s *Store) GetSummary(ctx context.Context, startTime, endTime time.Time) ([]Summary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"bucket": bson.M{
				"$gte": startTime.UTC(),
				"$lte": endTime.UTC(),
			},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":          "$stat_type",
			"requests":     bson.M{"$sum": "$requests"},
			"errors":       bson.M{"$sum": "$errors"},
			"total_ms":     bson.M{"$sum": "$total_ms"},
			"min_ms":       bson.M{"$min": "$min_ms"},
			"max_ms":       bson.M{"$max": "$max_ms"},
			"first_bucket": bson.M{"$min": "$bucket"},
			"last_bucket":  bson.M{"$max": "$bucket"},
		}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}

	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var summaries []Summary
	for cur.Next(ctx) {
		var doc struct {
			ID          string    `bson:"_id"`
			Requests    int64     `bson:"requests"`
			Errors      int64     `bson:"errors"`
			TotalMs     int64     `bson:"total_ms"`
			MinMs       int64     `bson:"min_ms"`
			MaxMs       int64     `bson:"max_ms"`
			FirstBucket time.Time `bson:"first_bucket"`
			LastBucket  time.Time `bson:"last_bucket"`
		}
		if err := cur.Decode(&doc); err != nil {
			continue
		}

		avgMs := float64(0)
		if doc.Requests > 0 {
			avgMs = float64(doc.TotalMs) / float64(doc.Requests)
		}

		summaries = append(summaries, Summary{
			StatType:      StatType(doc.ID),
			TotalRequests: doc.Requests,
			TotalErrors:   doc.Errors,
			AvgMs:         avgMs,
			MinMs:         doc.MinMs,
			MaxMs:         doc.MaxMs,
			FirstBucket:   doc.FirstBucket,
			LastBucket:    doc.LastBucket,
		})
	}

	return summaries, nil
}

// DeleteOlderThan deletes stats older than the cutoff time. The retention
// job runs this on an interval.
func (s *Store) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.c.DeleteMany(ctx, bson.M{
		"bucket": bson.M{"$lt": cutoff.UTC()},
	})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}
