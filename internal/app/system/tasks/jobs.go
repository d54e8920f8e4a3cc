// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"time"

	"github.com/pocketwell/pocketwell/internal/app/store/apistats"
	"github.com/pocketwell/pocketwell/internal/app/store/photos"
	"github.com/pocketwell/pocketwell/internal/app/system/emotion"
	"github.com/pocketwell/pocketwell/internal/datekey"
	"go.uber.org/zap"
)

// retentionInterval spaces out retention sweeps. Stat buckets accumulate a
// handful of documents per day, so once a day is plenty.
const retentionInterval = 24 * time.Hour

// EmotionBackfillJob classifies journal captions that were saved while the
// emotion service was down. Each pass walks every user's journal dates from
// the lookback window forward and fills in records that carry a caption but
// no emotion. A pass that finds the service still down gives up quietly and
// retries on the next tick, which comes every DefaultInterval.
func EmotionBackfillJob(store *photos.Store, client *emotion.Client, logger *zap.Logger, lookbackDays int) Job {
	if lookbackDays <= 0 {
		lookbackDays = 7
	}
	return Job{
		Name: "emotion-backfill",
		Run: func(ctx context.Context) error {
			if !client.Enabled() {
				return nil
			}

			since := datekey.FromTime(time.Now().AddDate(0, 0, -lookbackDays), time.UTC)
			uids, err := store.UIDs(ctx)
			if err != nil {
				return err
			}

			var filled int
			for _, uid := range uids {
				dates, err := store.Dates(ctx, uid, since)
				if err != nil {
					return err
				}
				for _, date := range dates {
					if ctx.Err() != nil {
						return ctx.Err()
					}
					rec, err := store.Get(ctx, uid, date)
					if err != nil {
						continue
					}
					if rec.Emotion != "" || rec.Caption == "" {
						continue
					}
					result, err := client.Classify(ctx, rec.Caption)
					if err != nil {
						// Service still down; stop and retry next interval.
						logger.Debug("emotion backfill paused",
							zap.Error(err))
						return nil
					}
					if result == "" {
						continue
					}
					if err := store.SetEmotion(ctx, uid, date, result); err != nil {
						logger.Warn("emotion backfill write failed",
							zap.String("date", string(date)),
							zap.Error(err))
						continue
					}
					filled++
				}
			}

			if filled > 0 {
				logger.Info("backfilled journal emotions",
					zap.Int("count", filled))
			}
			return nil
		},
	}
}

// APIStatsRetentionJob prunes API stat buckets older than the retention
// window, 90 days when none is configured.
func APIStatsRetentionJob(store *apistats.Store, logger *zap.Logger, retention time.Duration) Job {
	if retention <= 0 {
		retention = 90 * 24 * time.Hour
	}
	return Job{
		Name:     "apistats-retention",
		Interval: retentionInterval,
		Run: func(ctx context.Context) error {
			cutoff := time.Now().Add(-retention)
			deleted, err := store.DeleteOlderThan(ctx, cutoff)
			if err != nil {
				return err
			}
			if deleted > 0 {
				logger.Info("pruned old API stat buckets",
					zap.Int64("deleted", deleted))
			}
			return nil
		},
	}
}
