// Package habits provides the habit tracking API: daily water and step
// counters, the photo-of-the-day journal, per-user targets and the
// weekly/monthly analytics reports.
//
// Endpoints (mounted at /habit, Bearer token required):
//   - POST /habit/water/add            - add one glass to today
//   - GET  /habit/water/today          - today's count and target
//   - POST /habit/steps/add            - report today's step total
//   - PUT  /habit/water/settings       - set daily glass target
//   - PUT  /habit/steps/settings       - set daily step target
//   - GET  /habit/settings             - both targets
//   - POST /habit/photo-of-the-day     - upload today's photo
//   - GET  /habit/photo-of-the-day/today
//   - GET  /habit/photo-of-the-day/history
//   - GET  /habit/analytics/{range}    - weekly or monthly report
package habits

import (
	"time"

	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/pocketwell/pocketwell/internal/app/store/buckets"
	"github.com/pocketwell/pocketwell/internal/app/store/photos"
	"github.com/pocketwell/pocketwell/internal/app/store/users"
	"github.com/pocketwell/pocketwell/internal/app/system/emotion"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler handles habit tracking API requests.
type Handler struct {
	water    *buckets.Store
	steps    *buckets.Store
	photos   *photos.Store
	users    *users.Store
	blobs    storage.Store
	emotions *emotion.Client
	engine   *Engine

	// loc is the reference timezone that decides where "today" starts.
	loc    *time.Location
	logger *zap.Logger
}

// NewHandler creates a new habits handler.
func NewHandler(db *mongo.Database, blobs storage.Store, emotions *emotion.Client, loc *time.Location, logger *zap.Logger) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	water := buckets.NewWater(db)
	steps := buckets.NewSteps(db)
	photoStore := photos.New(db)
	return &Handler{
		water:    water,
		steps:    steps,
		photos:   photoStore,
		users:    users.New(db),
		blobs:    blobs,
		emotions: emotions,
		engine:   NewEngine(water, steps, photoStore),
		loc:      loc,
		logger:   logger,
	}
}
