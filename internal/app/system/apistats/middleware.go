// Package apistats provides middleware for tracking API request statistics.
package apistats

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/pocketwell/pocketwell/internal/app/store/apistats"
	"go.uber.org/zap"
)

// Recorder provides methods to record API statistics.
// It can be shared across handlers and supports dynamic bucket duration changes.
type Recorder struct {
	store          *apistats.Store
	logger         *zap.Logger
	bucketDuration time.Duration
	mu             sync.RWMutex
}

// NewRecorder creates a new API stats recorder.
func NewRecorder(store *apistats.Store, logger *zap.Logger, defaultBucketDuration time.Duration) *Recorder {
	return &Recorder{
		store:          store,
		logger:         logger,
		bucketDuration: defaultBucketDuration,
	}
}

// SetBucketDuration updates the bucket duration for new recordings.
// This is safe to call concurrently.
func (r *Recorder) SetBucketDuration(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bucketDuration = d
}

// Record records a single API request's statistics asynchronously.
func (r *Recorder) Record(statType apistats.StatType, durationMs int64, isError bool) {
	r.mu.RLock()
	bucketDuration := r.bucketDuration
	r.mu.RUnlock()

	// Record asynchronously to not block the response.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := r.store.Record(ctx, statType, bucketDuration, durationMs, isError); err != nil {
			r.logger.Error("failed to record API stats",
				zap.String("stat_type", string(statType)),
				zap.Error(err),
			)
		}
	}()
}

// Middleware returns HTTP middleware that records statistics for one stat
// type using a shared recorder. A nil recorder disables recording, which
// tests rely on.
func Middleware(recorder *Recorder, statType apistats.StatType) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if recorder == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := &responseWrapper{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(wrapped, r)

			durationMs := time.Since(start).Milliseconds()
			recorder.Record(statType, durationMs, wrapped.statusCode >= 400)
		})
	}
}

// responseWrapper wraps http.ResponseWriter to capture the status code.
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWrapper) Write(b []byte) (int, error) {
	return rw.ResponseWriter.Write(b)
}

// Flush implements http.Flusher.
func (rw *responseWrapper) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
