// internal/app/system/tasks/runner.go

// Package tasks schedules the service's recurring background work. Two jobs
// are registered at startup: the journal emotion backfill and the API stat
// retention sweep. Each runs in its own goroutine, firing once immediately
// and then on its interval, until Stop is called during shutdown.
package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultInterval is applied to jobs registered without an interval of
// their own. The emotion backfill uses it.
const DefaultInterval = time.Hour

// Job is one recurring unit of background work. Run receives a context that
// is cancelled when the runner stops; long passes should check it between
// items.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Runner owns the background jobs for the process lifetime. Register every
// job, call Start once the stores are ready, and Stop during shutdown.
type Runner struct {
	logger *zap.Logger
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	jobs     []Job
	inFlight map[string]time.Time // job name to start of the active run
}

// New creates a runner with no jobs registered.
func New(logger *zap.Logger) *Runner {
	return &Runner{
		logger:   logger,
		inFlight: make(map[string]time.Time),
	}
}

// Register adds a job. A zero Interval becomes DefaultInterval. Register
// must not be called after Start.
func (r *Runner) Register(job Job) {
	if job.Interval <= 0 {
		job.Interval = DefaultInterval
	}
	r.mu.Lock()
	r.jobs = append(r.jobs, job)
	r.mu.Unlock()
}

// Start launches one goroutine per registered job. Every job fires right
// away so a restart never delays the backfill by a full interval.
func (r *Runner) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel

	names := make([]string, 0, len(r.jobs))
	for _, job := range r.jobs {
		names = append(names, job.Name)
		r.wg.Add(1)
		go r.loop(ctx, job)
	}
	r.logger.Info("background jobs started", zap.Strings("jobs", names))
}

// Stop cancels the job contexts and waits for in-flight runs to return.
// When ctx expires first, the stuck runs are logged with how long they have
// been going and ctx.Err() is returned.
func (r *Runner) Stop(ctx context.Context) error {
	if r.cancel != nil {
		r.cancel()
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("background jobs stopped")
		return nil
	case <-ctx.Done():
		r.mu.Lock()
		for name, started := range r.inFlight {
			r.logger.Warn("background job still running at shutdown",
				zap.String("job", name),
				zap.Duration("elapsed", time.Since(started)))
		}
		r.mu.Unlock()
		return ctx.Err()
	}
}

// RunOnce runs the named job immediately, outside its schedule. Used by
// tests and manual maintenance.
func (r *Runner) RunOnce(ctx context.Context, name string) error {
	r.mu.Lock()
	var run func(context.Context) error
	for _, job := range r.jobs {
		if job.Name == name {
			run = job.Run
			break
		}
	}
	r.mu.Unlock()

	if run == nil {
		return fmt.Errorf("tasks: no job named %q", name)
	}
	return run(ctx)
}

func (r *Runner) loop(ctx context.Context, job Job) {
	defer r.wg.Done()

	r.run(ctx, job)

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.run(ctx, job)
		}
	}
}

func (r *Runner) run(ctx context.Context, job Job) {
	r.mu.Lock()
	r.inFlight[job.Name] = time.Now()
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		delete(r.inFlight, job.Name)
		r.mu.Unlock()
	}()

	start := time.Now()
	err := job.Run(ctx)
	switch {
	case err == nil:
		r.logger.Debug("background job finished",
			zap.String("job", job.Name),
			zap.Duration("took", time.Since(start)))
	case ctx.Err() != nil:
		// Shutdown interrupted the run; not a failure.
		r.logger.Debug("background job interrupted by shutdown",
			zap.String("job", job.Name))
	default:
		r.logger.Error("background job failed",
			zap.String("job", job.Name),
			zap.Duration("took", time.Since(start)),
			zap.Error(err))
	}
}
