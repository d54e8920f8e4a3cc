package tasks_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pocketwell/pocketwell/internal/app/system/tasks"
	"go.uber.org/zap"
)

func TestRunnerRunsRegisteredJobs(t *testing.T) {
	runner := tasks.New(zap.NewNop())

	ran := map[string]chan struct{}{
		"backfill": make(chan struct{}, 1),
		"sweep":    make(chan struct{}, 1),
	}
	for name, ch := range ran {
		runner.Register(tasks.Job{
			// Interval left zero on purpose; the default applies and the
			// first run still fires immediately.
			Name: name,
			Run: func(ctx context.Context) error {
				select {
				case ch <- struct{}{}:
				default:
				}
				return nil
			},
		})
	}

	runner.Start()
	for name, ch := range ran {
		select {
		case <-ch:
		case <-time.After(2 * time.Second):
			t.Fatalf("job %s never ran", name)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := runner.Stop(ctx); err != nil {
		t.Errorf("stop: %v", err)
	}
}

func TestRunnerStopCancelsJobContext(t *testing.T) {
	runner := tasks.New(zap.NewNop())

	cancelled := make(chan struct{})
	runner.Register(tasks.Job{
		Name:     "waiter",
		Interval: time.Hour,
		Run: func(ctx context.Context) error {
			<-ctx.Done()
			close(cancelled)
			return ctx.Err()
		},
	})

	runner.Start()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := runner.Stop(ctx); err != nil {
		t.Errorf("stop: %v", err)
	}

	select {
	case <-cancelled:
	default:
		t.Error("job context was never cancelled")
	}
}

func TestRunnerStopTimesOutOnStuckJob(t *testing.T) {
	runner := tasks.New(zap.NewNop())

	started := make(chan struct{})
	release := make(chan struct{})
	runner.Register(tasks.Job{
		Name:     "stuck",
		Interval: time.Hour,
		Run: func(ctx context.Context) error {
			close(started)
			// Ignores ctx on purpose; Stop has to give up on it.
			<-release
			return nil
		},
	})

	runner.Start()
	<-started
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := runner.Stop(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("stop: got %v, want deadline exceeded", err)
	}
}

func TestRunnerRunOnce(t *testing.T) {
	runner := tasks.New(zap.NewNop())

	var calls int
	runner.Register(tasks.Job{
		Name:     "manual",
		Interval: time.Hour,
		Run: func(ctx context.Context) error {
			calls++
			return nil
		},
	})

	t.Run("runs the named job without starting the runner", func(t *testing.T) {
		if err := runner.RunOnce(context.Background(), "manual"); err != nil {
			t.Fatalf("run once: %v", err)
		}
		if calls != 1 {
			t.Errorf("calls: got %d, want 1", calls)
		}
	})

	t.Run("unknown name is an error", func(t *testing.T) {
		if err := runner.RunOnce(context.Background(), "no-such-job"); err == nil {
			t.Error("expected an error for an unregistered job")
		}
	})
}
