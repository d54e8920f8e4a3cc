// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"github.com/pocketwell/pocketwell/internal/app/store/apistats"
	"github.com/pocketwell/pocketwell/internal/app/store/photos"
	"github.com/pocketwell/pocketwell/internal/app/system/tasks"
	"github.com/pocketwell/pocketwell/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Startup runs once after DB connections and schema/index setup are
// complete, but before the HTTP handler is built and requests are served.
//
// Returning a non-nil error aborts startup and prevents the server from
// starting. The context will be cancelled if the process is asked to shut
// down while Startup is running.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	// Apply POCKETWELL_TIMEOUT_* overrides to the shared DB timeouts.
	if n := timeouts.ConfigureFromEnv(); n > 0 {
		logger.Info("applied timeout overrides from environment", zap.Int("count", n))
	}

	startTaskRunner(appCfg, deps, logger)

	return nil
}

// taskRunner is the global task runner instance, used for graceful shutdown.
var taskRunner *tasks.Runner

// startTaskRunner initializes and starts the background task runner.
func startTaskRunner(appCfg AppConfig, deps DBDeps, logger *zap.Logger) {
	taskRunner = tasks.New(logger)

	// Fill in emotions for photos saved while the annotation sidecar was
	// down. A no-op when annotation is disabled.
	taskRunner.Register(tasks.EmotionBackfillJob(
		photos.New(deps.MongoDatabase),
		deps.Emotions,
		logger,
		appCfg.EmotionBackfillDays,
	))

	// Prune old API stat buckets.
	taskRunner.Register(tasks.APIStatsRetentionJob(
		apistats.New(deps.MongoDatabase),
		logger,
		appCfg.APIStatsRetention,
	))

	taskRunner.Start()
}
