// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/middleware"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	accountfeature "github.com/pocketwell/pocketwell/internal/app/features/account"
	habitsfeature "github.com/pocketwell/pocketwell/internal/app/features/habits"
	healthfeature "github.com/pocketwell/pocketwell/internal/app/features/health"
	apistatsstore "github.com/pocketwell/pocketwell/internal/app/store/apistats"
	userstore "github.com/pocketwell/pocketwell/internal/app/store/users"
	"github.com/pocketwell/pocketwell/internal/app/system/apistats"
	"github.com/pocketwell/pocketwell/internal/app/system/jsonutil"
	"github.com/pocketwell/pocketwell/internal/app/system/requestlog"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. The service is a pure JSON API for the
// mobile app: every response is the {message, data} envelope, authentication
// is Bearer tokens, and there is no server-rendered UI.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// API stats recorder for per-route request statistics.
	apiStatsStore := apistatsstore.New(deps.MongoDatabase)
	apiStatsRecorder := apistats.NewRecorder(apiStatsStore, logger, appCfg.APIStatsBucket)

	r := chi.NewRouter()

	// ─────────────────────────────────────────────────────────────────────
	// Global Middleware (applies to ALL routes)
	// ─────────────────────────────────────────────────────────────────────

	// Request timeout middleware: prevents requests from hanging indefinitely.
	r.Use(chimw.Timeout(30 * time.Second))

	// CORS and security headers from WAFFLE core config.
	r.Use(middleware.CORSFromConfig(coreCfg))
	r.Use(middleware.SecurityHeadersFromConfig(coreCfg))

	// Structured request logging with request ids. Probe endpoints are
	// skipped to keep the log readable.
	r.Use(requestlog.Middleware(logger, "/health", "/ready", "/readyz", "/livez"))

	// ─────────────────────────────────────────────────────────────────────
	// Routes
	// ─────────────────────────────────────────────────────────────────────

	// Account lifecycle: register, login, logout, token check, profile image.
	accountHandler := accountfeature.NewHandler(
		deps.Identity,
		userstore.New(deps.MongoDatabase),
		deps.FileStorage,
		logger,
	)
	r.Mount("/user", accountfeature.Routes(accountHandler, deps.Identity, apiStatsRecorder, logger))

	// Habit tracking: water, steps, photo journal, settings, analytics.
	habitsHandler := habitsfeature.NewHandler(
		deps.MongoDatabase,
		deps.FileStorage,
		deps.Emotions,
		deps.Location,
		logger,
	)
	r.Mount("/habit", habitsfeature.Routes(habitsHandler, deps.Identity, apiStatsRecorder, logger))

	// Health check endpoints for load balancers and orchestrators.
	healthHandler := healthfeature.NewHandler(deps.MongoClient, deps.Emotions, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	healthfeature.MountRootEndpoints(r, healthHandler)

	// Uploaded files (local storage only). S3 mode serves directly from
	// S3/CloudFront via the URLs written into the records.
	if appCfg.StorageType == "local" || appCfg.StorageType == "" {
		r.Handle(appCfg.StorageLocalURL+"/*", fileserver.Handler(appCfg.StorageLocalURL, appCfg.StorageLocalPath))
	}

	// JSON 404 for unmatched routes; the only clients are mobile apps.
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		jsonutil.NotFound(w, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		jsonutil.Error(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r, nil
}
