// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// EnvVarPrefix is the prefix for environment variables.
const EnvVarPrefix = "POCKETWELL"

// appConfigKeys defines the configuration keys for this application.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, identity_mode, etc.
//   - Environment variables: POCKETWELL_MONGO_URI, POCKETWELL_IDENTITY_MODE, etc.
//   - Command-line flags: --mongo_uri, --identity_mode, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "pocketwell", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Identity provider
	{Name: "identity_mode", Default: "local", Desc: "Identity provider: 'local' or 'remote'"},
	{Name: "identity_base_url", Default: "", Desc: "Remote identity API base URL (e.g., https://identitytoolkit.googleapis.com)"},
	{Name: "identity_api_key", Default: "", Desc: "Remote identity API key"},
	{Name: "token_signing_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Local token signing key (32+ chars, must be strong in production)"},
	{Name: "token_ttl", Default: "1h", Desc: "Local token lifetime (e.g., 1h, 24h)"},

	// Emotion annotation sidecar
	{Name: "emotion_service_url", Default: "", Desc: "Emotion service base URL (empty disables annotation)"},
	{Name: "emotion_timeout", Default: "10s", Desc: "Emotion service call timeout"},
	{Name: "emotion_backfill_days", Default: 7, Desc: "How many days back the emotion backfill job scans"},

	// Reference timezone for calendar-day boundaries
	{Name: "timezone", Default: "UTC", Desc: "Reference timezone for daily habit windows (IANA name)"},

	// File storage configuration
	{Name: "storage_type", Default: "local", Desc: "Storage backend: 'local' or 's3'"},
	{Name: "storage_local_path", Default: "./uploads", Desc: "Local storage path for uploaded files"},
	{Name: "storage_local_url", Default: "/files", Desc: "URL prefix for serving local files"},

	// S3/CloudFront configuration
	{Name: "storage_s3_region", Default: "", Desc: "AWS region for S3"},
	{Name: "storage_s3_bucket", Default: "", Desc: "S3 bucket name"},
	{Name: "storage_s3_prefix", Default: "uploads/", Desc: "S3 key prefix"},
	{Name: "storage_cf_url", Default: "", Desc: "CloudFront distribution URL"},
	{Name: "storage_cf_keypair_id", Default: "", Desc: "CloudFront key pair ID"},
	{Name: "storage_cf_key_path", Default: "", Desc: "Path to CloudFront private key file"},

	// API stats configuration
	{Name: "api_stats_bucket", Default: "1h", Desc: "API stats bucket duration (e.g., '1m', '15m', '1h', '24h')"},
	{Name: "api_stats_retention", Default: "2160h", Desc: "How long API stat buckets are kept (default: 90 days)"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, POCKETWELL_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, EnvVarPrefix, appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		// Identity
		IdentityMode:    appValues.String("identity_mode"),
		IdentityBaseURL: appValues.String("identity_base_url"),
		IdentityAPIKey:  appValues.String("identity_api_key"),
		TokenSigningKey: appValues.String("token_signing_key"),
		TokenTTL:        appValues.Duration("token_ttl", time.Hour),

		// Emotion sidecar
		EmotionServiceURL:   appValues.String("emotion_service_url"),
		EmotionTimeout:      appValues.Duration("emotion_timeout", 10*time.Second),
		EmotionBackfillDays: appValues.Int("emotion_backfill_days"),

		// Timezone
		Timezone: appValues.String("timezone"),

		// File storage
		StorageType:      appValues.String("storage_type"),
		StorageLocalPath: appValues.String("storage_local_path"),
		StorageLocalURL:  appValues.String("storage_local_url"),

		// S3/CloudFront
		StorageS3Region:    appValues.String("storage_s3_region"),
		StorageS3Bucket:    appValues.String("storage_s3_bucket"),
		StorageS3Prefix:    appValues.String("storage_s3_prefix"),
		StorageCFURL:       appValues.String("storage_cf_url"),
		StorageCFKeyPairID: appValues.String("storage_cf_keypair_id"),
		StorageCFKeyPath:   appValues.String("storage_cf_key_path"),

		// API stats
		APIStatsBucket:    appValues.Duration("api_stats_bucket", time.Hour),
		APIStatsRetention: appValues.Duration("api_stats_retention", 90*24*time.Hour),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	switch appCfg.IdentityMode {
	case "local":
		if len(appCfg.TokenSigningKey) < 32 {
			return fmt.Errorf("token_signing_key must be at least 32 characters in local identity mode")
		}
	case "remote":
		if appCfg.IdentityBaseURL == "" || appCfg.IdentityAPIKey == "" {
			return fmt.Errorf("identity_base_url and identity_api_key are required in remote identity mode")
		}
	default:
		return fmt.Errorf("unknown identity_mode: %s", appCfg.IdentityMode)
	}

	if _, err := time.LoadLocation(appCfg.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", appCfg.Timezone, err)
	}

	return nil
}
