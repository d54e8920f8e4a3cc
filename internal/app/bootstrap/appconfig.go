// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like HTTP/HTTPS
// ports, TLS, logging level and format, CORS, and request size limits.
// AppConfig is where everything specific to this service lives.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Maximum connections in pool (default: 100)
	MongoMinPoolSize uint64 // Minimum connections to keep warm (default: 10)

	// Identity provider configuration.
	// "remote" proxies an Identity-Toolkit-style REST API; "local" keeps
	// bcrypt hashes in the users collection and mints its own tokens.
	IdentityMode    string
	IdentityBaseURL string        // remote mode: identity API base URL
	IdentityAPIKey  string        // remote mode: identity API key
	TokenSigningKey string        // local mode: HMAC signing key (32+ chars)
	TokenTTL        time.Duration // local mode: issued token lifetime

	// Emotion annotation sidecar. Empty URL disables annotation; photos
	// are then stored without emotions and analytics omit the summary.
	EmotionServiceURL   string
	EmotionTimeout      time.Duration // per-call timeout (default: 10s)
	EmotionBackfillDays int           // how far back the backfill job scans

	// Timezone is the reference timezone that decides where a calendar
	// day starts for every user (e.g., "America/Chicago", "UTC").
	Timezone string

	// File storage configuration
	StorageType      string // Storage backend: "local" or "s3"
	StorageLocalPath string // Local storage path (e.g., "./uploads")
	StorageLocalURL  string // URL prefix for serving local files (e.g., "/files")

	// S3/CloudFront configuration (only used if StorageType is "s3")
	StorageS3Region    string // AWS region
	StorageS3Bucket    string // S3 bucket name
	StorageS3Prefix    string // Key prefix (e.g., "uploads/")
	StorageCFURL       string // CloudFront distribution URL
	StorageCFKeyPairID string // CloudFront key pair ID
	StorageCFKeyPath   string // Path to CloudFront private key file

	// API stats configuration
	APIStatsBucket    time.Duration // bucket duration for request statistics
	APIStatsRetention time.Duration // how long stat buckets are kept
}
