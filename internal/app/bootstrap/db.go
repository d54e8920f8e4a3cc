// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/pocketwell/pocketwell/internal/app/store/users"
	"github.com/pocketwell/pocketwell/internal/app/system/emotion"
	"github.com/pocketwell/pocketwell/internal/app/system/identity"
	"github.com/pocketwell/pocketwell/internal/app/system/indexes"
	"github.com/pocketwell/pocketwell/internal/app/system/validators"
	"go.uber.org/zap"
)

// ConnectDB connects to databases and other backends.
//
// WAFFLE calls this after configuration is loaded but before EnsureSchema
// and Startup. Everything that needs a live connection or external client
// is built here and carried through DBDeps.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	// Configure MongoDB connection pool
	poolCfg := wafflemongo.DefaultPoolConfig()
	if appCfg.MongoMaxPoolSize > 0 {
		poolCfg.MaxPoolSize = appCfg.MongoMaxPoolSize
	}
	if appCfg.MongoMinPoolSize > 0 {
		poolCfg.MinPoolSize = appCfg.MongoMinPoolSize
	}

	client, err := wafflemongo.ConnectWithPool(ctx, appCfg.MongoURI, appCfg.MongoDatabase, poolCfg)
	if err != nil {
		return DBDeps{}, err
	}

	db := client.Database(appCfg.MongoDatabase)

	logger.Info("connected to MongoDB",
		zap.String("database", appCfg.MongoDatabase),
		zap.Uint64("max_pool_size", poolCfg.MaxPoolSize),
		zap.Uint64("min_pool_size", poolCfg.MinPoolSize),
	)

	// Initialize file storage
	var store storage.Store
	switch appCfg.StorageType {
	case "s3":
		store, err = storage.NewS3(ctx, storage.S3Config{
			Region:                   appCfg.StorageS3Region,
			Bucket:                   appCfg.StorageS3Bucket,
			Prefix:                   appCfg.StorageS3Prefix,
			CloudFrontURL:            appCfg.StorageCFURL,
			CloudFrontKeyPairID:      appCfg.StorageCFKeyPairID,
			CloudFrontPrivateKeyPath: appCfg.StorageCFKeyPath,
		})
		if err != nil {
			return DBDeps{}, fmt.Errorf("failed to initialize S3 storage: %w", err)
		}
		logger.Info("initialized S3/CloudFront file storage",
			zap.String("bucket", appCfg.StorageS3Bucket),
			zap.String("prefix", appCfg.StorageS3Prefix),
		)
	case "local", "":
		store, err = storage.NewLocal(storage.LocalConfig{
			BasePath: appCfg.StorageLocalPath,
			BaseURL:  appCfg.StorageLocalURL,
		})
		if err != nil {
			return DBDeps{}, fmt.Errorf("failed to initialize local storage: %w", err)
		}
		logger.Info("initialized local file storage",
			zap.String("path", appCfg.StorageLocalPath),
			zap.String("url", appCfg.StorageLocalURL),
		)
	default:
		return DBDeps{}, fmt.Errorf("unknown storage type: %s", appCfg.StorageType)
	}

	// Initialize emotion annotation client
	emotions := emotion.New(emotion.Config{
		BaseURL: appCfg.EmotionServiceURL,
		Timeout: appCfg.EmotionTimeout,
	}, logger)
	if emotions.Enabled() {
		logger.Info("emotion annotation enabled", zap.String("url", appCfg.EmotionServiceURL))
	} else {
		logger.Info("emotion annotation disabled")
	}

	// Initialize identity provider
	var provider identity.Provider
	switch appCfg.IdentityMode {
	case "remote":
		provider = identity.NewRemote(identity.RemoteConfig{
			BaseURL: appCfg.IdentityBaseURL,
			APIKey:  appCfg.IdentityAPIKey,
		}, logger)
		logger.Info("using remote identity provider", zap.String("url", appCfg.IdentityBaseURL))
	case "local", "":
		provider, err = identity.NewLocal(users.New(db), appCfg.TokenSigningKey, appCfg.TokenTTL, logger)
		if err != nil {
			return DBDeps{}, fmt.Errorf("failed to initialize local identity provider: %w", err)
		}
		logger.Info("using local identity provider")
	default:
		return DBDeps{}, fmt.Errorf("unknown identity mode: %s", appCfg.IdentityMode)
	}

	// Reference timezone; validated in ValidateConfig
	loc, err := time.LoadLocation(appCfg.Timezone)
	if err != nil {
		return DBDeps{}, fmt.Errorf("load timezone %q: %w", appCfg.Timezone, err)
	}

	return DBDeps{
		MongoClient:   client,
		MongoDatabase: db,
		FileStorage:   store,
		Emotions:      emotions,
		Identity:      provider,
		Location:      loc,
	}, nil
}

// EnsureSchema sets up indexes as needed.
//
// This runs after ConnectDB succeeds but before Startup and before the HTTP
// handler is built. The context has a timeout based on coreCfg.IndexBootTimeout.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	// Ensure collections exist and attach JSON-Schema validators.
	// This runs first so indexes can be created on existing collections.
	logger.Info("ensuring collections and validators")
	if err := validators.EnsureAll(ctx, deps.MongoDatabase); err != nil {
		logger.Error("failed to ensure validators", zap.Error(err))
		return err
	}

	logger.Info("ensuring database indexes")
	if err := indexes.EnsureAll(ctx, deps.MongoDatabase); err != nil {
		logger.Error("failed to ensure indexes", zap.Error(err))
		return err
	}

	logger.Info("database schema ensured successfully")
	return nil
}
