// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"time"

	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/pocketwell/pocketwell/internal/app/system/emotion"
	"github.com/pocketwell/pocketwell/internal/app/system/identity"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database and backend dependencies for this WAFFLE app.
//
// This struct is created in ConnectDB and passed to subsequent lifecycle
// hooks: EnsureSchema, Startup, BuildHandler, and Shutdown. The Shutdown
// hook is responsible for closing these connections gracefully.
type DBDeps struct {
	// MongoDB client and database
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// FileStorage for photo and profile image uploads
	FileStorage storage.Store

	// Emotions is the caption annotation sidecar client
	Emotions *emotion.Client

	// Identity is the account authentication provider (local or remote)
	Identity identity.Provider

	// Location is the reference timezone for calendar-day boundaries
	Location *time.Location
}
