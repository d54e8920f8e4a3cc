// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"strings"

	"github.com/pocketwell/pocketwell/internal/app/store/apistats"
	"github.com/pocketwell/pocketwell/internal/app/store/buckets"
	"github.com/pocketwell/pocketwell/internal/app/store/photos"
	"github.com/pocketwell/pocketwell/internal/app/store/users"
	"go.mongodb.org/mongo-driver/mongo"
)

/*
EnsureAll is called at startup. Each store's EnsureIndexes is idempotent.
Errors are aggregated so every problem is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := users.New(db).EnsureIndexes(ctx); err != nil {
		problems = append(problems, "users: "+err.Error())
	}
	if err := buckets.NewWater(db).EnsureIndexes(ctx); err != nil {
		problems = append(problems, buckets.WaterCollection+": "+err.Error())
	}
	if err := buckets.NewSteps(db).EnsureIndexes(ctx); err != nil {
		problems = append(problems, buckets.StepsCollection+": "+err.Error())
	}
	if err := photos.New(db).EnsureIndexes(ctx); err != nil {
		problems = append(problems, photos.CollectionName+": "+err.Error())
	}
	if err := apistats.New(db).EnsureIndexes(ctx); err != nil {
		problems = append(problems, apistats.CollectionName+": "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}
