// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Default habit targets applied at registration. The mobile app shows
// progress as value/target, so a fresh account needs non-zero targets.
const (
	DefaultWaterTarget = 8
	DefaultStepsTarget = 10000
)

// Valid target bounds enforced on the settings endpoints.
const (
	WaterTargetMin = 1
	WaterTargetMax = 20
	StepsTargetMin = 1000
	StepsTargetMax = 50000
)

// User represents one account of the wellness app.
//
// UID is the identity-provider subject and the partition key for every
// habit collection; it is distinct from the Mongo ObjectID.
type User struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	UID         string             `bson:"uid" json:"uid"`
	Email       string             `bson:"email" json:"email"`
	DisplayName string             `bson:"display_name" json:"displayName"`
	PhotoURL    string             `bson:"photo_url" json:"photoURL"`

	WaterTarget int `bson:"water_target" json:"waterTarget"`
	StepsTarget int `bson:"steps_target" json:"stepsTarget"`

	// Credentials is populated only in local identity mode; remote mode
	// keeps passwords with the external provider.
	Credentials *Credentials `bson:"credentials,omitempty" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// Credentials holds local-mode authentication state.
type Credentials struct {
	PasswordHash []byte `bson:"password_hash" json:"-"`
	// TokensValidAfter invalidates every token issued before it.
	// Logout bumps it to "now", revoking all devices at once.
	TokensValidAfter time.Time `bson:"tokens_valid_after" json:"-"`
}

// ValidWaterTarget reports whether n is an acceptable daily glass target.
func ValidWaterTarget(n int) bool { return n >= WaterTargetMin && n <= WaterTargetMax }

// ValidStepsTarget reports whether n is an acceptable daily step target.
func ValidStepsTarget(n int) bool { return n >= StepsTargetMin && n <= StepsTargetMax }
