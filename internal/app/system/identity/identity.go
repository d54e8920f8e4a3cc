// Package identity abstracts account authentication behind a Provider.
//
// Two implementations exist:
//
//   - Remote delegates registration, login and token verification to an
//     Identity Toolkit compatible REST endpoint. This is the production
//     mode; the mobile app holds the provider's idToken.
//   - Local keeps bcrypt password hashes in the users collection and mints
//     HMAC-signed tokens itself. Used for development and self-hosted
//     deployments with no external identity service.
//
// Both hand out opaque bearer tokens that the auth middleware verifies on
// every request.
package identity

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrEmailTaken is returned by Register when the email already has an
	// account.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials is returned by Login for a bad email/password
	// pair. Callers must not distinguish which half was wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrWeakPassword is returned by Register when the password does not
	// meet the provider's minimum.
	ErrWeakPassword = errors.New("password must be at least 6 characters")
)

// Session is the result of a successful registration or login.
type Session struct {
	UID       string
	Email     string
	Token     string
	ExpiresIn time.Duration
}

// Provider is the account authentication backend.
type Provider interface {
	// Register creates an account and returns a fresh session.
	Register(ctx context.Context, email, password string) (*Session, error)

	// Login checks credentials and returns a fresh session.
	Login(ctx context.Context, email, password string) (*Session, error)

	// Logout revokes every outstanding token of the user.
	Logout(ctx context.Context, uid string) error

	// Verify resolves a token to its uid. Implements auth.Verifier; it
	// returns auth.ErrInvalidToken for bad, expired or revoked tokens.
	Verify(ctx context.Context, token string) (string, error)
}

// MinPasswordLen matches the Identity Toolkit minimum so local mode behaves
// the same.
const MinPasswordLen = 6
