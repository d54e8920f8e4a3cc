package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/pocketwell/pocketwell/internal/app/system/auth"
	"github.com/pocketwell/pocketwell/internal/app/store/users"
	"github.com/pocketwell/pocketwell/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// tokenName labels the HMAC payload; changing it invalidates every issued
// token.
const tokenName = "pocketwell-token"

// DefaultTokenTTL matches the remote provider's one hour idToken lifetime.
const DefaultTokenTTL = time.Hour

// Local implements Provider with bcrypt hashes in the users collection and
// self-issued HMAC tokens.
type Local struct {
	users    *users.Store
	codec    *securecookie.SecureCookie
	tokenTTL time.Duration
	logger   *zap.Logger
}

// tokenPayload is what gets signed into a bearer token.
type tokenPayload struct {
	UID      string
	IssuedAt int64 // unix milliseconds, matching Mongo's time resolution
}

// NewLocal creates the local provider. signingKey must be at least 32
// characters; startup fails otherwise rather than issuing forgeable tokens.
func NewLocal(store *users.Store, signingKey string, tokenTTL time.Duration, logger *zap.Logger) (*Local, error) {
	if len(signingKey) < 32 {
		return nil, fmt.Errorf("identity: signing key must be at least 32 chars, got %d", len(signingKey))
	}
	if tokenTTL <= 0 {
		tokenTTL = DefaultTokenTTL
	}

	codec := securecookie.New([]byte(signingKey), nil)
	codec.MaxAge(int(tokenTTL.Seconds()))

	return &Local{
		users:    store,
		codec:    codec,
		tokenTTL: tokenTTL,
		logger:   logger,
	}, nil
}

// Register creates the account document with a bcrypt hash and returns a
// fresh session.
func (p *Local) Register(ctx context.Context, email, password string) (*Session, error) {
	if len(password) < MinPasswordLen {
		return nil, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("identity: hash password: %w", err)
	}

	uid := uuid.NewString()
	u, err := p.users.Create(ctx, models.User{
		UID:         uid,
		Email:       email,
		Credentials: &models.Credentials{PasswordHash: hash},
	})
	if err != nil {
		if errors.Is(err, users.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	return p.mint(uid, u.Email)
}

// Login checks the bcrypt hash and returns a fresh session.
func (p *Local) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := p.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if u.Credentials == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(u.Credentials.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return p.mint(u.UID, u.Email)
}

// Logout revokes every outstanding token by bumping tokens_valid_after.
func (p *Local) Logout(ctx context.Context, uid string) error {
	return p.users.RevokeTokens(ctx, uid, time.Now())
}

// Verify decodes the token, checks expiry and revocation, and returns the
// uid.
func (p *Local) Verify(ctx context.Context, token string) (string, error) {
	var payload tokenPayload
	if err := p.codec.Decode(tokenName, token, &payload); err != nil {
		return "", auth.ErrInvalidToken
	}

	issued := time.UnixMilli(payload.IssuedAt)
	if time.Since(issued) > p.tokenTTL {
		return "", auth.ErrInvalidToken
	}

	u, err := p.users.GetByUID(ctx, payload.UID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return "", auth.ErrInvalidToken
		}
		return "", err
	}
	if u.Credentials != nil && payload.IssuedAt < u.Credentials.TokensValidAfter.UnixMilli() {
		// Issued before the last logout; revoked.
		return "", auth.ErrInvalidToken
	}
	return payload.UID, nil
}

func (p *Local) mint(uid, email string) (*Session, error) {
	token, err := p.codec.Encode(tokenName, tokenPayload{
		UID:      uid,
		IssuedAt: time.Now().UnixMilli(),
	})
	if err != nil {
		return nil, fmt.Errorf("identity: encode token: %w", err)
	}
	return &Session{
		UID:       uid,
		Email:     email,
		Token:     token,
		ExpiresIn: p.tokenTTL,
	}, nil
}
