// Package auth provides Bearer-token authentication for the mobile API.
//
// Every habit endpoint runs behind RequireUser: the middleware extracts the
// token from "Authorization: Bearer <token>", asks the configured Verifier
// for the subject it belongs to, and injects that uid into the request
// context. Handlers read it back with UID.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/pocketwell/pocketwell/internal/app/system/jsonutil"
	"go.uber.org/zap"
)

// ErrInvalidToken is returned by Verifier implementations when a token is
// malformed, expired, or revoked.
var ErrInvalidToken = errors.New("invalid or expired token")

// Verifier validates an access token and resolves it to a user id.
// The identity package provides implementations for both remote and local
// modes.
type Verifier interface {
	Verify(ctx context.Context, token string) (uid string, err error)
}

type ctxKey string

const uidKey ctxKey = "uid"

// UID returns the authenticated user id and a "found?" flag from the
// request context.
func UID(r *http.Request) (string, bool) {
	uid, ok := r.Context().Value(uidKey).(string)
	return uid, ok && uid != ""
}

func withUID(r *http.Request, uid string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), uidKey, uid))
}

// WithTestUser injects a uid into the request context for testing.
func WithTestUser(r *http.Request, uid string) *http.Request {
	return withUID(r, uid)
}

// BearerToken extracts the token from the Authorization header, or "" when
// the header is missing or not a Bearer scheme.
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// RequireUser returns middleware that authenticates every request with the
// given verifier. Requests without a valid token get a 401 envelope.
func RequireUser(v Verifier, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Tests inject a uid directly and skip verification.
			if _, ok := UID(r); ok {
				next.ServeHTTP(w, r)
				return
			}

			token := BearerToken(r)
			if token == "" {
				logger.Debug("request rejected: missing bearer token",
					zap.String("path", r.URL.Path),
				)
				jsonutil.Unauthorized(w, "missing or malformed Authorization header")
				return
			}

			uid, err := v.Verify(r.Context(), token)
			if err != nil {
				if errors.Is(err, ErrInvalidToken) {
					logger.Debug("request rejected: invalid token",
						zap.String("path", r.URL.Path),
					)
					jsonutil.Unauthorized(w, "invalid or expired token")
					return
				}
				logger.Error("token verification failed",
					zap.String("path", r.URL.Path),
					zap.Error(err),
				)
				jsonutil.InternalError(w, "could not verify token")
				return
			}

			next.ServeHTTP(w, withUID(r, uid))
		})
	}
}
