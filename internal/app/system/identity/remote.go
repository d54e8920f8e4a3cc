package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pocketwell/pocketwell/internal/app/system/auth"
	"go.uber.org/zap"
)

// RemoteConfig configures the Identity Toolkit backed provider.
type RemoteConfig struct {
	// BaseURL of the Identity Toolkit API, e.g.
	// "https://identitytoolkit.googleapis.com". No trailing slash.
	BaseURL string
	// APIKey is appended as the key query parameter on every call.
	APIKey string
	// Timeout per provider call. Defaults to 10s.
	Timeout time.Duration
}

// Remote implements Provider against an Identity Toolkit REST endpoint.
type Remote struct {
	cfg    RemoteConfig
	client *http.Client
	logger *zap.Logger
}

// NewRemote creates the remote provider.
func NewRemote(cfg RemoteConfig, logger *zap.Logger) *Remote {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Remote{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

type remoteSession struct {
	LocalID   string `json:"localId"`
	Email     string `json:"email"`
	IDToken   string `json:"idToken"`
	ExpiresIn string `json:"expiresIn"` // seconds, as a string
}

func (s *remoteSession) session() *Session {
	secs, _ := strconv.Atoi(s.ExpiresIn)
	return &Session{
		UID:       s.LocalID,
		Email:     s.Email,
		Token:     s.IDToken,
		ExpiresIn: time.Duration(secs) * time.Second,
	}
}

// Register creates an account via accounts:signUp.
func (p *Remote) Register(ctx context.Context, email, password string) (*Session, error) {
	var out remoteSession
	err := p.call(ctx, "accounts:signUp", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.session(), nil
}

// Login checks credentials via accounts:signInWithPassword.
func (p *Remote) Login(ctx context.Context, email, password string) (*Session, error) {
	var out remoteSession
	err := p.call(ctx, "accounts:signInWithPassword", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.session(), nil
}

// Logout revokes the user's outstanding tokens by bumping validSince.
func (p *Remote) Logout(ctx context.Context, uid string) error {
	return p.call(ctx, "accounts:update", map[string]any{
		"localId":    uid,
		"validSince": strconv.FormatInt(time.Now().Unix(), 10),
	}, &struct{}{})
}

// Verify resolves an idToken to its uid via accounts:lookup.
func (p *Remote) Verify(ctx context.Context, token string) (string, error) {
	var out struct {
		Users []struct {
			LocalID string `json:"localId"`
		} `json:"users"`
	}
	if err := p.call(ctx, "accounts:lookup", map[string]any{"idToken": token}, &out); err != nil {
		return "", err
	}
	if len(out.Users) == 0 {
		return "", auth.ErrInvalidToken
	}
	return out.Users[0].LocalID, nil
}

func (p *Remote) call(ctx context.Context, endpoint string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("identity: marshal %s request: %w", endpoint, err)
	}

	url := p.cfg.BaseURL + "/v1/" + endpoint + "?key=" + p.cfg.APIKey
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("identity: build %s request: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("identity: %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		p.logger.Debug("identity call rejected",
			zap.String("endpoint", endpoint),
			zap.Int("status", resp.StatusCode),
			zap.String("code", apiErr.Error.Message),
		)
		return mapRemoteError(apiErr.Error.Message, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("identity: decode %s response: %w", endpoint, err)
	}
	return nil
}

// mapRemoteError translates Identity Toolkit error codes to the package's
// sentinel errors.
func mapRemoteError(code string, status int) error {
	switch {
	case code == "EMAIL_EXISTS":
		return ErrEmailTaken
	case strings.HasPrefix(code, "WEAK_PASSWORD"):
		return ErrWeakPassword
	case code == "EMAIL_NOT_FOUND", code == "INVALID_PASSWORD", code == "INVALID_LOGIN_CREDENTIALS":
		return ErrInvalidCredentials
	case code == "INVALID_ID_TOKEN", code == "USER_NOT_FOUND", code == "TOKEN_EXPIRED", code == "USER_DISABLED":
		return auth.ErrInvalidToken
	default:
		return fmt.Errorf("identity: provider error %q (status %d)", code, status)
	}
}
