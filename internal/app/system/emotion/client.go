// Package emotion is the client for the caption emotion service.
//
// The service is a small sidecar that classifies free text into a dominant
// emotion ("joy", "sadness", ...). Photo saves call it best-effort: when the
// service is down or slow the photo is stored without an emotion and the
// backfill job fills it in later.
package emotion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultTimeout bounds one classification call.
const DefaultTimeout = 10 * time.Second

// Config configures the emotion service client.
type Config struct {
	// BaseURL of the service, e.g. "http://emotion:5000". No trailing slash.
	BaseURL string
	// Timeout per call. Defaults to DefaultTimeout.
	Timeout time.Duration
}

// Client calls the emotion service.
type Client struct {
	cfg    Config
	client *http.Client
	logger *zap.Logger
}

// New creates an emotion service client.
func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// Enabled reports whether a service URL is configured. With no URL every
// classification is skipped and photos are stored without emotions.
func (c *Client) Enabled() bool {
	return c.cfg.BaseURL != ""
}

// Classify returns the dominant emotion of a caption in lowercase, or "" for
// an empty caption.
func (c *Client) Classify(ctx context.Context, caption string) (string, error) {
	if strings.TrimSpace(caption) == "" {
		return "", nil
	}
	if !c.Enabled() {
		return "", fmt.Errorf("emotion: service not configured")
	}

	payload, err := json.Marshal(map[string]string{"caption": caption})
	if err != nil {
		return "", fmt.Errorf("emotion: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/analyze-emotion", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("emotion: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("emotion: analyze: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("emotion: service returned status %d", resp.StatusCode)
	}

	var out struct {
		DominantEmotion string `json:"dominant_emotion"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("emotion: decode response: %w", err)
	}
	return strings.ToLower(strings.TrimSpace(out.DominantEmotion)), nil
}

// ClassifyQuiet classifies best-effort: failures are logged and collapse to
// "". The photo save path uses this so a sidecar outage never blocks a save.
func (c *Client) ClassifyQuiet(ctx context.Context, caption string) string {
	if !c.Enabled() {
		return ""
	}
	result, err := c.Classify(ctx, caption)
	if err != nil {
		c.logger.Warn("emotion classification failed, storing without emotion",
			zap.Error(err),
		)
		return ""
	}
	return result
}

// Health pings the service root. Used by the health endpoint.
func (c *Client) Health(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("emotion: health returned status %d", resp.StatusCode)
	}
	return nil
}
