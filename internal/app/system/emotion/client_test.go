package emotion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

func classifyServer(t *testing.T, emotion string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/analyze-emotion" {
			http.NotFound(w, r)
			return
		}
		var in struct {
			Caption string `json:"caption"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Caption == "" {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"dominant_emotion": emotion})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Classify(t *testing.T) {
	srv := classifyServer(t, "Joy")
	c := New(Config{BaseURL: srv.URL}, zap.NewNop())

	got, err := c.Classify(context.Background(), "great day at the beach")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	// Lowercased for storage; display capitalization happens in analytics.
	if got != "joy" {
		t.Errorf("Classify() = %q, want joy", got)
	}
}

func TestClient_Classify_EmptyCaption(t *testing.T) {
	c := New(Config{BaseURL: "http://unused"}, zap.NewNop())

	got, err := c.Classify(context.Background(), "   ")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if got != "" {
		t.Errorf("Classify() = %q, want empty", got)
	}
}

func TestClient_ClassifyQuiet_ServiceDown(t *testing.T) {
	c := New(Config{BaseURL: "http://127.0.0.1:1", Timeout: time.Second}, zap.NewNop())

	if got := c.ClassifyQuiet(context.Background(), "caption"); got != "" {
		t.Errorf("ClassifyQuiet() = %q, want empty on failure", got)
	}
}

func TestClient_ClassifyQuiet_SlowService(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	c := New(Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond}, zap.NewNop())

	start := time.Now()
	got := c.ClassifyQuiet(context.Background(), "caption")
	if got != "" {
		t.Errorf("ClassifyQuiet() = %q, want empty on timeout", got)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("ClassifyQuiet() blocked for %v, timeout not applied", elapsed)
	}
}

func TestClient_Disabled(t *testing.T) {
	c := New(Config{}, zap.NewNop())

	if c.Enabled() {
		t.Error("Enabled() = true with no URL")
	}
	if got := c.ClassifyQuiet(context.Background(), "caption"); got != "" {
		t.Errorf("ClassifyQuiet() = %q, want empty when disabled", got)
	}
	if err := c.Health(context.Background()); err != nil {
		t.Errorf("Health() = %v, want nil when disabled", err)
	}
}

func TestClient_Health(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)

	c := New(Config{BaseURL: srv.URL}, zap.NewNop())
	if err := c.Health(context.Background()); err != nil {
		t.Errorf("Health() error = %v", err)
	}
}
