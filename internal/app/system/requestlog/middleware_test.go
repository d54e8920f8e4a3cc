package requestlog

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestMiddleware_AssignsRequestID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)

	var seenID string
	h := Middleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = RequestID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/habit/water/today", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if seenID == "" {
		t.Error("RequestID missing from handler context")
	}
	if got := rec.Header().Get("X-Request-ID"); got != seenID {
		t.Errorf("X-Request-ID header = %q, want %q", got, seenID)
	}
	if logs.Len() != 1 {
		t.Fatalf("logged %d entries, want 1", logs.Len())
	}
	entry := logs.All()[0]
	if entry.Level != zap.InfoLevel {
		t.Errorf("log level = %v, want info", entry.Level)
	}
}

func TestMiddleware_KeepsClientRequestID(t *testing.T) {
	h := Middleware(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := RequestID(r.Context()); got != "client-supplied" {
			t.Errorf("RequestID = %q, want client-supplied", got)
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/habit/settings", nil)
	req.Header.Set("X-Request-ID", "client-supplied")
	h.ServeHTTP(httptest.NewRecorder(), req)
}

func TestMiddleware_ErrorLevels(t *testing.T) {
	tests := []struct {
		status int
		want   zapcore.Level
	}{
		{200, zap.InfoLevel},
		{404, zap.WarnLevel},
		{500, zap.ErrorLevel},
	}

	for _, tt := range tests {
		core, logs := observer.New(zap.DebugLevel)
		h := Middleware(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		}))
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		if logs.Len() != 1 {
			t.Fatalf("status %d: logged %d entries", tt.status, logs.Len())
		}
		if got := logs.All()[0].Level; got != tt.want {
			t.Errorf("status %d: level = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestMiddleware_SkipPrefixes(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	h := Middleware(zap.New(core), "/health")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	if logs.Len() != 0 {
		t.Errorf("health check was logged, want silence")
	}
}
