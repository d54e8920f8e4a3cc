package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pocketwell/pocketwell/internal/app/system/auth"
)

// TestUID is the default user id injected by NewAuthenticatedRequest.
const TestUID = "test-user"

// WithUser adds a uid to the request context for testing authenticated
// handlers. This bypasses the token middleware and injects the uid directly.
func WithUser(r *http.Request, uid string) *http.Request {
	return auth.WithTestUser(r, uid)
}

// NewAuthenticatedRequest creates an HTTP request with TestUID in context.
func NewAuthenticatedRequest(method, target string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return WithUser(req, TestUID)
}

// NewJSONRequest creates an authenticated request with a JSON body marshaled
// from v.
func NewJSONRequest(t *testing.T, method, target string, v any) *http.Request {
	t.Helper()
	payload, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal request body: %v", err)
	}
	return NewAuthenticatedRequest(method, target, bytes.NewReader(payload))
}

// ResponseRecorder wraps httptest.ResponseRecorder with helper methods.
type ResponseRecorder struct {
	*httptest.ResponseRecorder
}

// NewRecorder creates a new ResponseRecorder.
func NewRecorder() *ResponseRecorder {
	return &ResponseRecorder{httptest.NewRecorder()}
}

// AssertStatus checks the response status code.
func (r *ResponseRecorder) AssertStatus(t interface{ Errorf(string, ...any) }, expected int) {
	if r.Code != expected {
		t.Errorf("status code: got %d, want %d (body: %s)", r.Code, expected, r.Body.String())
	}
}

// AssertContains checks if the response body contains the expected string.
func (r *ResponseRecorder) AssertContains(t interface{ Errorf(string, ...any) }, expected string) {
	body := r.Body.String()
	if !strings.Contains(body, expected) {
		t.Errorf("response body does not contain %q (body: %s)", expected, body)
	}
}

// DecodeData unmarshals the response envelope's data field into v and
// returns the message.
func (r *ResponseRecorder) DecodeData(t *testing.T, v any) string {
	t.Helper()
	var envelope struct {
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(r.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("response is not a JSON envelope: %v (body: %s)", err, r.Body.String())
	}
	if v != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, v); err != nil {
			t.Fatalf("decode envelope data: %v (data: %s)", err, envelope.Data)
		}
	}
	return envelope.Message
}
