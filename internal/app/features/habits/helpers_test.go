package habits

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/pocketwell/pocketwell/internal/app/system/emotion"
	"github.com/pocketwell/pocketwell/internal/testutil"
	"go.uber.org/zap"
)

// jpegHeader is enough of a JPEG for content type sniffing.
var jpegHeader = []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}

// pngHeader is the PNG magic plus a few bytes.
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}

func newTestHandler(t *testing.T, emotions *emotion.Client) *Handler {
	t.Helper()

	db := testutil.SetupTestDB(t)
	blobs, err := storage.NewLocal(storage.LocalConfig{
		BasePath: t.TempDir(),
		BaseURL:  "http://localhost:8080/files",
	})
	if err != nil {
		t.Fatalf("create local storage: %v", err)
	}
	if emotions == nil {
		emotions = emotion.New(emotion.Config{}, zap.NewNop())
	}
	return NewHandler(db, blobs, emotions, time.UTC, zap.NewNop())
}

// multipartPhoto builds a photo upload request body with the given image
// bytes and optional caption/location fields.
func multipartPhoto(t *testing.T, image []byte, fields map[string]string) (io.Reader, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("photoOfTheDay", "photo.jpg")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write(image); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

// newFieldOnlyForm writes a multipart form with only text fields, no file
// part, and returns its content type.
func newFieldOnlyForm(w io.Writer, fields map[string]string) string {
	mw := multipart.NewWriter(w)
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	mw.Close()
	return mw.FormDataContentType()
}

func newPhotoRequest(t *testing.T, image []byte, fields map[string]string) *http.Request {
	t.Helper()
	body, contentType := multipartPhoto(t, image, fields)
	req := testutil.NewAuthenticatedRequest(http.MethodPost, "/habit/photo-of-the-day", body)
	req.Header.Set("Content-Type", contentType)
	return req
}
