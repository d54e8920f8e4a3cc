package habits

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/pocketwell/pocketwell/internal/app/store/photos"
	"github.com/pocketwell/pocketwell/internal/app/system/auth"
	"github.com/pocketwell/pocketwell/internal/app/system/htmlsanitize"
	"github.com/pocketwell/pocketwell/internal/app/system/jsonutil"
	"github.com/pocketwell/pocketwell/internal/datekey"
	"go.uber.org/zap"
)

// maxPhotoSize caps photo-of-the-day uploads at 5 MB.
const maxPhotoSize = 5 << 20

// photoExtensions maps the accepted image content types to the object name
// extension used in blob storage.
var photoExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
}

// historyPage is the data payload for the history endpoint.
type historyPage struct {
	Photos  []photos.DatedRecord `json:"photos"`
	HasMore bool                 `json:"hasMore"`
}

// SavePhotoHandler handles POST /habit/photo-of-the-day.
// Multipart form fields: "photoOfTheDay" (the image, jpeg or png), "caption" and
// "location" (optional text). Uploading again on the same day replaces the
// day's record entirely. The emotion annotation is best effort; a slow or
// down annotator never fails the upload.
func (h *Handler) SavePhotoHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UID(r)
	if !ok {
		jsonutil.Unauthorized(w, "authentication required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoSize)
	if err := r.ParseMultipartForm(maxPhotoSize); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			jsonutil.TooLarge(w, "photo too large (max 5MB)")
			return
		}
		jsonutil.BadRequest(w, "invalid multipart form")
		return
	}

	file, _, err := r.FormFile("photoOfTheDay")
	if err != nil {
		jsonutil.BadRequest(w, "request must include a photoOfTheDay file")
		return
	}
	defer file.Close()

	// Sniff the real content type; the part header is client-controlled.
	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		h.logger.Error("photo read failed", zap.String("uid", uid), zap.Error(err))
		jsonutil.InternalError(w, "could not read photo")
		return
	}
	head = head[:n]
	contentType := http.DetectContentType(head)
	ext, ok := photoExtensions[contentType]
	if !ok {
		jsonutil.BadRequest(w, "photo must be a JPEG or PNG image")
		return
	}

	caption := htmlsanitize.Text(r.FormValue("caption"))
	location := htmlsanitize.Text(r.FormValue("location"))

	today := datekey.Today(h.loc)
	path := fmt.Sprintf("daily-photos/%s/%s%s", uid, today.Compact(), ext)

	body := io.MultiReader(bytes.NewReader(head), file)
	opts := &storage.PutOptions{ContentType: contentType}
	if err := h.blobs.Put(r.Context(), path, body, opts); err != nil {
		h.logger.Error("photo upload failed",
			zap.String("uid", uid),
			zap.String("path", path),
			zap.Error(err),
		)
		jsonutil.InternalError(w, "could not store photo")
		return
	}

	rec := photos.Record{
		PhotoURL: h.blobs.URL(path),
		Caption:  caption,
		Location: location,
		Emotion:  h.emotions.ClassifyQuiet(r.Context(), caption),
	}
	if err := h.photos.Put(r.Context(), uid, today, rec); err != nil {
		h.logger.Error("photo record save failed",
			zap.String("uid", uid),
			zap.Error(err),
		)
		jsonutil.InternalError(w, "could not save photo record")
		return
	}

	jsonutil.Created(w, "photo of the day saved", photos.DatedRecord{
		Date:   today,
		Record: rec,
	})
}

// PhotoTodayHandler handles GET /habit/photo-of-the-day/today.
func (h *Handler) PhotoTodayHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UID(r)
	if !ok {
		jsonutil.Unauthorized(w, "authentication required")
		return
	}

	today := datekey.Today(h.loc)
	rec, err := h.photos.Get(r.Context(), uid, today)
	if errors.Is(err, photos.ErrNotFound) {
		jsonutil.NotFound(w, "no photo for today")
		return
	}
	if err != nil {
		h.logger.Error("photo read failed", zap.String("uid", uid), zap.Error(err))
		jsonutil.InternalError(w, "could not read photo record")
		return
	}

	jsonutil.OK(w, "photo of the day retrieved", photos.DatedRecord{
		Date:   today,
		Record: *rec,
	})
}

// PhotoHistoryHandler handles GET /habit/photo-of-the-day/history.
// Query parameters: limit (default 10, max 50) and startAfter, a date whose
// record marks the exclusive start of the page. Pages run newest to oldest;
// the client passes the last date it received to fetch the next page.
func (h *Handler) PhotoHistoryHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UID(r)
	if !ok {
		jsonutil.Unauthorized(w, "authentication required")
		return
	}

	limit := 10
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > 50 {
			jsonutil.BadRequest(w, "limit must be between 1 and 50")
			return
		}
		limit = n
	}

	var cursor datekey.DateKey
	if s := r.URL.Query().Get("startAfter"); s != "" {
		d, err := datekey.Parse(s)
		if err != nil {
			jsonutil.BadRequest(w, "startAfter must be a YYYY-MM-DD date")
			return
		}
		cursor = d
	}

	recs, hasMore, err := h.photos.History(r.Context(), uid, limit, cursor)
	if err != nil {
		h.logger.Error("photo history failed", zap.String("uid", uid), zap.Error(err))
		jsonutil.InternalError(w, "could not read photo history")
		return
	}
	if recs == nil {
		recs = []photos.DatedRecord{}
	}

	jsonutil.OK(w, "photo history retrieved", historyPage{
		Photos:  recs,
		HasMore: hasMore,
	})
}
