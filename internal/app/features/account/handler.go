// Package account provides the user lifecycle API: registration, login,
// logout, token checks and profile image upload.
//
// Endpoints (mounted at /user):
//   - POST /user/register             - create an account
//   - POST /user/login                - exchange credentials for a token
//   - POST /user/logout               - revoke all tokens (authenticated)
//   - POST /user/checkToken           - token liveness probe (authenticated)
//   - POST /user/upload-profile-image - set the profile photo (authenticated)
package account

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/pocketwell/pocketwell/internal/app/store/users"
	"github.com/pocketwell/pocketwell/internal/app/system/auth"
	"github.com/pocketwell/pocketwell/internal/app/system/identity"
	"github.com/pocketwell/pocketwell/internal/app/system/inputval"
	"github.com/pocketwell/pocketwell/internal/app/system/jsonutil"
	"github.com/pocketwell/pocketwell/internal/domain/models"
	"go.uber.org/zap"
)

// maxProfileImageSize caps profile image uploads at 5 MB.
const maxProfileImageSize = 5 << 20

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
}

// Handler handles account API requests.
type Handler struct {
	provider identity.Provider
	users    *users.Store
	blobs    storage.Store
	logger   *zap.Logger
}

// NewHandler creates a new account handler.
func NewHandler(provider identity.Provider, userStore *users.Store, blobs storage.Store, logger *zap.Logger) *Handler {
	return &Handler{
		provider: provider,
		users:    userStore,
		blobs:    blobs,
		logger:   logger,
	}
}

// sessionData is the data payload of register and login responses.
type sessionData struct {
	User      *models.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresIn int64        `json:"expiresIn"`
}

// RegisterHandler handles POST /user/register.
func (h *Handler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "request body must be JSON")
		return
	}
	in.Email = strings.TrimSpace(in.Email)
	in.Username = strings.TrimSpace(in.Username)
	if in.Email == "" || in.Password == "" {
		jsonutil.BadRequest(w, "email and password are required")
		return
	}
	if !inputval.IsValidEmail(in.Email) {
		jsonutil.BadRequest(w, "a valid email address is required")
		return
	}

	sess, err := h.provider.Register(r.Context(), in.Email, in.Password)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrEmailTaken):
			jsonutil.Conflict(w, "email already registered")
		case errors.Is(err, identity.ErrWeakPassword):
			jsonutil.BadRequest(w, identity.ErrWeakPassword.Error())
		default:
			h.logger.Error("registration failed", zap.Error(err))
			jsonutil.InternalError(w, "could not create account")
		}
		return
	}

	u, err := h.ensureUser(r.Context(), sess, in.Username)
	if err != nil {
		h.logger.Error("user document setup failed",
			zap.String("uid", sess.UID),
			zap.Error(err),
		)
		jsonutil.InternalError(w, "could not create account")
		return
	}

	jsonutil.Created(w, "account created", sessionData{
		User:      u,
		Token:     sess.Token,
		ExpiresIn: int64(sess.ExpiresIn.Seconds()),
	})
}

// ensureUser reconciles the users document after a provider registration.
// The local provider creates the document itself; the remote provider only
// knows about the identity account, so the document is created here.
func (h *Handler) ensureUser(ctx context.Context, sess *identity.Session, displayName string) (*models.User, error) {
	_, err := h.users.Create(ctx, models.User{
		UID:         sess.UID,
		Email:       sess.Email,
		DisplayName: displayName,
	})
	if err != nil && !errors.Is(err, users.ErrDuplicate) {
		return nil, err
	}
	if errors.Is(err, users.ErrDuplicate) && displayName != "" {
		if err := h.users.UpdateDisplayName(ctx, sess.UID, displayName); err != nil {
			return nil, err
		}
	}
	return h.users.GetByUID(ctx, sess.UID)
}

// LoginHandler handles POST /user/login.
func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "request body must be JSON")
		return
	}
	if in.Email == "" || in.Password == "" {
		jsonutil.BadRequest(w, "email and password are required")
		return
	}

	sess, err := h.provider.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			jsonutil.Unauthorized(w, "invalid email or password")
			return
		}
		h.logger.Error("login failed", zap.Error(err))
		jsonutil.InternalError(w, "could not log in")
		return
	}

	u, err := h.users.GetByUID(r.Context(), sess.UID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			jsonutil.NotFound(w, "user not found")
			return
		}
		h.logger.Error("user lookup failed", zap.String("uid", sess.UID), zap.Error(err))
		jsonutil.InternalError(w, "could not log in")
		return
	}

	jsonutil.OK(w, "login successful", sessionData{
		User:      u,
		Token:     sess.Token,
		ExpiresIn: int64(sess.ExpiresIn.Seconds()),
	})
}

// LogoutHandler handles POST /user/logout. Revokes every outstanding token,
// not just the presented one; the mobile app treats logout as "log out
// everywhere".
func (h *Handler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UID(r)
	if !ok {
		jsonutil.Unauthorized(w, "authentication required")
		return
	}

	if err := h.provider.Logout(r.Context(), uid); err != nil {
		h.logger.Error("logout failed", zap.String("uid", uid), zap.Error(err))
		jsonutil.InternalError(w, "could not log out")
		return
	}
	jsonutil.OK(w, "logged out", nil)
}

// CheckTokenHandler handles POST /user/checkToken. The app calls it at
// launch to decide between the home screen and the login screen; reaching
// the handler at all means the middleware accepted the token.
func (h *Handler) CheckTokenHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UID(r)
	if !ok {
		jsonutil.Unauthorized(w, "authentication required")
		return
	}

	u, err := h.users.GetByUID(r.Context(), uid)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			jsonutil.NotFound(w, "user not found")
			return
		}
		h.logger.Error("user lookup failed", zap.String("uid", uid), zap.Error(err))
		jsonutil.InternalError(w, "could not check token")
		return
	}
	jsonutil.OK(w, "token is valid", map[string]*models.User{"user": u})
}

// UploadProfileImageHandler handles POST /user/upload-profile-image.
// Multipart field "profileImage", jpeg or png. A new upload overwrites the
// previous image at the same object path.
func (h *Handler) UploadProfileImageHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UID(r)
	if !ok {
		jsonutil.Unauthorized(w, "authentication required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxProfileImageSize)
	if err := r.ParseMultipartForm(maxProfileImageSize); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			jsonutil.TooLarge(w, "image too large (max 5MB)")
			return
		}
		jsonutil.BadRequest(w, "invalid multipart form")
		return
	}

	file, _, err := r.FormFile("profileImage")
	if err != nil {
		jsonutil.BadRequest(w, "request must include a profileImage")
		return
	}
	defer file.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		h.logger.Error("image read failed", zap.String("uid", uid), zap.Error(err))
		jsonutil.InternalError(w, "could not read image")
		return
	}
	head = head[:n]
	contentType := http.DetectContentType(head)
	ext, ok := imageExtensions[contentType]
	if !ok {
		jsonutil.BadRequest(w, "profile image must be a JPEG or PNG image")
		return
	}

	path := fmt.Sprintf("profile-images/%s%s", uid, ext)
	body := io.MultiReader(bytes.NewReader(head), file)
	if err := h.blobs.Put(r.Context(), path, body, &storage.PutOptions{ContentType: contentType}); err != nil {
		h.logger.Error("image upload failed",
			zap.String("uid", uid),
			zap.String("path", path),
			zap.Error(err),
		)
		jsonutil.InternalError(w, "could not store image")
		return
	}

	photoURL := h.blobs.URL(path)
	if err := h.users.UpdatePhotoURL(r.Context(), uid, photoURL); err != nil {
		if errors.Is(err, users.ErrNotFound) {
			jsonutil.NotFound(w, "user not found")
			return
		}
		h.logger.Error("photo url update failed", zap.String("uid", uid), zap.Error(err))
		jsonutil.InternalError(w, "could not update profile")
		return
	}

	jsonutil.OK(w, "profile image updated", map[string]string{"photoURL": photoURL})
}
