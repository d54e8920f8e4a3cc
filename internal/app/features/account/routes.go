package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	apistatsstore "github.com/pocketwell/pocketwell/internal/app/store/apistats"
	"github.com/pocketwell/pocketwell/internal/app/system/apicors"
	"github.com/pocketwell/pocketwell/internal/app/system/apistats"
	"github.com/pocketwell/pocketwell/internal/app/system/auth"
	"go.uber.org/zap"
)

// Routes returns a router with the account API endpoints. Register and login
// are public; everything else requires a Bearer token.
func Routes(h *Handler, verifier auth.Verifier, recorder *apistats.Recorder, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(apicors.Middleware())
	r.Use(apistats.Middleware(recorder, apistatsstore.StatTypeAccount))

	r.Post("/register", h.RegisterHandler)
	r.Post("/login", h.LoginHandler)

	r.Group(func(gr chi.Router) {
		gr.Use(auth.RequireUser(verifier, logger))
		gr.Post("/logout", h.LogoutHandler)
		gr.Post("/checkToken", h.CheckTokenHandler)
		gr.Post("/upload-profile-image", h.UploadProfileImageHandler)
	})

	return r
}
