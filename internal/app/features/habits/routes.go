package habits

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	apistatsstore "github.com/pocketwell/pocketwell/internal/app/store/apistats"
	"github.com/pocketwell/pocketwell/internal/app/system/apicors"
	"github.com/pocketwell/pocketwell/internal/app/system/apistats"
	"github.com/pocketwell/pocketwell/internal/app/system/auth"
	"go.uber.org/zap"
)

// Routes returns a router with the habit tracking API endpoints.
//
// Authentication is via Bearer token (mobile app). CORS is permissive since
// the token carries the identity.
func Routes(h *Handler, verifier auth.Verifier, recorder *apistats.Recorder, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(apicors.Middleware())
	r.Use(auth.RequireUser(verifier, logger))

	r.Route("/water", func(wr chi.Router) {
		wr.Group(func(gr chi.Router) {
			gr.Use(apistats.Middleware(recorder, apistatsstore.StatTypeWaterAdd))
			gr.Post("/add", h.AddWaterHandler)
		})
		wr.Group(func(gr chi.Router) {
			gr.Use(apistats.Middleware(recorder, apistatsstore.StatTypeWaterToday))
			gr.Get("/today", h.WaterTodayHandler)
		})
		wr.Group(func(gr chi.Router) {
			gr.Use(apistats.Middleware(recorder, apistatsstore.StatTypeSettings))
			gr.Put("/settings", h.WaterSettingsHandler)
		})
	})

	r.Route("/steps", func(sr chi.Router) {
		sr.Group(func(gr chi.Router) {
			gr.Use(apistats.Middleware(recorder, apistatsstore.StatTypeStepsReport))
			gr.Post("/add", h.AddStepsHandler)
		})
		sr.Group(func(gr chi.Router) {
			gr.Use(apistats.Middleware(recorder, apistatsstore.StatTypeSettings))
			gr.Put("/settings", h.StepsSettingsHandler)
		})
	})

	r.Group(func(gr chi.Router) {
		gr.Use(apistats.Middleware(recorder, apistatsstore.StatTypeSettings))
		gr.Get("/settings", h.SettingsHandler)
	})

	r.Route("/photo-of-the-day", func(pr chi.Router) {
		pr.Group(func(gr chi.Router) {
			gr.Use(apistats.Middleware(recorder, apistatsstore.StatTypePhotoSave))
			gr.Post("/", h.SavePhotoHandler)
		})
		pr.Group(func(gr chi.Router) {
			gr.Use(apistats.Middleware(recorder, apistatsstore.StatTypePhotoToday))
			gr.Get("/today", h.PhotoTodayHandler)
		})
		pr.Group(func(gr chi.Router) {
			gr.Use(apistats.Middleware(recorder, apistatsstore.StatTypePhotoHistory))
			gr.Get("/history", h.PhotoHistoryHandler)
		})
	})

	r.Group(func(gr chi.Router) {
		gr.Use(apistats.Middleware(recorder, apistatsstore.StatTypeAnalytics))
		gr.Get("/analytics/{range}", h.AnalyticsHandler)
	})

	return r
}
