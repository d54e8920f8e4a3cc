package habits

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/pocketwell/pocketwell/internal/app/store/users"
	"github.com/pocketwell/pocketwell/internal/app/system/auth"
	"github.com/pocketwell/pocketwell/internal/app/system/jsonutil"
	"github.com/pocketwell/pocketwell/internal/domain/models"
	"go.uber.org/zap"
)

// targetSettings is the data payload for the settings endpoints.
type targetSettings struct {
	WaterTarget int `json:"waterTarget"`
	StepsTarget int `json:"stepsTarget"`
}

// WaterSettingsHandler handles PUT /habit/water/settings.
// Body: {"waterTarget": n}.
func (h *Handler) WaterSettingsHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.UID(r); !ok {
		jsonutil.Unauthorized(w, "authentication required")
		return
	}
	var in struct {
		WaterTarget *int `json:"waterTarget"`
	}
	if err := jsonutil.Decode(r, &in); err != nil || in.WaterTarget == nil {
		jsonutil.BadRequest(w, "request body must include waterTarget")
		return
	}
	boundsMsg := fmt.Sprintf("target must be between %d and %d glasses", models.WaterTargetMin, models.WaterTargetMax)
	h.updateTarget(w, r, *in.WaterTarget, boundsMsg, models.ValidWaterTarget, h.users.UpdateWaterTarget, "water target updated")
}

// StepsSettingsHandler handles PUT /habit/steps/settings.
// Body: {"stepsTarget": n}.
func (h *Handler) StepsSettingsHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.UID(r); !ok {
		jsonutil.Unauthorized(w, "authentication required")
		return
	}
	var in struct {
		StepsTarget *int `json:"stepsTarget"`
	}
	if err := jsonutil.Decode(r, &in); err != nil || in.StepsTarget == nil {
		jsonutil.BadRequest(w, "request body must include stepsTarget")
		return
	}
	boundsMsg := fmt.Sprintf("target must be between %d and %d steps", models.StepsTargetMin, models.StepsTargetMax)
	h.updateTarget(w, r, *in.StepsTarget, boundsMsg, models.ValidStepsTarget, h.users.UpdateStepsTarget, "steps target updated")
}

// SettingsHandler handles GET /habit/settings. Unlike the counter reads,
// targets live on the users document, so the account must exist.
func (h *Handler) SettingsHandler(w http.ResponseWriter, r *http.Request) {
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
		h.logger.Error("settings read failed", zap.String("uid", uid), zap.Error(err))
		jsonutil.InternalError(w, "could not read settings")
		return
	}

	jsonutil.OK(w, "settings retrieved", targetSettings{
		WaterTarget: u.WaterTarget,
		StepsTarget: u.StepsTarget,
	})
}

// updateTarget is the shared tail of the two settings PUT handlers: bounds
// check, write through the users store, respond with both current targets.
func (h *Handler) updateTarget(
	w http.ResponseWriter,
	r *http.Request,
	target int,
	boundsMsg string,
	valid func(int) bool,
	update func(ctx context.Context, uid string, target int) error,
	okMsg string,
) {
	uid, ok := auth.UID(r)
	if !ok {
		jsonutil.Unauthorized(w, "authentication required")
		return
	}

	if !valid(target) {
		jsonutil.BadRequest(w, boundsMsg)
		return
	}

	if err := update(r.Context(), uid, target); err != nil {
		if errors.Is(err, users.ErrNotFound) {
			jsonutil.NotFound(w, "user not found")
			return
		}
		h.logger.Error("target update failed",
			zap.String("uid", uid),
			zap.Error(err),
		)
		jsonutil.InternalError(w, "could not update target")
		return
	}

	waterTarget, stepsTarget := h.targets(r.Context(), uid)
	jsonutil.OK(w, okMsg, targetSettings{
		WaterTarget: waterTarget,
		StepsTarget: stepsTarget,
	})
}
