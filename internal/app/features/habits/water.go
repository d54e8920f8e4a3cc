package habits

import (
	"context"
	"errors"
	"net/http"

	"github.com/pocketwell/pocketwell/internal/app/store/users"
	"github.com/pocketwell/pocketwell/internal/app/system/auth"
	"github.com/pocketwell/pocketwell/internal/app/system/jsonutil"
	"github.com/pocketwell/pocketwell/internal/datekey"
	"github.com/pocketwell/pocketwell/internal/domain/models"
	"go.uber.org/zap"
)

// waterStatus is the data payload for the water endpoints.
type waterStatus struct {
	Date   datekey.DateKey `json:"date"`
	Count  int64           `json:"count"`
	Target int             `json:"target"`
}

// AddWaterHandler handles POST /habit/water/add.
// Each call adds exactly one glass to today's bucket; the mobile app has no
// multi-glass control. The write is a single atomic increment, so rapid taps
// all land.
func (h *Handler) AddWaterHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UID(r)
	if !ok {
		jsonutil.Unauthorized(w, "authentication required")
		return
	}

	today := datekey.Today(h.loc)
	count, err := h.water.Increment(r.Context(), uid, today)
	if err != nil {
		h.logger.Error("water increment failed",
			zap.String("uid", uid),
			zap.Error(err),
		)
		jsonutil.InternalError(w, "could not update water intake")
		return
	}

	waterTarget, _ := h.targets(r.Context(), uid)
	jsonutil.OK(w, "water intake updated", waterStatus{
		Date:   today,
		Count:  count,
		Target: waterTarget,
	})
}

// WaterTodayHandler handles GET /habit/water/today.
// A day with no record reads as zero; that is the initial state, not an
// error.
func (h *Handler) WaterTodayHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UID(r)
	if !ok {
		jsonutil.Unauthorized(w, "authentication required")
		return
	}

	today := datekey.Today(h.loc)
	count, err := h.water.Get(r.Context(), uid, today)
	if err != nil {
		h.logger.Error("water read failed",
			zap.String("uid", uid),
			zap.Error(err),
		)
		jsonutil.InternalError(w, "could not read water intake")
		return
	}

	waterTarget, _ := h.targets(r.Context(), uid)
	jsonutil.OK(w, "water intake retrieved", waterStatus{
		Date:   today,
		Count:  count,
		Target: waterTarget,
	})
}

// targets returns the user's daily targets, falling back to the defaults
// when no account document exists yet.
func (h *Handler) targets(ctx context.Context, uid string) (waterTarget, stepsTarget int) {
	u, err := h.users.GetByUID(ctx, uid)
	if err != nil {
		if !errors.Is(err, users.ErrNotFound) {
			h.logger.Warn("target lookup failed",
				zap.String("uid", uid),
				zap.Error(err),
			)
		}
		return models.DefaultWaterTarget, models.DefaultStepsTarget
	}
	return u.WaterTarget, u.StepsTarget
}
