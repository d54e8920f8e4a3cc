package habits

import (
	"net/http"

	"github.com/pocketwell/pocketwell/internal/app/system/auth"
	"github.com/pocketwell/pocketwell/internal/app/system/jsonutil"
	"github.com/pocketwell/pocketwell/internal/datekey"
	"go.uber.org/zap"
)

// stepsStatus is the data payload for the steps endpoint.
type stepsStatus struct {
	Date   datekey.DateKey `json:"date"`
	Steps  int64           `json:"steps"`
	Target int             `json:"target"`
}

// maxStepsPerDay rejects obviously bogus pedometer reports.
const maxStepsPerDay = 200000

// AddStepsHandler handles POST /habit/steps/add.
// The pedometer reports a cumulative daily total, so the new value replaces
// today's bucket instead of adding to it. Out-of-order reports mean last
// write wins, matching the device's own counter.
func (h *Handler) AddStepsHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UID(r)
	if !ok {
		jsonutil.Unauthorized(w, "authentication required")
		return
	}

	var in struct {
		StepCount *int64 `json:"stepCount"`
	}
	if err := jsonutil.Decode(r, &in); err != nil || in.StepCount == nil {
		jsonutil.BadRequest(w, "request body must include stepCount")
		return
	}
	if *in.StepCount < 0 || *in.StepCount > maxStepsPerDay {
		jsonutil.BadRequest(w, "stepCount must be between 0 and 200000")
		return
	}

	today := datekey.Today(h.loc)
	stored, err := h.steps.Replace(r.Context(), uid, today, *in.StepCount)
	if err != nil {
		h.logger.Error("steps replace failed",
			zap.String("uid", uid),
			zap.Error(err),
		)
		jsonutil.InternalError(w, "could not update step count")
		return
	}

	_, stepsTarget := h.targets(r.Context(), uid)
	jsonutil.OK(w, "step count updated", stepsStatus{
		Date:   today,
		Steps:  stored,
		Target: stepsTarget,
	})
}
