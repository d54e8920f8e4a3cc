package habits

import (
	"net/http"
	"strings"
	"testing"

	"github.com/pocketwell/pocketwell/internal/testutil"
)

func TestAddStepsHandler(t *testing.T) {
	h := newTestHandler(t, nil)

	report := func(steps int64) *testutil.ResponseRecorder {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/habit/steps/add",
			map[string]int64{"stepCount": steps})
		rec := testutil.NewRecorder()
		h.AddStepsHandler(rec.ResponseRecorder, req)
		return rec
	}

	t.Run("stores the reported total", func(t *testing.T) {
		rec := report(4200)
		rec.AssertStatus(t, http.StatusOK)

		var got stepsStatus
		msg := rec.DecodeData(t, &got)
		if msg != "step count updated" {
			t.Errorf("message: got %q", msg)
		}
		if got.Steps != 4200 {
			t.Errorf("steps: got %d, want 4200", got.Steps)
		}
	})

	t.Run("later report replaces earlier", func(t *testing.T) {
		report(5000)
		rec := report(7500)
		rec.AssertStatus(t, http.StatusOK)

		var got stepsStatus
		rec.DecodeData(t, &got)
		if got.Steps != 7500 {
			t.Errorf("steps after replace: got %d, want 7500", got.Steps)
		}
	})

	t.Run("lower report also wins", func(t *testing.T) {
		report(9000)
		rec := report(100)
		rec.AssertStatus(t, http.StatusOK)

		var got stepsStatus
		rec.DecodeData(t, &got)
		if got.Steps != 100 {
			t.Errorf("steps after lower report: got %d, want 100", got.Steps)
		}
	})

	t.Run("rejects negative and oversized values", func(t *testing.T) {
		for _, steps := range []int64{-1, maxStepsPerDay + 1} {
			rec := report(steps)
			rec.AssertStatus(t, http.StatusBadRequest)
		}
	})

	t.Run("rejects missing stepCount field", func(t *testing.T) {
		req := testutil.NewAuthenticatedRequest(http.MethodPost, "/habit/steps/add",
			strings.NewReader(`{}`))
		rec := testutil.NewRecorder()
		h.AddStepsHandler(rec.ResponseRecorder, req)
		rec.AssertStatus(t, http.StatusBadRequest)
		rec.AssertContains(t, "must include stepCount")
	})

	t.Run("rejects malformed body", func(t *testing.T) {
		req := testutil.NewAuthenticatedRequest(http.MethodPost, "/habit/steps/add",
			strings.NewReader(`{"stepCount":`))
		rec := testutil.NewRecorder()
		h.AddStepsHandler(rec.ResponseRecorder, req)
		rec.AssertStatus(t, http.StatusBadRequest)
	})

	t.Run("accepts zero", func(t *testing.T) {
		rec := report(0)
		rec.AssertStatus(t, http.StatusOK)

		var got stepsStatus
		rec.DecodeData(t, &got)
		if got.Steps != 0 {
			t.Errorf("steps: got %d, want 0", got.Steps)
		}
	})
}
