package habits

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pocketwell/pocketwell/internal/domain/models"
	"github.com/pocketwell/pocketwell/internal/testutil"
)

func TestAddWaterHandler(t *testing.T) {
	h := newTestHandler(t, nil)

	t.Run("increments one glass per call", func(t *testing.T) {
		var got waterStatus
		for i := 1; i <= 3; i++ {
			req := testutil.NewAuthenticatedRequest(http.MethodPost, "/habit/water/add", nil)
			rec := testutil.NewRecorder()
			h.AddWaterHandler(rec.ResponseRecorder, req)

			rec.AssertStatus(t, http.StatusOK)
			msg := rec.DecodeData(t, &got)
			if msg != "water intake updated" {
				t.Errorf("message: got %q", msg)
			}
			if got.Count != int64(i) {
				t.Errorf("count after %d adds: got %d", i, got.Count)
			}
		}
		if got.Target != models.DefaultWaterTarget {
			t.Errorf("target: got %d, want default %d", got.Target, models.DefaultWaterTarget)
		}
		if got.Date == "" {
			t.Error("date missing from response")
		}
	})

	t.Run("requires authentication", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/habit/water/add", nil)
		rec := testutil.NewRecorder()
		h.AddWaterHandler(rec.ResponseRecorder, req)
		rec.AssertStatus(t, http.StatusUnauthorized)
	})
}

func TestWaterTodayHandler(t *testing.T) {
	h := newTestHandler(t, nil)

	t.Run("reads zero before any adds", func(t *testing.T) {
		req := testutil.NewAuthenticatedRequest(http.MethodGet, "/habit/water/today", nil)
		rec := testutil.NewRecorder()
		h.WaterTodayHandler(rec.ResponseRecorder, req)

		rec.AssertStatus(t, http.StatusOK)
		var got waterStatus
		rec.DecodeData(t, &got)
		if got.Count != 0 {
			t.Errorf("count: got %d, want 0", got.Count)
		}
		if got.Target != models.DefaultWaterTarget {
			t.Errorf("target: got %d, want default %d", got.Target, models.DefaultWaterTarget)
		}
	})

	t.Run("reflects prior adds", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			req := testutil.NewAuthenticatedRequest(http.MethodPost, "/habit/water/add", nil)
			rec := testutil.NewRecorder()
			h.AddWaterHandler(rec.ResponseRecorder, req)
			rec.AssertStatus(t, http.StatusOK)
		}

		req := testutil.NewAuthenticatedRequest(http.MethodGet, "/habit/water/today", nil)
		rec := testutil.NewRecorder()
		h.WaterTodayHandler(rec.ResponseRecorder, req)

		rec.AssertStatus(t, http.StatusOK)
		var got waterStatus
		rec.DecodeData(t, &got)
		if got.Count != 2 {
			t.Errorf("count: got %d, want 2", got.Count)
		}
	})

	t.Run("users do not share counters", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/habit/water/today", nil)
		req = testutil.WithUser(req, "someone-else")
		rec := testutil.NewRecorder()
		h.WaterTodayHandler(rec.ResponseRecorder, req)

		rec.AssertStatus(t, http.StatusOK)
		var got waterStatus
		rec.DecodeData(t, &got)
		if got.Count != 0 {
			t.Errorf("count for other user: got %d, want 0", got.Count)
		}
	})
}
