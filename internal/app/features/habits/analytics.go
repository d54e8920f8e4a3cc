package habits

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"
	"unicode"

	"github.com/go-chi/chi/v5"
	"github.com/pocketwell/pocketwell/internal/app/store/buckets"
	"github.com/pocketwell/pocketwell/internal/app/store/photos"
	"github.com/pocketwell/pocketwell/internal/app/system/auth"
	"github.com/pocketwell/pocketwell/internal/app/system/jsonutil"
	"github.com/pocketwell/pocketwell/internal/datekey"
	"go.uber.org/zap"
)

// ChartDataset is one line/bar series in a chart.
type ChartDataset struct {
	Data []int64 `json:"data"`
}

// ChartData is the chart.js-shaped payload the mobile app renders directly:
// one label per day in the window and one dataset holding the counts.
type ChartData struct {
	Labels   []string       `json:"labels"`
	Datasets []ChartDataset `json:"datasets"`
}

// EmotionCount is one slice of the emotion summary, capitalized for display.
type EmotionCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Report is the full analytics payload for one window.
type Report struct {
	DisplayRange string         `json:"displayRange"`
	WaterData    ChartData      `json:"waterData"`
	StepData     ChartData      `json:"stepData"`
	EmotionData  []EmotionCount `json:"emotionData"`
}

// Engine assembles analytics reports from the three habit stores.
type Engine struct {
	water  *buckets.Store
	steps  *buckets.Store
	photos *photos.Store
}

// NewEngine creates an analytics engine over the given stores.
func NewEngine(water, steps *buckets.Store, photoStore *photos.Store) *Engine {
	return &Engine{water: water, steps: steps, photos: photoStore}
}

// Report builds the report for the window of the given kind at the given
// offset from now. Days with no data chart as zero, so a week with no
// activity still yields seven labeled points.
func (e *Engine) Report(ctx context.Context, uid string, kind datekey.RangeKind, offset int, now time.Time, loc *time.Location) (*Report, error) {
	start, end, display := datekey.Range(kind, offset, now, loc)
	days := datekey.Enumerate(start, end)

	waterCounts, err := e.water.GetRange(ctx, uid, days)
	if err != nil {
		return nil, fmt.Errorf("water range: %w", err)
	}
	stepCounts, err := e.steps.GetRange(ctx, uid, days)
	if err != nil {
		return nil, fmt.Errorf("steps range: %w", err)
	}
	photoRecs, err := e.photos.GetRange(ctx, uid, days)
	if err != nil {
		return nil, fmt.Errorf("photos range: %w", err)
	}

	labels := make([]string, len(days))
	water := make([]int64, len(days))
	steps := make([]int64, len(days))
	for i, d := range days {
		if kind == datekey.Weekly {
			labels[i] = datekey.WeekdayLabel(d)
		} else {
			labels[i] = datekey.MonthDayLabel(d, 5)
		}
		water[i] = waterCounts[d]
		steps[i] = stepCounts[d]
	}

	return &Report{
		DisplayRange: display,
		WaterData:    ChartData{Labels: labels, Datasets: []ChartDataset{{Data: water}}},
		StepData:     ChartData{Labels: labels, Datasets: []ChartDataset{{Data: steps}}},
		EmotionData:  countEmotions(photoRecs),
	}, nil
}

// countEmotions tallies the emotions in a window, most frequent first and
// alphabetical within a tie.
func countEmotions(recs map[datekey.DateKey]photos.Record) []EmotionCount {
	tally := make(map[string]int)
	for _, rec := range recs {
		if rec.Emotion == "" {
			continue
		}
		tally[capitalize(rec.Emotion)]++
	}

	out := make([]EmotionCount, 0, len(tally))
	for name, count := range tally {
		out = append(out, EmotionCount{Name: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func capitalize(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// AnalyticsHandler handles GET /habit/analytics/{range}.
// {range} is "weekly" or "monthly"; the optional offset query parameter
// counts windows back from the current one (0 or negative).
func (h *Handler) AnalyticsHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UID(r)
	if !ok {
		jsonutil.Unauthorized(w, "authentication required")
		return
	}

	kind, err := datekey.ParseRangeKind(chi.URLParam(r, "range"))
	if err != nil {
		jsonutil.BadRequest(w, "range must be weekly or monthly")
		return
	}

	offset := 0
	if s := r.URL.Query().Get("offset"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n > 0 {
			jsonutil.BadRequest(w, "offset must be zero or negative")
			return
		}
		offset = n
	}

	report, err := h.engine.Report(r.Context(), uid, kind, offset, time.Now(), h.loc)
	if err != nil {
		h.logger.Error("analytics report failed",
			zap.String("uid", uid),
			zap.String("range", string(kind)),
			zap.Error(err),
		)
		jsonutil.InternalError(w, "could not build analytics report")
		return
	}

	jsonutil.OK(w, "analytics retrieved", report)
}
