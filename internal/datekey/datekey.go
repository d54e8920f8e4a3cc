// Package datekey provides the calendar-day identifier and range math that
// the habit trackers and analytics are built on.
//
// A DateKey is a plain "YYYY-MM-DD" string with no time-of-day or timezone
// component. Because the format is fixed-width and zero-padded, lexicographic
// ordering of DateKeys equals chronological ordering, which is what lets the
// stores use them directly as sortable map keys.
package datekey

import (
	"fmt"
	"time"
)

// Layout is the canonical serialization of a DateKey.
const Layout = "2006-01-02"

// DateKey identifies one calendar day in the service's reference timezone.
type DateKey string

// FromTime derives the DateKey for t observed in loc.
func FromTime(t time.Time, loc *time.Location) DateKey {
	return DateKey(t.In(loc).Format(Layout))
}

// Today returns the DateKey for the current moment in loc.
func Today(loc *time.Location) DateKey {
	return FromTime(time.Now(), loc)
}

// Parse validates s as a DateKey. The zero time.Location is irrelevant here:
// a DateKey carries no zone, Parse only checks the calendar date is real.
func Parse(s string) (DateKey, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return "", fmt.Errorf("invalid date key %q: %w", s, err)
	}
	// Round-trip guards against accepted-but-noncanonical inputs.
	if got := t.Format(Layout); got != s {
		return "", fmt.Errorf("invalid date key %q: not canonical", s)
	}
	return DateKey(s), nil
}

// Time returns midnight of the key's calendar day in loc.
func (d DateKey) Time(loc *time.Location) time.Time {
	t, _ := time.ParseInLocation(Layout, string(d), loc)
	return t
}

// Before reports whether d is an earlier calendar day than other.
func (d DateKey) Before(other DateKey) bool { return d < other }

func (d DateKey) String() string { return string(d) }

// Compact returns the key as "YYYYMMDD", used for blob object names.
func (d DateKey) Compact() string {
	s := string(d)
	if len(s) != len(Layout) {
		return s
	}
	return s[0:4] + s[5:7] + s[8:10]
}

// RangeKind selects the reporting window shape.
type RangeKind string

const (
	Weekly  RangeKind = "weekly"
	Monthly RangeKind = "monthly"
)

// ParseRangeKind maps the URL path segment to a RangeKind.
func ParseRangeKind(s string) (RangeKind, error) {
	switch RangeKind(s) {
	case Weekly, Monthly:
		return RangeKind(s), nil
	}
	return "", fmt.Errorf("unknown range kind %q", s)
}

// Range computes the calendar window of the given kind, shifted by offset
// whole weeks/months from the one containing now. Weeks start on Monday.
// Offset 0 is the current window, negative offsets reach into the past;
// positive offsets are computable here but the HTTP boundary rejects them.
//
// The display label follows the mobile app's header convention:
// "This Week"/"Last Week"/"Jan 2 - Jan 8" and
// "This Month"/"Last Month"/"Jan 2026".
func Range(kind RangeKind, offset int, now time.Time, loc *time.Location) (start, end DateKey, display string) {
	now = now.In(loc)

	switch kind {
	case Weekly:
		// Distance back to Monday of the current week.
		back := (int(now.Weekday()) + 6) % 7
		s := time.Date(now.Year(), now.Month(), now.Day()-back+offset*7, 0, 0, 0, 0, loc)
		e := s.AddDate(0, 0, 6)
		start, end = FromTime(s, loc), FromTime(e, loc)
		switch offset {
		case 0:
			display = "This Week"
		case -1:
			display = "Last Week"
		default:
			display = fmt.Sprintf("%s %d - %s %d", s.Month().String()[:3], s.Day(), e.Month().String()[:3], e.Day())
		}

	case Monthly:
		// time.Date normalizes out-of-range months, so year boundaries
		// fall out of the arithmetic.
		s := time.Date(now.Year(), now.Month()+time.Month(offset), 1, 0, 0, 0, 0, loc)
		e := time.Date(s.Year(), s.Month()+1, 0, 0, 0, 0, 0, loc)
		start, end = FromTime(s, loc), FromTime(e, loc)
		switch offset {
		case 0:
			display = "This Month"
		case -1:
			display = "Last Month"
		default:
			display = fmt.Sprintf("%s %d", s.Month().String()[:3], s.Year())
		}
	}
	return start, end, display
}

// Enumerate returns every calendar day from start to end inclusive, in
// ascending order. An inverted range yields nil.
func Enumerate(start, end DateKey) []DateKey {
	if start > end {
		return nil
	}
	loc := time.UTC
	var days []DateKey
	for t, last := start.Time(loc), end.Time(loc); !t.After(last); t = t.AddDate(0, 0, 1) {
		days = append(days, FromTime(t, loc))
	}
	return days
}

// WeekdayLabel returns the three-letter weekday abbreviation for d.
func WeekdayLabel(d DateKey) string {
	return d.Time(time.UTC).Weekday().String()[:3]
}

// MonthDayLabel returns the day-of-month as a string when (day-1) mod n == 0,
// else "". The month chart uses n=5 to thin out its axis labels.
func MonthDayLabel(d DateKey, n int) string {
	day := d.Time(time.UTC).Day()
	if n > 0 && (day-1)%n == 0 {
		return fmt.Sprintf("%d", day)
	}
	return ""
}
