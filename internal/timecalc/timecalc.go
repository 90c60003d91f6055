package timecalc

import (
	"fmt"
	"strconv"
	"time"

	"github.com/Tiliavir/toggl-absence/internal/model"
)

const (
	// DateLayout is the layout of --since/--till and of the Toggl query dates.
	DateLayout = "2006-01-02"
	// AbsenceLayout is the UTC timestamp layout expected by absence.io.
	AbsenceLayout = "2006-01-02T15:04:05.000Z"

	msPerHour = 3_600_000
)

// Clock abstracts time.Now so default ranges and request timestamps can be pinned in tests.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

type MockClock struct {
	FixedNow time.Time
}

func (m *MockClock) Now() time.Time {
	return m.FixedNow
}

// WeekRange returns the Monday and Sunday (both at 00:00) of the ISO week containing t.
func WeekRange(t time.Time) (time.Time, time.Time) {
	// Go's weekday: Sunday=0, Monday=1, ..., Saturday=6
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7 // treat Sunday as 7 (ISO)
	}
	monday := StartOfDay(t.AddDate(0, 0, -(wd - 1)))
	sunday := monday.AddDate(0, 0, 6)
	return monday, sunday
}

// StartOfDay returns 00:00:00 of the same day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ResolveRange turns the optional --since/--till values into a DateRange.
// Empty values fall back to the Monday and Sunday of the week containing now.
func ResolveRange(since, till string, now time.Time) (model.DateRange, error) {
	monday, sunday := WeekRange(now)
	r := model.DateRange{Since: monday, Until: sunday}

	if since != "" {
		d, err := time.ParseInLocation(DateLayout, since, now.Location())
		if err != nil {
			return model.DateRange{}, fmt.Errorf("invalid --since value %q: %w", since, err)
		}
		r.Since = d
	}
	if till != "" {
		d, err := time.ParseInLocation(DateLayout, till, now.Location())
		if err != nil {
			return model.DateRange{}, fmt.Errorf("invalid --till value %q: %w", till, err)
		}
		r.Until = d
	}
	if r.Until.Before(r.Since) {
		return model.DateRange{}, fmt.Errorf("--till %s is before --since %s",
			r.Until.Format(DateLayout), r.Since.Format(DateLayout))
	}
	return r, nil
}

// AbsenceTime formats t in UTC with millisecond precision.
func AbsenceTime(t time.Time) string {
	return t.UTC().Format(AbsenceLayout)
}

// Hours sums entry durations and converts milliseconds to hours.
func Hours(entries []model.TimeEntry) float64 {
	var ms int64
	for _, e := range entries {
		ms += e.DurationMs
	}
	return float64(ms) / msPerHour
}

// FormatHours renders hours without trailing zeros, e.g. "1.5" or "38".
func FormatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}

// FormatDuration renders d like "1h 40m", "45m" or "30s".
func FormatDuration(d time.Duration) string {
	seconds := int64(d / time.Second)
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	if m > 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%ds", s)
}
