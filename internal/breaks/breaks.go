// Package breaks infers unrecorded breaks between two consecutive Toggl entries.
//
// Toggl returns entries newest first, so while iterating, the previously
// processed entry is the one that happened later. The gap between the two is
// previous.Start - current.End.
package breaks

import (
	"time"

	"github.com/Tiliavir/toggl-absence/internal/model"
)

const (
	DefaultMin = 10 * time.Minute
	DefaultMax = 120 * time.Minute

	// Commentary is attached to every generated break record.
	Commentary = "Autogenerated"
)

// Policy holds the inclusive gap bounds for a break.
type Policy struct {
	Min time.Duration
	Max time.Duration
}

func DefaultPolicy() Policy {
	return Policy{Min: DefaultMin, Max: DefaultMax}
}

// NewPolicy builds a policy from whole-minute bounds.
func NewPolicy(minMinutes, maxMinutes int) Policy {
	return Policy{
		Min: time.Duration(minMinutes) * time.Minute,
		Max: time.Duration(maxMinutes) * time.Minute,
	}
}

// Gap returns previousStart - currentEnd with the sub-second part dropped.
func (p Policy) Gap(previousStart, currentEnd time.Time) time.Duration {
	return previousStart.Sub(currentEnd).Truncate(time.Second)
}

// IsBreak reports whether the gap lies within [Min, Max]. Overlapping or
// out-of-order entries produce a non-positive gap and never count as a break.
func (p Policy) IsBreak(previousStart, currentEnd time.Time) bool {
	gap := p.Gap(previousStart, currentEnd)
	if gap <= 0 {
		return false
	}
	return gap >= p.Min && gap <= p.Max
}

// Break is an inferred pause between two work intervals.
type Break struct {
	Start time.Time
	End   time.Time
}

// Infer returns the break between current and the later entry previous.
func (p Policy) Infer(previous, current model.TimeEntry) (Break, bool) {
	if !p.IsBreak(previous.Start, current.End) {
		return Break{}, false
	}
	return Break{Start: current.End, End: previous.Start}, true
}
