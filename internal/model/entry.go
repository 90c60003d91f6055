package model

import (
	"fmt"
	"time"
)

// TimeEntry represents a single recorded work interval fetched from Toggl.
type TimeEntry struct {
	ID          int64
	Description string
	Project     string
	User        string
	Tags        []string
	Start       time.Time
	End         time.Time
	DurationMs  int64
}

// Commentary returns the text attached to the uploaded work record.
func (e TimeEntry) Commentary() string {
	return fmt.Sprintf("%s in project %s", e.Description, e.Project)
}

// RecordType is the absence.io timespan type.
type RecordType string

const (
	RecordWork  RecordType = "work"
	RecordBreak RecordType = "break"
)

// AbsenceRecord is the body of an absence.io timespan create request.
// Start and End are UTC timestamps in the fixed absence.io layout, so they
// compare correctly as strings.
type AbsenceRecord struct {
	UserID       string     `json:"userId"`
	Start        string     `json:"start"`
	End          string     `json:"end"`
	Type         RecordType `json:"type"`
	Timezone     string     `json:"timezone"`
	TimezoneName string     `json:"timezoneName"`
	Commentary   string     `json:"commentary"`
}

// DateRange is an inclusive range of calendar days.
type DateRange struct {
	Since time.Time
	Until time.Time
}

func (r DateRange) String() string {
	return r.Since.Format("2006-01-02") + " → " + r.Until.Format("2006-01-02")
}
