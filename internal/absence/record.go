package absence

import (
	"fmt"
	"time"

	"github.com/Tiliavir/toggl-absence/internal/model"
	"github.com/Tiliavir/toggl-absence/internal/timecalc"
)

// TimezoneResolver names the UTC offset of a timestamp.
type TimezoneResolver interface {
	ResolveTime(t time.Time) (string, string, error)
}

// NewRecord builds an absence.io timespan. The timezone is taken from start,
// the timestamps are converted to UTC.
func NewRecord(userID string, typ model.RecordType, start, end time.Time, commentary string, tz TimezoneResolver) (model.AbsenceRecord, error) {
	if end.Before(start) {
		return model.AbsenceRecord{}, fmt.Errorf("%w: end %s is before start %s",
			ErrInvalidRecord, end.Format(time.RFC3339), start.Format(time.RFC3339))
	}
	offset, name, err := tz.ResolveTime(start)
	if err != nil {
		return model.AbsenceRecord{}, err
	}
	return model.AbsenceRecord{
		UserID:       userID,
		Start:        timecalc.AbsenceTime(start),
		End:          timecalc.AbsenceTime(end),
		Type:         typ,
		Timezone:     offset,
		TimezoneName: name,
		Commentary:   commentary,
	}, nil
}
