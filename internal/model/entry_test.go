package model_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/Tiliavir/toggl-absence/internal/model"
)

func TestTimeEntryCommentary(t *testing.T) {
	e := model.TimeEntry{Description: "Review", Project: "Backend"}
	if got := e.Commentary(); got != "Review in project Backend" {
		t.Errorf("Commentary() = %q", got)
	}
}

// TimeEntry is decoded through the Toggl wire type and never serialised itself.
func TestTimeEntryHasNoWireTags(t *testing.T) {
	typ := reflect.TypeOf(model.TimeEntry{})
	for i := 0; i < typ.NumField(); i++ {
		if f := typ.Field(i); f.Tag != "" {
			t.Errorf("field %s carries tag %q", f.Name, f.Tag)
		}
	}
}

func TestDateRangeString(t *testing.T) {
	r := model.DateRange{
		Since: time.Date(2026, 2, 23, 0, 0, 0, 0, time.UTC),
		Until: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	if got := r.String(); got != "2026-02-23 → 2026-03-01" {
		t.Errorf("String() = %q", got)
	}
}
