// Package timezone maps fixed UTC offsets to the zone names absence.io expects.
package timezone

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnknownTimezone matches every *UnknownTimezoneError.
var ErrUnknownTimezone = errors.New("unknown timezone")

// UnknownTimezoneError reports an offset that has no entry in the table.
type UnknownTimezoneError struct {
	Offset string
}

func (e *UnknownTimezoneError) Error() string {
	return fmt.Sprintf("unknown timezone: %s", e.Offset)
}

func (e *UnknownTimezoneError) Is(target error) bool {
	return target == ErrUnknownTimezone
}

// Table maps offsets in "+HHMM" form to zone names.
type Table map[string]string

// DefaultTable covers central European standard and summer time.
func DefaultTable() Table {
	return Table{
		"+0100": "CET",
		"+0200": "CEST",
	}
}

// Resolver looks up zone names for timestamps. It is immutable after construction.
type Resolver struct {
	table Table
}

// NewResolver copies table, accepting "+01:00" style keys as well. A nil or
// empty table falls back to DefaultTable.
func NewResolver(table Table) *Resolver {
	if len(table) == 0 {
		table = DefaultTable()
	}
	t := make(Table, len(table))
	for offset, name := range table {
		t[strings.ReplaceAll(strings.TrimSpace(offset), ":", "")] = name
	}
	return &Resolver{table: t}
}

// Resolve parses an RFC 3339 timestamp and returns its offset and zone name.
func (r *Resolver) Resolve(ts string) (string, string, error) {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return "", "", fmt.Errorf("parsing timestamp %q: %w", ts, err)
	}
	return r.ResolveTime(t)
}

// ResolveTime returns the offset of t as "+HHMM" and the matching zone name.
func (r *Resolver) ResolveTime(t time.Time) (string, string, error) {
	offset := t.Format("-0700")
	name, ok := r.table[offset]
	if !ok {
		return "", "", &UnknownTimezoneError{Offset: offset}
	}
	return offset, name, nil
}
