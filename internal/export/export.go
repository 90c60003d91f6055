// Package export drives a single Toggl to absence.io run.
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/Tiliavir/toggl-absence/internal/absence"
	"github.com/Tiliavir/toggl-absence/internal/breaks"
	"github.com/Tiliavir/toggl-absence/internal/console"
	"github.com/Tiliavir/toggl-absence/internal/model"
	"github.com/Tiliavir/toggl-absence/internal/timecalc"
)

// ErrHalted is returned when an upload fails and failures are not ignored.
var ErrHalted = errors.New("export halted after failed upload")

// Source returns all time entries in a date range, newest first.
type Source interface {
	Fetch(ctx context.Context, since, until time.Time) ([]model.TimeEntry, error)
}

// Uploader submits a single absence record.
type Uploader interface {
	Upload(ctx context.Context, rec model.AbsenceRecord) error
}

// Options configures a run.
type Options struct {
	Range  model.DateRange
	UserID string
	// Ignore keeps going after a failed upload instead of halting.
	Ignore bool
	// DryRun builds and prints records without uploading them.
	DryRun bool
}

// Result holds counters for a run.
type Result struct {
	Entries    int
	TotalHours float64
	Uploaded   int
	Breaks     int
	Failed     int
}

// Exporter wires the source, the break policy and the uploader together.
type Exporter struct {
	source   Source
	uploader Uploader
	tz       absence.TimezoneResolver
	policy   breaks.Policy
	out      io.Writer
}

func New(source Source, uploader Uploader, tz absence.TimezoneResolver, policy breaks.Policy, out io.Writer) *Exporter {
	return &Exporter{
		source:   source,
		uploader: uploader,
		tz:       tz,
		policy:   policy,
		out:      out,
	}
}

// Run fetches every entry in opts.Range, uploads one work record per entry
// and one break record for each qualifying gap. Fetch and timezone failures
// always abort the run; upload failures abort it unless opts.Ignore is set.
func (x *Exporter) Run(ctx context.Context, opts Options) (Result, error) {
	var result Result
	since := opts.Range.Since.Format(timecalc.DateLayout)
	until := opts.Range.Until.Format(timecalc.DateLayout)

	dryTag := ""
	if opts.DryRun {
		dryTag = " [dry-run]"
	}
	fmt.Fprintf(x.out, "Getting toggl data from %s till %s...%s\n", since, until, dryTag)

	entries, err := x.source.Fetch(ctx, opts.Range.Since, opts.Range.Until)
	if err != nil {
		return result, fmt.Errorf("fetching toggl entries: %w", err)
	}
	result.Entries = len(entries)
	result.TotalHours = timecalc.Hours(entries)
	fmt.Fprintf(x.out, "Got %d toggl entries totaling %s hours.\n", result.Entries, timecalc.FormatHours(result.TotalHours))

	var previous *model.TimeEntry
	for i := range entries {
		entry := entries[i]

		work, err := absence.NewRecord(opts.UserID, model.RecordWork, entry.Start, entry.End, entry.Commentary(), x.tz)
		if err != nil {
			return result, fmt.Errorf("building record for entry %d: %w", entry.ID, err)
		}
		if err := x.submit(ctx, opts, entry, work, &result); err != nil {
			return result, err
		}

		if previous != nil {
			if gap := x.policy.Gap(previous.Start, entry.End); gap < 0 {
				log.WithFields(log.Fields{
					"entry":    entry.ID,
					"previous": previous.ID,
					"overlap":  -gap,
				}).Warn("entries overlap or are out of order, no break inferred")
			}
			if b, ok := x.policy.Infer(*previous, entry); ok {
				brk, err := absence.NewRecord(opts.UserID, model.RecordBreak, b.Start, b.End, breaks.Commentary, x.tz)
				if err != nil {
					return result, fmt.Errorf("building break before entry %d: %w", previous.ID, err)
				}
				if err := x.submit(ctx, opts, entry, brk, &result); err != nil {
					return result, err
				}
				result.Breaks++
			}
		}

		previous = &entries[i]
	}

	fmt.Fprintln(x.out, console.Heading("Done"))
	return result, nil
}

// submit uploads rec and applies the ignore/halt policy to a failure.
func (x *Exporter) submit(ctx context.Context, opts Options, entry model.TimeEntry, rec model.AbsenceRecord, result *Result) error {
	fmt.Fprintln(x.out, console.Muted(fmt.Sprintf("%+v", rec)))
	if opts.DryRun {
		return nil
	}

	err := x.uploader.Upload(ctx, rec)
	if err == nil {
		result.Uploaded++
		return nil
	}
	result.Failed++

	fmt.Fprintln(x.out, console.Failure("Could not upload entry:"))
	fmt.Fprintf(x.out, "%+v\n", entry)
	var uerr *absence.UploadError
	if errors.As(err, &uerr) {
		fmt.Fprintln(x.out, uerr.StatusCode)
		fmt.Fprintln(x.out, uerr.Reason)
	} else {
		fmt.Fprintln(x.out, err)
	}

	if opts.Ignore {
		fmt.Fprintln(x.out, console.Notice("Continue..."))
		return nil
	}
	return fmt.Errorf("%w: entry %d (%s): %w", ErrHalted, entry.ID, rec.Type, err)
}
