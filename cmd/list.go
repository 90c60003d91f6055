package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/toggl-absence/internal/breaks"
	"github.com/Tiliavir/toggl-absence/internal/console"
	"github.com/Tiliavir/toggl-absence/internal/credentials"
	"github.com/Tiliavir/toggl-absence/internal/model"
	"github.com/Tiliavir/toggl-absence/internal/timecalc"
)

var (
	listSince string
	listTill  string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List Toggl entries and the breaks that would be inferred",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVar(&listSince, "since", "", "First day, YYYY-MM-DD (default Monday of this week)")
	listCmd.Flags().StringVar(&listTill, "till", "", "Last day, YYYY-MM-DD (default Sunday of this week)")
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	app, err := loadConfig()
	if err != nil {
		return err
	}

	rng, err := timecalc.ResolveRange(listSince, listTill, timecalc.SystemClock{}.Now())
	if err != nil {
		return err
	}

	provider, _, err := newProvider(ctx, app)
	if err != nil {
		return err
	}
	togglKey, err := provider.Resolve(ctx, credentials.ServiceToggl, app.Toggl.WorkspaceID)
	if err != nil {
		return err
	}

	entries, err := newTogglClient(app, togglKey).Fetch(ctx, rng.Since, rng.Until)
	if err != nil {
		return err
	}

	printList(cmd.OutOrStdout(), entries, breaks.NewPolicy(app.Breaks.MinMinutes, app.Breaks.MaxMinutes))
	return nil
}

// printList groups entries by day, in source order, and marks inferred breaks.
func printList(w io.Writer, entries []model.TimeEntry, policy breaks.Policy) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No entries found.")
		return
	}

	var currentDay string
	for i, e := range entries {
		if i > 0 {
			if b, ok := policy.Infer(entries[i-1], e); ok {
				fmt.Fprintln(w, console.Notice(fmt.Sprintf("%s–%s  break (%s)",
					b.Start.Format("15:04"), b.End.Format("15:04"), timecalc.FormatDuration(b.End.Sub(b.Start)))))
			}
		}

		day := e.Start.Format(timecalc.DateLayout)
		if day != currentDay {
			fmt.Fprintln(w, console.Heading(day))
			currentDay = day
		}

		desc := ""
		if e.Description != "" {
			desc = "  " + e.Description
		}
		fmt.Fprintf(w, "%s–%s  %s%s (%s)\n",
			e.Start.Format("15:04"), e.End.Format("15:04"), e.Project, desc, timecalc.FormatDuration(e.End.Sub(e.Start)))
	}

	fmt.Fprintf(w, "Total: %s hours\n", timecalc.FormatHours(timecalc.Hours(entries)))
}
