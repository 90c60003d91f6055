package cmd

import (
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/toggl-absence/internal/absence"
	"github.com/Tiliavir/toggl-absence/internal/breaks"
	"github.com/Tiliavir/toggl-absence/internal/config"
	"github.com/Tiliavir/toggl-absence/internal/credentials"
	"github.com/Tiliavir/toggl-absence/internal/export"
	"github.com/Tiliavir/toggl-absence/internal/timecalc"
	"github.com/Tiliavir/toggl-absence/internal/timezone"
	"github.com/Tiliavir/toggl-absence/internal/toggl"
)

var (
	exportSince  string
	exportTill   string
	exportIgnore bool
	exportDryRun bool
)

func init() {
	rootCmd.Flags().StringVar(&exportSince, "since", "", "First day to export, YYYY-MM-DD (default Monday of this week)")
	rootCmd.Flags().StringVar(&exportTill, "till", "", "Last day to export, YYYY-MM-DD (default Sunday of this week)")
	rootCmd.Flags().BoolVar(&exportIgnore, "ignore", false, "Continue after failed uploads")
	rootCmd.Flags().BoolVar(&exportDryRun, "dry-run", false, "Print the records without uploading them")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := log.WithField("run_id", uuid.NewString())

	app, err := loadConfig()
	if err != nil {
		return err
	}

	rng, err := timecalc.ResolveRange(exportSince, exportTill, timecalc.SystemClock{}.Now())
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

	// a dry run never signs a request, so the absence.io key is not needed
	var absenceKey string
	if !exportDryRun {
		absenceKey, err = provider.Resolve(ctx, credentials.ServiceAbsence, app.Absence.UserID)
		if err != nil {
			return err
		}
	}

	exporter := export.New(
		newTogglClient(app, togglKey),
		newAbsenceClient(app, absenceKey),
		timezone.NewResolver(timezone.Table(app.Timezones)),
		breaks.NewPolicy(app.Breaks.MinMinutes, app.Breaks.MaxMinutes),
		cmd.OutOrStdout(),
	)

	logger.WithFields(log.Fields{
		"range":   rng.String(),
		"ignore":  exportIgnore,
		"dry_run": exportDryRun,
	}).Debug("Starting export")

	result, err := exporter.Run(ctx, export.Options{
		Range:  rng,
		UserID: app.Absence.UserID,
		Ignore: exportIgnore,
		DryRun: exportDryRun,
	})
	logger.WithFields(log.Fields{
		"entries":  result.Entries,
		"uploaded": result.Uploaded,
		"breaks":   result.Breaks,
		"failed":   result.Failed,
	}).Debug("Export finished")
	if err != nil {
		return err
	}

	if result.Failed > 0 {
		logger.Warnf("%d uploads failed and were ignored", result.Failed)
	}
	return nil
}

func newTogglClient(app config.Application, apiKey string) *toggl.Client {
	return toggl.NewClient(toggl.Config{
		BaseURL:     app.Toggl.BaseURL,
		WorkspaceID: app.Toggl.WorkspaceID,
		APIKey:      apiKey,
		UserAgent:   app.Toggl.UserAgent,
		Timeout:     app.HTTP.Timeout,
	})
}

func newAbsenceClient(app config.Application, key string) *absence.Client {
	return absence.NewClient(absence.Config{
		BaseURL: app.Absence.BaseURL,
		Timeout: app.HTTP.Timeout,
		Signer: absence.HawkSigner{
			ID:  app.Absence.UserID,
			Key: key,
		},
	})
}
