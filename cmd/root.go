package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/toggl-absence/internal/config"
	"github.com/Tiliavir/toggl-absence/internal/console"
	"github.com/Tiliavir/toggl-absence/internal/credentials"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "toggl-absence",
	Short: "Copy Toggl time entries to absence.io",
	Long: `toggl-absence uploads every Toggl time entry of a date range to absence.io
as a work timespan and fills gaps between 10 minutes and 2 hours with breaks.
Configuration lives in ~/.toggl-absence/config.yaml, API keys in the OS keychain.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runExport,
}

// Execute is the entry point called from main.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, console.Failure(err.Error()))
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.toggl-absence/config.yaml)")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(credentialsCmd)
}

// loadConfig reads and validates the configuration selected by --config.
func loadConfig() (config.Application, error) {
	path := configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return config.Application{}, err
		}
		path = p
	}

	app, err := config.Load(path)
	if err != nil {
		return config.Application{}, err
	}
	if err := app.Validate(); err != nil {
		return config.Application{}, fmt.Errorf("%w (edit %s)", err, path)
	}
	return app, nil
}

// newProvider builds the credential provider for the configured backend.
func newProvider(ctx context.Context, app config.Application) (*credentials.Provider, credentials.Store, error) {
	store, err := credentials.NewStore(ctx, app.Credentials.Backend, credentials.AWSOptions{
		Region:   app.Credentials.AWS.Region,
		Endpoint: app.Credentials.AWS.Endpoint,
		Prefix:   app.Credentials.AWS.Prefix,
	})
	if err != nil {
		return nil, nil, err
	}
	return credentials.NewProvider(store, credentials.NewPasswordPrompt(), credentials.IsInteractive), store, nil
}
