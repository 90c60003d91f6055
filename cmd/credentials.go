package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/toggl-absence/internal/config"
	"github.com/Tiliavir/toggl-absence/internal/credentials"
)

var credentialsCmd = &cobra.Command{
	Use:   "credentials",
	Short: "Manage the stored Toggl and absence.io API keys",
}

var credentialsSetCmd = &cobra.Command{
	Use:       "set [toggl|absence]",
	Short:     "Prompt for API keys and store them",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"toggl", "absence"},
	RunE:      runCredentialsSet,
}

var credentialsClearCmd = &cobra.Command{
	Use:       "clear [toggl|absence]",
	Short:     "Remove stored API keys",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"toggl", "absence"},
	RunE:      runCredentialsClear,
}

func init() {
	credentialsCmd.AddCommand(credentialsSetCmd)
	credentialsCmd.AddCommand(credentialsClearCmd)
}

// credentialTarget is one service/account pair in the credential store.
type credentialTarget struct {
	service string
	account string
}

// selectTargets maps the optional argument to the keys it names; no argument means both.
func selectTargets(app config.Application, args []string) ([]credentialTarget, error) {
	toggl := credentialTarget{service: credentials.ServiceToggl, account: app.Toggl.WorkspaceID}
	abs := credentialTarget{service: credentials.ServiceAbsence, account: app.Absence.UserID}
	if len(args) == 0 {
		return []credentialTarget{toggl, abs}, nil
	}
	switch args[0] {
	case "toggl":
		return []credentialTarget{toggl}, nil
	case "absence":
		return []credentialTarget{abs}, nil
	default:
		return nil, fmt.Errorf("unknown credential %q, use toggl or absence", args[0])
	}
}

func runCredentialsSet(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	app, err := loadConfig()
	if err != nil {
		return err
	}
	targets, err := selectTargets(app, args)
	if err != nil {
		return err
	}
	provider, _, err := newProvider(ctx, app)
	if err != nil {
		return err
	}

	for _, t := range targets {
		if _, err := provider.Reset(ctx, t.service, t.account); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Stored %s key for %s\n", t.service, t.account)
	}
	return nil
}

func runCredentialsClear(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	app, err := loadConfig()
	if err != nil {
		return err
	}
	targets, err := selectTargets(app, args)
	if err != nil {
		return err
	}
	_, store, err := newProvider(ctx, app)
	if err != nil {
		return err
	}

	for _, t := range targets {
		err := store.Delete(ctx, t.service, t.account)
		switch {
		case errors.Is(err, credentials.ErrNotFound):
			fmt.Fprintf(cmd.OutOrStdout(), "No %s key stored for %s\n", t.service, t.account)
		case err != nil:
			return err
		default:
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s key for %s\n", t.service, t.account)
		}
	}
	return nil
}
