package cmd

import (
	"testing"

	"github.com/Tiliavir/toggl-absence/internal/config"
	"github.com/Tiliavir/toggl-absence/internal/credentials"
)

func TestExportFlagDefaults(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"since", ""},
		{"till", ""},
		{"ignore", "false"},
		{"dry-run", "false"},
	}
	for _, tt := range tests {
		f := rootCmd.Flags().Lookup(tt.name)
		if f == nil {
			t.Errorf("flag --%s not registered", tt.name)
			continue
		}
		if f.DefValue != tt.want {
			t.Errorf("--%s default = %q, want %q", tt.name, f.DefValue, tt.want)
		}
	}
	if rootCmd.PersistentFlags().Lookup("config") == nil {
		t.Error("flag --config not registered")
	}
}

func TestSubcommands(t *testing.T) {
	for _, path := range [][]string{{"list"}, {"credentials", "set"}, {"credentials", "clear"}} {
		c, _, err := rootCmd.Find(path)
		if err != nil || c == rootCmd {
			t.Errorf("command %v not found: %v", path, err)
		}
	}
}

func TestSelectTargets(t *testing.T) {
	var app config.Application
	app.Toggl.WorkspaceID = "42"
	app.Absence.UserID = "user-1"

	tests := []struct {
		args []string
		want []credentialTarget
	}{
		{nil, []credentialTarget{{credentials.ServiceToggl, "42"}, {credentials.ServiceAbsence, "user-1"}}},
		{[]string{"toggl"}, []credentialTarget{{credentials.ServiceToggl, "42"}}},
		{[]string{"absence"}, []credentialTarget{{credentials.ServiceAbsence, "user-1"}}},
	}
	for _, tt := range tests {
		got, err := selectTargets(app, tt.args)
		if err != nil {
			t.Fatalf("selectTargets(%v): %v", tt.args, err)
		}
		if len(got) != len(tt.want) {
			t.Fatalf("selectTargets(%v) = %v, want %v", tt.args, got, tt.want)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("selectTargets(%v)[%d] = %v, want %v", tt.args, i, got[i], tt.want[i])
			}
		}
	}

	if _, err := selectTargets(app, []string{"slack"}); err == nil {
		t.Error("selectTargets(slack) returned no error")
	}
}
