package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"

	"github.com/Tiliavir/toggl-absence/internal/absence"
	"github.com/Tiliavir/toggl-absence/internal/timezone"
	"github.com/Tiliavir/toggl-absence/internal/toggl"
)

// EnvPrefix is stripped from environment overrides, e.g.
// TOGGL_ABSENCE_ABSENCE_USERID sets absence.userid.
const EnvPrefix = "TOGGL_ABSENCE_"

// Application is the root configuration, stored in ~/.toggl-absence/config.yaml.
type Application struct {
	Absence     Absence           `koanf:"absence"`
	Toggl       Toggl             `koanf:"toggl"`
	HTTP        HTTP              `koanf:"http"`
	Breaks      Breaks            `koanf:"breaks"`
	Timezones   map[string]string `koanf:"timezones"`
	Credentials Credentials       `koanf:"credentials"`
}

type Absence struct {
	// UserID is the absence.io user id; it doubles as the hawk key id.
	UserID  string `koanf:"userid"`
	BaseURL string `koanf:"baseurl"`
}

type Toggl struct {
	WorkspaceID string `koanf:"workspaceid"`
	BaseURL     string `koanf:"baseurl"`
	UserAgent   string `koanf:"useragent"`
}

type HTTP struct {
	Timeout time.Duration `koanf:"timeout"`
}

// Breaks bounds the gap, in whole minutes, that counts as a break.
type Breaks struct {
	MinMinutes int `koanf:"minminutes"`
	MaxMinutes int `koanf:"maxminutes"`
}

type Credentials struct {
	// Backend is one of keyring, aws or memory.
	Backend string `koanf:"backend"`
	AWS     AWS    `koanf:"aws"`
}

type AWS struct {
	Region   string `koanf:"region"`
	Endpoint string `koanf:"endpoint"`
	Prefix   string `koanf:"prefix"`
}

func defaults() Application {
	return Application{
		Absence: Absence{BaseURL: absence.DefaultBaseURL},
		Toggl: Toggl{
			BaseURL:   toggl.DefaultBaseURL,
			UserAgent: toggl.DefaultUserAgent,
		},
		HTTP:   HTTP{Timeout: 30 * time.Second},
		Breaks: Breaks{MinMinutes: 10, MaxMinutes: 120},
		Credentials: Credentials{
			Backend: "keyring",
			AWS:     AWS{Prefix: "toggl-absence/"},
		},
	}
}

// configTemplate is the annotated config written on first run.
const configTemplate = `# toggl-absence configuration
#
# Only the two ids below are required. Every value can also be set through
# the environment, e.g. TOGGL_ABSENCE_ABSENCE_USERID or TOGGL_ABSENCE_HTTP_TIMEOUT.
absence:
  # absence.io user id (Profile → Integrations → API key id).
  userid: ""
  # baseurl: https://app.absence.io/api/v2

toggl:
  # Toggl workspace id, visible in the URL of the workspace settings.
  workspaceid: ""
  # baseurl: https://api.track.toggl.com/reports/api/v2

http:
  timeout: 30s

# Gaps between two entries within these bounds are uploaded as breaks.
breaks:
  minminutes: 10
  maxminutes: 120

# Extra UTC offsets and the zone names absence.io should receive for them.
# timezones:
#   "+0000": "GMT"

credentials:
  # keyring (operating system keychain) or aws (AWS Secrets Manager).
  backend: keyring
`

// DefaultPath returns ~/.toggl-absence/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".toggl-absence", "config.yaml"), nil
}

// Load layers built-in defaults, the YAML file at path and TOGGL_ABSENCE_*
// environment variables. A missing file is created from the annotated template.
func Load(path string) (Application, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaults(), "koanf"), nil); err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return Application{}, fmt.Errorf("parsing config file %s: %w", path, err)
		}
		log.Infof("Config file not found at %s, writing defaults", path)
		if writeErr := writeDefault(path); writeErr != nil {
			log.Warnf("could not create config file %s: %v", path, writeErr)
		}
	} else {
		log.Debugf("Loaded configuration from file: %s", path)
	}

	err := k.Load(env.Provider(".", env.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(k, v string) (string, any) {
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, EnvPrefix)), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, fmt.Errorf("decoding config: %w", err)
	}

	// configured offsets extend the built-in table rather than replace it
	zones := make(map[string]string, len(app.Timezones)+2)
	for offset, name := range timezone.DefaultTable() {
		zones[offset] = name
	}
	for offset, name := range app.Timezones {
		zones[strings.ReplaceAll(strings.TrimSpace(offset), ":", "")] = name
	}
	app.Timezones = zones
	return app, nil
}

// Validate reports the first setting that prevents a run.
func (a Application) Validate() error {
	switch {
	case a.Absence.UserID == "":
		return errors.New("absence.userid is required")
	case a.Toggl.WorkspaceID == "":
		return errors.New("toggl.workspaceid is required")
	case a.Breaks.MinMinutes < 0 || a.Breaks.MaxMinutes < a.Breaks.MinMinutes:
		return fmt.Errorf("invalid break bounds %d..%d minutes", a.Breaks.MinMinutes, a.Breaks.MaxMinutes)
	case a.HTTP.Timeout <= 0:
		return fmt.Errorf("invalid http.timeout %s, must be positive", a.HTTP.Timeout)
	}
	return nil
}

// writeDefault creates the config directory and writes the annotated template.
func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}
