package credentials

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
	log "github.com/sirupsen/logrus"
)

// PromptFunc asks the user for a secret.
type PromptFunc func(title string) (string, error)

// NewPasswordPrompt creates a PromptFunc using huh's masked input component.
func NewPasswordPrompt() PromptFunc {
	return func(title string) (string, error) {
		var result string
		err := huh.NewInput().
			Title(title).
			EchoMode(huh.EchoModePassword).
			Value(&result).
			Run()
		return result, err
	}
}

// IsInteractive reports whether stdin is a terminal that can be prompted.
func IsInteractive() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Provider resolves secrets from a Store, prompting for and persisting any
// that are missing.
type Provider struct {
	store       Store
	prompt      PromptFunc
	interactive func() bool
}

func NewProvider(store Store, prompt PromptFunc, interactive func() bool) *Provider {
	return &Provider{store: store, prompt: prompt, interactive: interactive}
}

// Resolve returns the stored secret, or prompts for it when the store has none.
func (p *Provider) Resolve(ctx context.Context, service, account string) (string, error) {
	secret, err := p.store.Get(ctx, service, account)
	if err == nil && secret != "" {
		return secret, nil
	}
	if err != nil && !errors.Is(err, ErrNotFound) {
		return "", err
	}
	log.WithFields(log.Fields{"service": service, "account": account}).Debug("no stored credential")
	return p.Reset(ctx, service, account)
}

// Reset prompts for the secret unconditionally and stores the answer.
func (p *Provider) Reset(ctx context.Context, service, account string) (string, error) {
	if !p.interactive() {
		return "", fmt.Errorf("%w: no %s key stored for %q and stdin is not a terminal", ErrCredentialMissing, service, account)
	}
	secret, err := p.prompt(service + " key?")
	if err != nil {
		return "", fmt.Errorf("prompting for %s key: %w", service, err)
	}
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return "", fmt.Errorf("%w: empty %s key", ErrCredentialMissing, service)
	}
	if err := p.store.Set(ctx, service, account, secret); err != nil {
		return "", err
	}
	log.WithFields(log.Fields{"service": service, "account": account}).Info("stored credential")
	return secret, nil
}
