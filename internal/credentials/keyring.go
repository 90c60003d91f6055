package credentials

import (
	"context"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// KeyringStore keeps secrets in the operating system keychain.
type KeyringStore struct{}

func NewKeyringStore() KeyringStore {
	return KeyringStore{}
}

func (KeyringStore) Get(_ context.Context, service, account string) (string, error) {
	s, err := keyring.Get(service, account)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("reading %s/%s from keyring: %w", service, account, err)
	}
	return s, nil
}

func (KeyringStore) Set(_ context.Context, service, account, secret string) error {
	if err := keyring.Set(service, account, secret); err != nil {
		return fmt.Errorf("writing %s/%s to keyring: %w", service, account, err)
	}
	return nil
}

func (KeyringStore) Delete(_ context.Context, service, account string) error {
	err := keyring.Delete(service, account)
	if errors.Is(err, keyring.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("deleting %s/%s from keyring: %w", service, account, err)
	}
	return nil
}
