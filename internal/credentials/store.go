// Package credentials stores and resolves the Toggl and absence.io API keys.
//
// A Store is a plain get/set/delete capability keyed by service and account.
// Provider layers interactive prompting on top: when a key is missing it asks
// for it once and persists the answer.
package credentials

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

const (
	// ServiceAbsence is keyed by the absence.io user id.
	ServiceAbsence = "Absence.io"
	// ServiceToggl is keyed by the Toggl workspace id.
	ServiceToggl = "toggl.com"
)

var (
	// ErrNotFound is returned by a Store that has no secret for the key.
	ErrNotFound = errors.New("credential not found")
	// ErrCredentialMissing is returned when a secret is absent and cannot be prompted for.
	ErrCredentialMissing = errors.New("credential missing")
)

// Store persists secrets by service and account.
type Store interface {
	Get(ctx context.Context, service, account string) (string, error)
	Set(ctx context.Context, service, account, secret string) error
	Delete(ctx context.Context, service, account string) error
}

// MemoryStore keeps secrets in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	secrets map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{secrets: make(map[string]string)}
}

func memoryKey(service, account string) string {
	return service + "\x00" + account
}

func (m *MemoryStore) Get(_ context.Context, service, account string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.secrets[memoryKey(service, account)]
	if !ok {
		return "", ErrNotFound
	}
	return s, nil
}

func (m *MemoryStore) Set(_ context.Context, service, account, secret string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.secrets[memoryKey(service, account)] = secret
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, service, account string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := memoryKey(service, account)
	if _, ok := m.secrets[k]; !ok {
		return ErrNotFound
	}
	delete(m.secrets, k)
	return nil
}

// Backend names accepted by NewStore.
const (
	BackendKeyring = "keyring"
	BackendAWS     = "aws"
	BackendMemory  = "memory"
)

// NewStore returns the Store for the configured backend.
func NewStore(ctx context.Context, backend string, awsOpts AWSOptions) (Store, error) {
	switch backend {
	case "", BackendKeyring:
		return NewKeyringStore(), nil
	case BackendAWS:
		s, err := NewAWSStore(ctx, awsOpts)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown credential backend %q", backend)
	}
}
