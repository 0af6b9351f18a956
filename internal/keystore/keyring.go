package keystore

import (
	"context"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// KeyringStore keeps entries in the OS secret service (Keychain, wincred,
// libsecret). Unlike the SQLite store, the values are guarded by the
// platform and never land in the database file.
type KeyringStore struct {
	service string
}

// NewKeyringStore returns a Store backed by the OS keyring under the given
// service name.
func NewKeyringStore(service string) *KeyringStore {
	return &KeyringStore{service: service}
}

func (s *KeyringStore) Get(_ context.Context, key string) (string, error) {
	value, err := keyring.Get(s.service, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get keyring[%s]: %w", key, err)
	}
	return value, nil
}

func (s *KeyringStore) Set(_ context.Context, key, value string) error {
	if err := keyring.Set(s.service, key, value); err != nil {
		return fmt.Errorf("failed to set keyring[%s]: %w", key, err)
	}
	return nil
}

func (s *KeyringStore) Delete(_ context.Context, key string) error {
	err := keyring.Delete(s.service, key)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete keyring[%s]: %w", key, err)
	}
	return nil
}
