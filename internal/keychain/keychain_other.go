//go:build !darwin

package keychain

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// SystemStore provides secret operations on the platform keyring
// (Secret Service over D-Bus on Linux, Credential Manager on Windows).
type SystemStore struct {
	service string
}

// NewSystemStore creates a new keyring-backed secret store.
func NewSystemStore() *SystemStore {
	return &SystemStore{service: ServiceName}
}

// Set stores a secret in the keyring. Overwrites if it already exists.
func (s *SystemStore) Set(key, value string) error {
	if err := keyring.Set(s.service, key, value); err != nil {
		return fmt.Errorf("keyring set %q: %w", key, err)
	}
	return nil
}

// Get retrieves a secret from the keyring.
func (s *SystemStore) Get(key string) (string, error) {
	val, err := keyring.Get(s.service, key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return "", fmt.Errorf("keyring get %q: %w", key, err)
	}
	return val, nil
}

// Delete removes a secret from the keyring.
func (s *SystemStore) Delete(key string) error {
	if err := keyring.Delete(s.service, key); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return fmt.Errorf("keyring delete %q: %w", key, err)
	}
	return nil
}
