package keychain

import (
	"errors"
	"log/slog"

	"github.com/roach88/sidecar/internal/apperr"
)

// Vault stores one secret string per provider.
type Vault struct {
	store Store
}

// NewVault wraps a backend Store.
func NewVault(store Store) *Vault {
	return &Vault{store: store}
}

// NewSystemVault returns a Vault over the OS secret store.
func NewSystemVault() *Vault {
	return NewVault(NewSystemStore())
}

// Store upserts the secret for provider.
func (v *Vault) Store(provider, secret string) error {
	if err := v.store.Set(provider, secret); err != nil {
		return apperr.Wrap(apperr.CodeKeyring, err)
	}
	slog.Debug("credentials stored", "provider", provider)
	return nil
}

// Retrieve returns the secret for provider. ok is false when no entry
// exists; that is not an error.
func (v *Vault) Retrieve(provider string) (secret string, ok bool, err error) {
	secret, err = v.store.Get(provider)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", false, nil
		}
		return "", false, apperr.Wrap(apperr.CodeKeyring, err)
	}
	return secret, true, nil
}

// Delete removes the entry for provider. Deleting a missing entry succeeds.
func (v *Vault) Delete(provider string) error {
	if err := v.store.Delete(provider); err != nil && !errors.Is(err, ErrNotFound) {
		return apperr.Wrap(apperr.CodeKeyring, err)
	}
	slog.Debug("credentials deleted", "provider", provider)
	return nil
}
