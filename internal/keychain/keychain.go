// Package keychain provides provider credential storage backed by the OS
// secret store.
//
// Entries are generic passwords addressed by:
//   - Service: "sidecar-app" (all sidecar credentials share this service)
//   - Account: the provider name (e.g. "google", "slack")
//
// On macOS the backend is the login Keychain, scoped
// kSecAttrAccessibleWhenUnlockedThisDeviceOnly and never synced. Elsewhere it
// is the platform keyring: Secret Service on Linux, Credential Manager on
// Windows.
//
// Vault is the facade callers use. It turns backend failures into
// apperr.CodeKeyring errors, reports a missing entry as an absent result
// rather than an error, and treats deleting a missing entry as success.
package keychain

import "errors"

// ServiceName is the service attribute for every sidecar credential.
const ServiceName = "sidecar-app"

// ErrNotFound is returned by a Store when an entry does not exist.
var ErrNotFound = errors.New("secret not found")

// Store is the backend interface for secret storage operations.
// Delete on a missing key returns nil or an error wrapping ErrNotFound.
type Store interface {
	Set(key, value string) error
	Get(key string) (string, error)
	Delete(key string) error
}
