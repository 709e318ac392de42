// Package testutil provides shared fixtures for sidecar tests.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/roach88/sidecar/internal/keychain"
)

// Counter table used by concurrency tests. Each IncrementCounterSQL call adds
// its single parameter to row 1.
const (
	CounterSchemaSQL    = "CREATE TABLE counter (id INTEGER PRIMARY KEY, n INTEGER NOT NULL)"
	CounterSeedSQL      = "INSERT INTO counter (id, n) VALUES (1, 0)"
	IncrementCounterSQL = "UPDATE counter SET n = n + ? WHERE id = 1"
	ReadCounterSQL      = "SELECT n FROM counter WHERE id = 1"
)

// TempDatabasePath returns a fresh database path inside t.TempDir().
// The file is not created.
func TempDatabasePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "sidecar.db")
}

// MemoryVault returns a Vault backed by an in-memory store, plus the store
// for inspection.
func MemoryVault() (*keychain.Vault, *keychain.MemoryStore) {
	mem := keychain.NewMemoryStore()
	return keychain.NewVault(mem), mem
}

// FixedDefaultPath returns a resolver that always yields path.
func FixedDefaultPath(path string) func() (string, error) {
	return func() (string, error) { return path, nil }
}
