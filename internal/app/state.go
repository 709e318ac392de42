// Package app holds the process-wide resources behind the sidecar commands.
//
// State owns three independent shared resources, each behind its own mutex:
//   - the SQLite store (nil until InitDatabase)
//   - the derived encryption key (nil until InitEncryption)
//   - the OAuth state guard (locks internally)
//
// No method holds more than one of these locks. Operations on a resource that
// has not been initialized fail with an error; they never panic. A failed
// operation leaves its resource usable.
package app

import (
	"context"
	"log/slog"
	"sync"

	"github.com/roach88/sidecar/internal/apperr"
	"github.com/roach88/sidecar/internal/config"
	"github.com/roach88/sidecar/internal/envelope"
	"github.com/roach88/sidecar/internal/keychain"
	"github.com/roach88/sidecar/internal/oauth"
	"github.com/roach88/sidecar/internal/store"
	"github.com/roach88/sidecar/internal/value"
)

// DefaultStateLength is the length of tokens generated by BeginOAuth.
const DefaultStateLength = 32

// State is the process state container.
type State struct {
	dbMu sync.Mutex
	db   *store.Store

	keyMu sync.Mutex
	key   *envelope.Key

	oauth *oauth.StateGuard
	vault *keychain.Vault

	stateLength   int
	defaultDBPath func() (string, error)
}

// Option configures a State.
type Option func(*State)

// WithVault sets the credential vault. The default is the OS secret store.
func WithVault(v *keychain.Vault) Option {
	return func(s *State) { s.vault = v }
}

// WithStateLength sets the OAuth state token length used by BeginOAuth.
func WithStateLength(n int) Option {
	return func(s *State) { s.stateLength = n }
}

// WithDefaultDatabasePath overrides how InitDatabase resolves an empty path.
func WithDefaultDatabasePath(resolve func() (string, error)) Option {
	return func(s *State) { s.defaultDBPath = resolve }
}

// New creates a State with no database and no key.
func New(opts ...Option) *State {
	s := &State{
		oauth:         oauth.NewStateGuard(),
		stateLength:   DefaultStateLength,
		defaultDBPath: config.DefaultDatabasePath,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.vault == nil {
		s.vault = keychain.NewSystemVault()
	}
	return s
}

// InitDatabase opens the store at path (or the default data location when
// path is empty) and installs it as the sole connection. A previously
// installed connection is closed.
func (s *State) InitDatabase(path string) error {
	if path == "" {
		resolved, err := s.defaultDBPath()
		if err != nil {
			return err
		}
		path = resolved
	}

	st, err := store.Open(path)
	if err != nil {
		return err
	}

	s.dbMu.Lock()
	old := s.db
	s.db = st
	s.dbMu.Unlock()

	if old != nil {
		if err := old.Close(); err != nil {
			slog.Warn("error closing replaced database", "path", old.Path(), "error", err)
		}
		slog.Debug("database replaced", "old", old.Path(), "new", path)
	} else {
		slog.Debug("database opened", "path", path)
	}
	return nil
}

// DatabasePath returns the path of the installed store, if any.
func (s *State) DatabasePath() (string, bool) {
	s.dbMu.Lock()
	defer s.dbMu.Unlock()
	if s.db == nil {
		return "", false
	}
	return s.db.Path(), true
}

// Execute runs a mutating statement and returns rows affected.
func (s *State) Execute(ctx context.Context, query string, params []value.Value) (int64, error) {
	s.dbMu.Lock()
	defer s.dbMu.Unlock()

	if s.db == nil {
		return 0, errDatabaseNotInitialized()
	}
	return s.db.Execute(ctx, query, params)
}

// Query runs a read statement and returns every row.
func (s *State) Query(ctx context.Context, query string, params []value.Value) ([]value.Row, error) {
	s.dbMu.Lock()
	defer s.dbMu.Unlock()

	if s.db == nil {
		return nil, errDatabaseNotInitialized()
	}
	return s.db.Query(ctx, query, params)
}

func errDatabaseNotInitialized() error {
	return apperr.New(apperr.CodeInvalidState, "Database not initialized")
}

// InitEncryption derives the key from passphrase and installs it,
// replacing any earlier key.
func (s *State) InitEncryption(passphrase string) {
	key := envelope.DeriveKey(passphrase)

	s.keyMu.Lock()
	s.key = &key
	s.keyMu.Unlock()

	slog.Debug("encryption key installed")
}

// Encrypt seals plaintext under the installed key.
func (s *State) Encrypt(plaintext string) (string, error) {
	s.keyMu.Lock()
	defer s.keyMu.Unlock()

	if s.key == nil {
		return "", errEncryptionNotInitialized()
	}
	return envelope.Encrypt(*s.key, plaintext)
}

// Decrypt opens an envelope under the installed key.
func (s *State) Decrypt(ciphertext string) (string, error) {
	s.keyMu.Lock()
	defer s.keyMu.Unlock()

	if s.key == nil {
		return "", errEncryptionNotInitialized()
	}
	return envelope.Decrypt(*s.key, ciphertext)
}

func errEncryptionNotInitialized() error {
	return apperr.New(apperr.CodeEncryption, "Encryption not initialized")
}

// StoreCredentials saves the secret for provider in the vault.
func (s *State) StoreCredentials(provider, secret string) error {
	return s.vault.Store(provider, secret)
}

// GetCredentials returns the secret for provider; ok is false when absent.
func (s *State) GetCredentials(provider string) (secret string, ok bool, err error) {
	return s.vault.Retrieve(provider)
}

// DeleteCredentials removes the secret for provider. Absent entries are fine.
func (s *State) DeleteCredentials(provider string) error {
	return s.vault.Delete(provider)
}

// StoreOAuthState issues token as provider's pending OAuth state.
func (s *State) StoreOAuthState(provider, token string) {
	s.oauth.Issue(provider, token)
}

// ValidateOAuthState checks and consumes provider's pending OAuth state.
func (s *State) ValidateOAuthState(provider, token string) bool {
	return s.oauth.Validate(provider, token)
}

// BeginOAuth generates, issues and returns a fresh OAuth state for provider.
func (s *State) BeginOAuth(provider string) (string, error) {
	token, err := s.oauth.Begin(provider, s.stateLength)
	if err != nil {
		return "", apperr.Wrap(apperr.CodeInvalidState, err)
	}
	return token, nil
}

// Close closes the installed store, if any.
func (s *State) Close() error {
	s.dbMu.Lock()
	defer s.dbMu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	if err != nil {
		return apperr.Wrap(apperr.CodeDatabase, err)
	}
	return nil
}
