package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sidecar/internal/apperr"
	"github.com/roach88/sidecar/internal/testutil"
	"github.com/roach88/sidecar/internal/value"
)

func newTestState(t *testing.T, opts ...Option) *State {
	t.Helper()
	vault, _ := testutil.MemoryVault()
	opts = append([]Option{WithVault(vault)}, opts...)
	s := New(opts...)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestDatabaseNotInitialized(t *testing.T) {
	s := newTestState(t)
	ctx := context.Background()

	_, err := s.Execute(ctx, "CREATE TABLE t (x)", nil)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeInvalidState))
	assert.Equal(t, "Invalid state: Database not initialized", err.Error())

	_, err = s.Query(ctx, "SELECT 1", nil)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeInvalidState))

	_, ok := s.DatabasePath()
	assert.False(t, ok)
}

func TestInitDatabaseAndQuery(t *testing.T) {
	s := newTestState(t)
	ctx := context.Background()
	path := testutil.TempDatabasePath(t)

	require.NoError(t, s.InitDatabase(path))
	got, ok := s.DatabasePath()
	require.True(t, ok)
	assert.Equal(t, path, got)

	_, err := s.Execute(ctx, "CREATE TABLE notes (id INTEGER PRIMARY KEY, body TEXT)", nil)
	require.NoError(t, err)

	n, err := s.Execute(ctx, "INSERT INTO notes (body) VALUES (?)", []value.Value{value.Text("hello")})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	rows, err := s.Query(ctx, "SELECT id, body FROM notes", nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	body, _ := rows[0].Get("body")
	assert.Equal(t, value.Text("hello"), body)
}

func TestInitDatabaseDefaultPath(t *testing.T) {
	path := testutil.TempDatabasePath(t)
	s := newTestState(t, WithDefaultDatabasePath(testutil.FixedDefaultPath(path)))

	require.NoError(t, s.InitDatabase(""))
	got, ok := s.DatabasePath()
	require.True(t, ok)
	assert.Equal(t, path, got)
}

func TestInitDatabaseDefaultPathFailure(t *testing.T) {
	boom := apperr.New(apperr.CodeInvalidState, "no data dir")
	s := newTestState(t, WithDefaultDatabasePath(func() (string, error) { return "", boom }))

	err := s.InitDatabase("")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeInvalidState))

	_, ok := s.DatabasePath()
	assert.False(t, ok)
}

func TestInitDatabaseFailureKeepsPreviousStore(t *testing.T) {
	s := newTestState(t)
	ctx := context.Background()
	path := testutil.TempDatabasePath(t)
	require.NoError(t, s.InitDatabase(path))

	err := s.InitDatabase("/nonexistent/dir/that/does/not/exist/x.db")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeDatabase))

	got, ok := s.DatabasePath()
	require.True(t, ok)
	assert.Equal(t, path, got)
	_, err = s.Query(ctx, "SELECT 1 AS one", nil)
	assert.NoError(t, err)
}

func TestInitDatabaseReplacesConnection(t *testing.T) {
	s := newTestState(t)
	ctx := context.Background()

	first := testutil.TempDatabasePath(t)
	require.NoError(t, s.InitDatabase(first))
	_, err := s.Execute(ctx, "CREATE TABLE only_in_first (x)", nil)
	require.NoError(t, err)

	second := testutil.TempDatabasePath(t)
	require.NoError(t, s.InitDatabase(second))

	got, _ := s.DatabasePath()
	assert.Equal(t, second, got)

	// The table lives in the first file, so the second connection cannot see it
	_, err = s.Query(ctx, "SELECT x FROM only_in_first", nil)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeDatabase))
}

func TestConcurrentExecuteIsSerialized(t *testing.T) {
	s := newTestState(t)
	ctx := context.Background()
	require.NoError(t, s.InitDatabase(testutil.TempDatabasePath(t)))

	_, err := s.Execute(ctx, testutil.CounterSchemaSQL, nil)
	require.NoError(t, err)
	_, err = s.Execute(ctx, testutil.CounterSeedSQL, nil)
	require.NoError(t, err)

	const workers = 40
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Execute(ctx, testutil.IncrementCounterSQL, []value.Value{value.Int(1)}); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("increment failed: %v", err)
	}

	rows, err := s.Query(ctx, testutil.ReadCounterSQL, nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	n, _ := rows[0].Get("n")
	assert.Equal(t, value.Int(workers), n)
}

func TestFailedStatementLeavesDatabaseUsable(t *testing.T) {
	s := newTestState(t)
	ctx := context.Background()
	require.NoError(t, s.InitDatabase(testutil.TempDatabasePath(t)))

	_, err := s.Execute(ctx, "CREATE TABL broken", nil)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeDatabase))

	rows, err := s.Query(ctx, "SELECT 1 AS one", nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestEncryptionNotInitialized(t *testing.T) {
	s := newTestState(t)

	_, err := s.Encrypt("x")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeEncryption))
	assert.Equal(t, "Encryption error: Encryption not initialized", err.Error())

	_, err = s.Decrypt("AAAA")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeEncryption))
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	s := newTestState(t)
	s.InitEncryption("hunter2")

	sealed, err := s.Encrypt("top secret")
	require.NoError(t, err)
	assert.NotEqual(t, "top secret", sealed)

	opened, err := s.Decrypt(sealed)
	require.NoError(t, err)
	assert.Equal(t, "top secret", opened)
}

func TestInitEncryptionIsDeterministic(t *testing.T) {
	a := newTestState(t)
	b := newTestState(t)
	a.InitEncryption("same passphrase")
	b.InitEncryption("same passphrase")

	sealed, err := a.Encrypt("shared")
	require.NoError(t, err)
	opened, err := b.Decrypt(sealed)
	require.NoError(t, err)
	assert.Equal(t, "shared", opened)
}

func TestInitEncryptionReplacesKey(t *testing.T) {
	s := newTestState(t)
	s.InitEncryption("first")
	sealed, err := s.Encrypt("data")
	require.NoError(t, err)

	s.InitEncryption("second")
	_, err = s.Decrypt(sealed)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeEncryption))

	s.InitEncryption("first")
	opened, err := s.Decrypt(sealed)
	require.NoError(t, err)
	assert.Equal(t, "data", opened)
}

func TestCredentials(t *testing.T) {
	vault, mem := testutil.MemoryVault()
	s := New(WithVault(vault))

	_, ok, err := s.GetCredentials("github")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.StoreCredentials("github", "tok-1"))
	require.NoError(t, s.StoreCredentials("github", "tok-2"))
	assert.Equal(t, 1, mem.Len())

	secret, ok, err := s.GetCredentials("github")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "tok-2", secret)

	require.NoError(t, s.DeleteCredentials("github"))
	require.NoError(t, s.DeleteCredentials("github"))
	_, ok, err = s.GetCredentials("github")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOAuthStateSingleUse(t *testing.T) {
	s := newTestState(t)

	s.StoreOAuthState("google", "abc")
	assert.False(t, s.ValidateOAuthState("google", "abd"))
	assert.True(t, s.ValidateOAuthState("google", "abc"))
	assert.False(t, s.ValidateOAuthState("google", "abc"))
}

func TestBeginOAuth(t *testing.T) {
	s := newTestState(t, WithStateLength(48))

	token, err := s.BeginOAuth("slack")
	require.NoError(t, err)
	assert.Len(t, token, 48)
	assert.True(t, s.ValidateOAuthState("slack", token))
	assert.False(t, s.ValidateOAuthState("slack", token))
}

func TestBeginOAuthInvalidLength(t *testing.T) {
	s := newTestState(t, WithStateLength(0))

	_, err := s.BeginOAuth("slack")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeInvalidState))
}

func TestResourcesAreIndependent(t *testing.T) {
	s := newTestState(t)
	ctx := context.Background()
	require.NoError(t, s.InitDatabase(testutil.TempDatabasePath(t)))
	s.InitEncryption("k")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(3)
		provider := fmt.Sprintf("p%d", i)
		go func() {
			defer wg.Done()
			_, err := s.Query(ctx, "SELECT 1 AS one", nil)
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			sealed, err := s.Encrypt("x")
			if assert.NoError(t, err) {
				_, err = s.Decrypt(sealed)
				assert.NoError(t, err)
			}
		}()
		go func() {
			defer wg.Done()
			s.StoreOAuthState(provider, "tok")
			assert.True(t, s.ValidateOAuthState(provider, "tok"))
		}()
	}
	wg.Wait()
}

func TestCloseIsIdempotent(t *testing.T) {
	s := newTestState(t)
	require.NoError(t, s.InitDatabase(testutil.TempDatabasePath(t)))

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err := s.Query(context.Background(), "SELECT 1", nil)
	var appErr *apperr.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperr.CodeInvalidState, appErr.Code)
}
