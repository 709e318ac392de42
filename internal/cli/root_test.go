package cli

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sidecar/internal/keychain"
	"github.com/roach88/sidecar/internal/testutil"
)

// cliResult captures one command invocation.
type cliResult struct {
	Stdout string
	Stderr string
	Err    error
}

// runCLI executes the command tree with args against opts. A missing config
// file is passed so the user's real config is never read.
func runCLI(t *testing.T, opts *RootOptions, stdin string, args ...string) cliResult {
	t.Helper()

	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	cmd := newRootCommand(opts)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))

	hasConfig := false
	for _, a := range args {
		if a == "--config" || strings.HasPrefix(a, "--config=") {
			hasConfig = true
		}
	}
	if !hasConfig {
		args = append([]string{"--config", filepath.Join(t.TempDir(), "absent.yaml")}, args...)
	}
	cmd.SetArgs(args)

	err := cmd.Execute()
	return cliResult{Stdout: stdout.String(), Stderr: stderr.String(), Err: err}
}

// testOptions returns RootOptions backed by an in-memory vault.
func testOptions() (*RootOptions, *keychain.MemoryStore) {
	vault, mem := testutil.MemoryVault()
	return &RootOptions{Vault: vault}, mem
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "sidecar", cmd.Use)
	assert.Contains(t, cmd.Long, "SQLite")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := [][]string{
		{"db", "init"},
		{"db", "exec"},
		{"db", "query"},
		{"crypto", "encrypt"},
		{"crypto", "decrypt"},
		{"secret", "set"},
		{"secret", "get"},
		{"secret", "delete"},
		{"util", "random-string"},
		{"util", "uuid"},
		{"util", "data-dir"},
		{"util", "open"},
	}

	for _, path := range commands {
		name := strings.Join(path, " ")
		t.Run(name, func(t *testing.T) {
			subCmd, _, err := cmd.Find(path)
			require.NoError(t, err, "Command %s should exist", name)
			require.NotNil(t, subCmd)
			assert.Equal(t, path[len(path)-1], subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "", configFlag.DefValue)
}

func TestDBCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	queryCmd, _, err := cmd.Find([]string{"db", "query"})
	require.NoError(t, err)

	dbFlag := queryCmd.Flags().Lookup("db")
	require.NotNil(t, dbFlag)
	assert.Equal(t, "", dbFlag.DefValue)
}

func TestCryptoCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	encryptCmd, _, err := cmd.Find([]string{"crypto", "encrypt"})
	require.NoError(t, err)

	envFlag := encryptCmd.Flags().Lookup("passphrase-env")
	require.NotNil(t, envFlag)
	assert.Equal(t, "", envFlag.DefValue)
}

func TestInvalidFormat(t *testing.T) {
	opts, _ := testOptions()
	res := runCLI(t, opts, "", "--format", "xml", "util", "uuid")

	require.Error(t, res.Err)
	assert.Equal(t, ExitCommandError, GetExitCode(res.Err))
	assert.Contains(t, res.Stderr, "invalid format")
	assert.Empty(t, res.Stdout)
}

func TestMalformedConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: shouting\n"), 0o600))

	opts, _ := testOptions()
	res := runCLI(t, opts, "", "--config", path, "util", "uuid")

	require.Error(t, res.Err)
	assert.Equal(t, ExitCommandError, GetExitCode(res.Err))
	assert.Contains(t, res.Stderr, "Error [SERIALIZATION]")
}

func TestConfigLoaded(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("state_length: 64\nlog_level: warn\n"), 0o600))

	opts, _ := testOptions()
	res := runCLI(t, opts, "", "--config", path, "util", "uuid")
	require.NoError(t, res.Err)

	require.NotNil(t, opts.Config)
	assert.Equal(t, 64, opts.Config.StateLength)
	assert.Equal(t, slog.LevelWarn, opts.Config.SlogLevel())
}

func TestVerboseLogsToStderr(t *testing.T) {
	opts, _ := testOptions()
	res := runCLI(t, opts, "", "-v", "util", "uuid")
	require.NoError(t, res.Err)

	assert.Contains(t, res.Stderr, "config loaded")
	assert.NotContains(t, res.Stdout, "config loaded")
}
