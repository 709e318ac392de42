package config

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"

	"github.com/roach88/sidecar/internal/apperr"
)

// AppName names the per-user application directories.
const AppName = "sidecar"

// DatabaseFile is the default SQLite file name inside DataDir.
const DatabaseFile = "sidecar.db"

// DataDir returns the per-user local data directory for sidecar
// (XDG_DATA_HOME/sidecar on Linux, ~/Library/Application Support/sidecar on
// macOS, %LOCALAPPDATA%\sidecar on Windows), creating it if absent.
func DataDir() (string, error) {
	dir := filepath.Join(xdg.DataHome, AppName)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", apperr.Wrap(apperr.CodeInvalidState, err)
	}
	return dir, nil
}

// DefaultDatabasePath returns DataDir()/sidecar.db.
func DefaultDatabasePath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DatabaseFile), nil
}

// DefaultPath returns the default config file path. It does not create
// anything.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.yaml")
}
