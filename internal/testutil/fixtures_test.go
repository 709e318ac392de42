package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTempDatabasePath_NotCreated(t *testing.T) {
	path := TempDatabasePath(t)

	assert.Equal(t, "sidecar.db", filepath.Base(path))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Parent exists so the store can create the file
	info, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestMemoryVault_SharesStore(t *testing.T) {
	v, mem := MemoryVault()

	require.NoError(t, v.Store("p", "s"))
	assert.Equal(t, 1, mem.Len())
}

func TestFixedDefaultPath(t *testing.T) {
	resolve := FixedDefaultPath("/tmp/x.db")

	path, err := resolve()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x.db", path)
}
