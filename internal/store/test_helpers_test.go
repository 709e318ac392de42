package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/sidecar/internal/value"
)

// createTestStore creates a new store in a temp directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// mustExec runs a statement and fails the test on error.
func mustExec(t *testing.T, s *Store, query string, params ...value.Value) int64 {
	t.Helper()
	n, err := s.Execute(context.Background(), query, params)
	if err != nil {
		t.Fatalf("Execute(%q) failed: %v", query, err)
	}
	return n
}
