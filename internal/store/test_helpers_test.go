package store

import (
	"path/filepath"
	"testing"

	"github.com/manvel7/Antd-small-test/internal/user"
)

// createTestStore creates a new file-backed store with deterministic IDs.
func createTestStore(t *testing.T, ids ...string) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, WithIDGenerator(NewFixedGenerator(ids...)))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestInput creates a valid input with the given name.
func createTestInput(name string) user.Input {
	return user.Input{Name: name, Age: 30, Phone: "+37412345678", Country: "AM"}
}
