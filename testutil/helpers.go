package testutil

import (
	"os"
	"testing"
	"time"
)

// CreateTempDir creates a temporary directory cleaned up with the test.
func CreateTempDir(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "session-feed-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	return dir
}

// Touch updates a file's modification time, for tests that depend on
// mtime ordering.
func Touch(t *testing.T, path string, when time.Time) {
	t.Helper()
	if err := os.Chtimes(path, when, when); err != nil {
		t.Fatalf("Failed to set mtime on %s: %v", path, err)
	}
}
