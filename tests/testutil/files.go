package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// MustWriteFile writes content to path, creating parent directories
func MustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
}

// MustWriteSized writes size bytes of filler to path. Files of equal size
// have identical content.
func MustWriteSized(t *testing.T, path string, size int) {
	t.Helper()
	MustWriteFile(t, path, string(bytes.Repeat([]byte{'x'}, size)))
}

// SetModTime sets both access and modification time of path
func SetModTime(t *testing.T, path string, modTime time.Time) {
	t.Helper()
	if err := os.Chtimes(path, modTime, modTime); err != nil {
		t.Fatalf("failed to set mod time: %v", err)
	}
}

// MustExist fails the test unless path exists
func MustExist(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected %s to exist: %v", path, err)
	}
}

// MustNotExist fails the test if path exists
func MustNotExist(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Fatalf("expected %s not to exist", path)
	}
}
