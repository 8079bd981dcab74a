package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	// ErrPathNotFound means the root or entry does not exist
	ErrPathNotFound = errors.New("path not found")
	// ErrNotADirectory means the root exists but is not a directory
	ErrNotADirectory = errors.New("not a directory")
	// ErrPermissionDenied means the process may not read the entry
	ErrPermissionDenied = errors.New("permission denied")
	// ErrOutsideRoot means a relative path escapes the backend root
	ErrOutsideRoot = errors.New("path escapes storage root")
)

// Backend is the filesystem accessor used by the scanner and file operations.
// Paths are relative to the backend root and use forward slashes.
type Backend interface {
	// Probe checks that the root exists, is a directory and is readable
	Probe(ctx context.Context) error

	// Walk visits every entry below the root. Entries that cannot be read are
	// reported to onError and skipped.
	Walk(ctx context.Context, fn WalkFunc, onError ErrorFunc) error

	// List returns the direct children of the root
	List(ctx context.Context) ([]*FileInfo, error)

	Open(ctx context.Context, path string) (io.ReadCloser, error)
	Stat(ctx context.Context, path string) (*FileInfo, error)
	Exists(ctx context.Context, path string) (bool, error)
	MkdirAll(ctx context.Context, path string) error
	Rename(ctx context.Context, from, to string) error
	Remove(ctx context.Context, path string) error

	// Abs maps a relative path to an absolute host path
	Abs(path string) string

	Close() error
}

// WalkFunc is called for each entry during Walk
type WalkFunc func(path string, info *FileInfo) error

// ErrorFunc receives per-entry failures during Walk
type ErrorFunc func(path string, err error)

// FileInfo contains entry metadata
type FileInfo struct {
	Path      string
	Name      string
	Size      int64
	ModTime   time.Time
	CreatedAt time.Time
	IsDir     bool
	IsRegular bool
}
