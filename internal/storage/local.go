package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// LocalFSBackend implements Backend for a local directory
type LocalFSBackend struct {
	rootPath string
}

// NewLocalFSBackend creates a backend rooted at rootPath. The root does not
// have to exist yet; Probe reports that.
func NewLocalFSBackend(rootPath string) (*LocalFSBackend, error) {
	absPath, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	// temp dirs are symlinked on some systems, resolve so boundary checks hold
	if evalPath, err := filepath.EvalSymlinks(absPath); err == nil {
		absPath = evalPath
	}

	return &LocalFSBackend{rootPath: absPath}, nil
}

// Probe checks if the root is an accessible directory
func (b *LocalFSBackend) Probe(ctx context.Context) error {
	info, err := os.Stat(b.rootPath)
	if err != nil {
		return fmt.Errorf("%s: %w", b.rootPath, classify(err))
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: %w", b.rootPath, ErrNotADirectory)
	}

	f, err := os.Open(b.rootPath)
	if err != nil {
		return fmt.Errorf("%s: %w", b.rootPath, classify(err))
	}
	defer f.Close()

	if _, err := f.Readdirnames(1); err != nil && err != io.EOF {
		return fmt.Errorf("%s: %w", b.rootPath, classify(err))
	}
	return nil
}

// Walk visits every entry below the root in lexical order. Symlinks are
// reported but never followed.
func (b *LocalFSBackend) Walk(ctx context.Context, fn WalkFunc, onError ErrorFunc) error {
	return filepath.WalkDir(b.rootPath, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		relPath := b.rel(path)

		if err != nil {
			if relPath == "." {
				return fmt.Errorf("%s: %w", b.rootPath, classify(err))
			}
			if onError != nil {
				onError(relPath, classify(err))
			}
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if relPath == "." {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			if onError != nil {
				onError(relPath, classify(err))
			}
			return nil
		}

		return fn(relPath, toFileInfo(relPath, info))
	})
}

// List returns the direct children of the root sorted by name
func (b *LocalFSBackend) List(ctx context.Context) ([]*FileInfo, error) {
	entries, err := os.ReadDir(b.rootPath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.rootPath, classify(err))
	}

	infos := make([]*FileInfo, 0, len(entries))
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			continue
		}
		infos = append(infos, toFileInfo(entry.Name(), info))
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Path < infos[j].Path })
	return infos, nil
}

// Open opens a file for reading
func (b *LocalFSBackend) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	absPath, err := b.resolve(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", classify(err))
	}
	return f, nil
}

// Stat returns entry metadata
func (b *LocalFSBackend) Stat(ctx context.Context, path string) (*FileInfo, error) {
	absPath, err := b.resolve(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Lstat(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", classify(err))
	}
	return toFileInfo(path, info), nil
}

// Exists reports whether path exists below the root
func (b *LocalFSBackend) Exists(ctx context.Context, path string) (bool, error) {
	_, err := b.Stat(ctx, path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrPathNotFound):
		return false, nil
	default:
		return false, err
	}
}

// MkdirAll creates path and any missing parents
func (b *LocalFSBackend) MkdirAll(ctx context.Context, path string) error {
	absPath, err := b.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(absPath, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", classify(err))
	}
	return nil
}

// Rename moves from to to. Both stay inside the root.
func (b *LocalFSBackend) Rename(ctx context.Context, from, to string) error {
	src, err := b.resolve(from)
	if err != nil {
		return err
	}
	dst, err := b.resolve(to)
	if err != nil {
		return err
	}
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("failed to move file: %w", classify(err))
	}
	return nil
}

// Remove deletes a single file
func (b *LocalFSBackend) Remove(ctx context.Context, path string) error {
	absPath, err := b.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(absPath); err != nil {
		return fmt.Errorf("failed to delete file: %w", classify(err))
	}
	return nil
}

// Abs maps a relative path to its absolute host path
func (b *LocalFSBackend) Abs(path string) string {
	return filepath.Join(b.rootPath, filepath.FromSlash(path))
}

// Close is a no-op for the local filesystem
func (b *LocalFSBackend) Close() error {
	return nil
}

// RootPath returns the absolute root path of this backend
func (b *LocalFSBackend) RootPath() string {
	return b.rootPath
}

func (b *LocalFSBackend) rel(path string) string {
	relPath, err := filepath.Rel(b.rootPath, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(relPath)
}

// resolve joins path onto the root and rejects anything that lands outside
// it, including through symlinks.
func (b *LocalFSBackend) resolve(path string) (string, error) {
	if strings.ContainsRune(path, 0) {
		return "", fmt.Errorf("%w: %q", ErrOutsideRoot, path)
	}

	absPath := filepath.Join(b.rootPath, filepath.FromSlash(path))
	if !within(b.rootPath, absPath) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, path)
	}

	if evalPath, err := filepath.EvalSymlinks(absPath); err == nil {
		if !within(b.rootPath, evalPath) {
			return "", fmt.Errorf("%w: symlink %s", ErrOutsideRoot, path)
		}
	}
	return absPath, nil
}

func within(root, path string) bool {
	if path == root {
		return true
	}
	return strings.HasPrefix(path, root+string(filepath.Separator))
}

func toFileInfo(path string, info fs.FileInfo) *FileInfo {
	return &FileInfo{
		Path:      path,
		Name:      info.Name(),
		Size:      info.Size(),
		ModTime:   info.ModTime(),
		CreatedAt: createdAt(info),
		IsDir:     info.IsDir(),
		IsRegular: info.Mode().IsRegular(),
	}
}

func classify(err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %v", ErrPathNotFound, err)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	default:
		return err
	}
}
