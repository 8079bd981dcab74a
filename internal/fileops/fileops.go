// Package fileops performs bulk moves and deletes on the local filesystem.
package fileops

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"

	"github.com/hashicorp/go-multierror"

	"github.com/jeffanddom/organizex/internal/filetype"
	"github.com/jeffanddom/organizex/internal/logging"
	"github.com/jeffanddom/organizex/internal/storage"
)

// Move records one file relocation
type Move struct {
	From string         `json:"from"`
	To   string         `json:"to"`
	Type filetype.Label `json:"type"`
}

// OrganizeResult summarises an Organize call
type OrganizeResult struct {
	Root      string                   `json:"root"`
	Organized int64                    `json:"filesOrganized"`
	Moves     []Move                   `json:"moves"`
	FileTypes map[filetype.Label]int64 `json:"fileTypes"`
	Errors    []string                 `json:"errors"`
}

// DeleteResult summarises a Delete call
type DeleteResult struct {
	Deleted    int64    `json:"deletedCount"`
	BytesFreed int64    `json:"totalSizeFreed"`
	Errors     []string `json:"errors"`
}

// Operator moves and deletes files
type Operator struct {
	logger logging.Logger
}

// New creates an Operator
func New(logger logging.Logger) *Operator {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Operator{logger: logger}
}

// Organize moves every regular file directly inside root whose type is
// enabled in rules into root/<type>/. Existing files are never overwritten:
// a clash on name.ext is resolved as name_1.ext, name_2.ext and so on.
// Failures on single files are collected in the result.
func (o *Operator) Organize(ctx context.Context, root string, rules map[filetype.Label]bool) (*OrganizeResult, error) {
	backend, err := storage.NewLocalFSBackend(root)
	if err != nil {
		return nil, err
	}
	defer backend.Close()

	if err := backend.Probe(ctx); err != nil {
		return nil, err
	}

	entries, err := backend.List(ctx)
	if err != nil {
		return nil, err
	}

	result := &OrganizeResult{
		Root:      backend.RootPath(),
		Moves:     []Move{},
		FileTypes: make(map[filetype.Label]int64),
	}
	var errs *multierror.Error

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !entry.IsRegular {
			continue
		}

		label := filetype.Lookup(filetype.Ext(entry.Name))
		if !rules[label] {
			continue
		}

		to, err := o.move(ctx, backend, entry.Name, string(label))
		if err != nil {
			o.logger.Warn("failed to organize file", "root", result.Root, "file", entry.Name, "error", err)
			errs = multierror.Append(errs, fmt.Errorf("Failed to organize %s: %w", entry.Name, err))
			continue
		}

		result.Organized++
		result.FileTypes[label]++
		result.Moves = append(result.Moves, Move{
			From: backend.Abs(entry.Name),
			To:   backend.Abs(to),
			Type: label,
		})
	}

	result.Errors = messages(errs)
	o.logger.Info("organized folder", "root", result.Root, "moved", result.Organized, "errors", len(result.Errors))
	return result, nil
}

func (o *Operator) move(ctx context.Context, backend storage.Backend, name, dir string) (string, error) {
	if err := backend.MkdirAll(ctx, dir); err != nil {
		return "", err
	}

	to, err := freeName(ctx, backend, dir, name)
	if err != nil {
		return "", err
	}
	if err := backend.Rename(ctx, name, to); err != nil {
		return "", err
	}
	return to, nil
}

// freeName returns dir/name, or the first dir/stem_N.ext that does not
// exist. Dotfiles keep the suffix at the end: .bashrc_1.
func freeName(ctx context.Context, backend storage.Backend, dir, name string) (string, error) {
	stem, ext := filetype.SplitExt(name)

	candidate := path.Join(dir, name)
	for n := 1; ; n++ {
		exists, err := backend.Exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = path.Join(dir, fmt.Sprintf("%s_%d%s", stem, n, ext))
	}
}

// Delete removes each listed file. Missing paths and failures are reported
// per entry and do not stop the remaining deletions.
func (o *Operator) Delete(ctx context.Context, paths []string) (*DeleteResult, error) {
	result := &DeleteResult{}
	var errs *multierror.Error

	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		size, err := deleteOne(ctx, p)
		switch {
		case errors.Is(err, storage.ErrPathNotFound):
			errs = multierror.Append(errs, fmt.Errorf("File not found: %s", p))
		case err != nil:
			o.logger.Warn("failed to delete file", "path", p, "error", err)
			errs = multierror.Append(errs, fmt.Errorf("Failed to delete %s: %w", p, err))
		default:
			o.logger.Debug("deleted file", "path", p, "size", size)
			result.Deleted++
			result.BytesFreed += size
		}
	}

	result.Errors = messages(errs)
	return result, nil
}

func deleteOne(ctx context.Context, p string) (int64, error) {
	if p == "" {
		return 0, storage.ErrPathNotFound
	}

	backend, err := storage.NewLocalFSBackend(filepath.Dir(p))
	if err != nil {
		return 0, err
	}
	defer backend.Close()

	name := filepath.Base(p)
	info, err := backend.Stat(ctx, name)
	if err != nil {
		return 0, err
	}
	if !info.IsRegular {
		return 0, storage.ErrPathNotFound
	}
	if err := backend.Remove(ctx, name); err != nil {
		return 0, err
	}
	return info.Size, nil
}

func messages(errs *multierror.Error) []string {
	out := []string{}
	if errs == nil {
		return out
	}
	for _, err := range errs.Errors {
		out = append(out, err.Error())
	}
	return out
}
