package scanner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/jeffanddom/organizex/internal/checksum"
	"github.com/jeffanddom/organizex/internal/filetype"
	"github.com/jeffanddom/organizex/internal/logging"
	"github.com/jeffanddom/organizex/internal/storage"
)

// Engine enumerates directory trees and produces file records
type Engine struct {
	config Config
	logger logging.Logger
}

// Config holds scanner configuration
type Config struct {
	ChecksumAlgorithm checksum.Algorithm
	ParallelWorkers   int
	FileTimeout       time.Duration
}

// FileRecord is a snapshot of one regular file at scan time
type FileRecord struct {
	Path      string         `json:"path"`
	Name      string         `json:"name"`
	Size      int64          `json:"size"`
	Type      filetype.Label `json:"type"`
	Extension string         `json:"extension"`
	Modified  time.Time      `json:"modified"`
	Created   time.Time      `json:"created"`
	// Digest is nil for zero-byte files
	Digest *string `json:"hash,omitempty"`
}

// RecordFunc receives each record as it is produced. Records arrive in no
// particular order.
type RecordFunc func(*FileRecord) error

// WalkSummary describes a completed walk
type WalkSummary struct {
	Root     string
	Files    int64
	Folders  int64
	Warnings *multierror.Error
}

// WarningCount returns the number of skipped entries
func (s *WalkSummary) WarningCount() int {
	if s == nil || s.Warnings == nil {
		return 0
	}
	return len(s.Warnings.Errors)
}

// NewEngine creates a new scanner engine
func NewEngine(config Config, logger logging.Logger) *Engine {
	if config.ParallelWorkers <= 0 {
		config.ParallelWorkers = 4
	}
	if config.FileTimeout <= 0 {
		config.FileTimeout = 5 * time.Minute
	}
	if config.ChecksumAlgorithm == "" {
		config.ChecksumAlgorithm = checksum.DefaultAlgorithm
	}
	if logger == nil {
		logger = logging.Nop()
	}

	return &Engine{config: config, logger: logger}
}

// Walk streams a record for every readable regular file below root. Digests
// are computed by a worker pool while the walk continues, so only in-flight
// records are held in memory.
func (e *Engine) Walk(ctx context.Context, root string, fn RecordFunc) (*WalkSummary, error) {
	backend, err := storage.NewLocalFSBackend(root)
	if err != nil {
		return nil, err
	}
	defer backend.Close()

	if err := backend.Probe(ctx); err != nil {
		return nil, err
	}

	summary := &WalkSummary{Root: backend.RootPath()}

	walkCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	pool := checksum.NewWorkerPool(e.config.ParallelWorkers)
	pool.Start(walkCtx)
	defer func() {
		pool.Stop()
		totals := pool.Totals()
		e.logger.Debug("hashing finished", "root", summary.Root, "hashed", totals.Hashed,
			"failed", totals.Failed, "bytes", totals.Bytes)
	}()

	var (
		mu        sync.Mutex
		pending   = make(map[string]*FileRecord)
		warnings  *multierror.Error
		folders   int64
		submitted int
	)

	warn := func(path string, err error) {
		e.logger.Warn("skipping entry", "root", summary.Root, "path", path, "error", err)
		mu.Lock()
		warnings = multierror.Append(warnings, fmt.Errorf("%s: %w", path, err))
		mu.Unlock()
	}

	direct := make(chan *FileRecord)
	walkDone := make(chan error, 1)

	go func() {
		err := backend.Walk(walkCtx, func(path string, info *storage.FileInfo) error {
			if info.IsDir {
				folders++
				return nil
			}
			if !info.IsRegular {
				return nil
			}

			record := newRecord(backend.Abs(path), info)
			if record.Size == 0 {
				select {
				case direct <- record:
					return nil
				case <-walkCtx.Done():
					return walkCtx.Err()
				}
			}

			mu.Lock()
			pending[record.Path] = record
			mu.Unlock()

			rel := path
			if err := pool.Submit(walkCtx, &checksum.Job{
				Path:      record.Path,
				Algorithm: e.config.ChecksumAlgorithm,
				Open: func(ctx context.Context) (io.ReadCloser, error) {
					return backend.Open(ctx, rel)
				},
				Timeout: e.config.FileTimeout,
			}); err != nil {
				return err
			}
			submitted++
			return nil
		}, warn)
		walkDone <- err
	}()

	var (
		walkErr  error
		fnErr    error
		walking  = true
		received int
	)

	deliver := func(record *FileRecord) {
		if fnErr != nil {
			return
		}
		if err := fn(record); err != nil {
			fnErr = err
			cancel()
			return
		}
		summary.Files++
	}

	// submitted is only read once walkDone has been received
	for walking || received < submitted {
		select {
		case record := <-direct:
			deliver(record)
		case result := <-pool.Results():
			received++
			mu.Lock()
			record := pending[result.Job.Path]
			delete(pending, result.Job.Path)
			mu.Unlock()

			if result.Err != nil {
				if fnErr == nil {
					warn(record.Path, result.Err)
				}
				continue
			}
			digest := result.Digest
			record.Digest = &digest
			deliver(record)
		case walkErr = <-walkDone:
			walking = false
		}
	}

	summary.Folders = folders
	summary.Warnings = warnings

	if fnErr != nil {
		return summary, fnErr
	}
	if walkErr != nil && !errors.Is(walkErr, context.Canceled) {
		return summary, fmt.Errorf("failed to walk %s: %w", summary.Root, walkErr)
	}
	if err := ctx.Err(); err != nil {
		return summary, err
	}

	e.logger.Debug("walk complete", "root", summary.Root, "files", summary.Files,
		"folders", summary.Folders, "warnings", summary.WarningCount())
	return summary, nil
}

// Collect walks root and returns every record sorted by path
func (e *Engine) Collect(ctx context.Context, root string) ([]*FileRecord, *WalkSummary, error) {
	var records []*FileRecord
	summary, err := e.Walk(ctx, root, func(record *FileRecord) error {
		records = append(records, record)
		return nil
	})
	if err != nil {
		return nil, summary, err
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Path < records[j].Path })
	return records, summary, nil
}

func newRecord(absPath string, info *storage.FileInfo) *FileRecord {
	ext := filetype.Ext(info.Name)
	return &FileRecord{
		Path:      absPath,
		Name:      info.Name,
		Size:      info.Size,
		Type:      filetype.Lookup(ext),
		Extension: ext,
		Modified:  info.ModTime,
		Created:   info.CreatedAt,
	}
}
