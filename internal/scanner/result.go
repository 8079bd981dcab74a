package scanner

import (
	"context"
	"sort"

	"github.com/jeffanddom/organizex/internal/filetype"
)

// TopN is the length of the largest and oldest lists
const TopN = 10

// ScanResult aggregates a directory scan
type ScanResult struct {
	RootPath     string                 `json:"path"`
	TotalFiles   int64                  `json:"totalFiles"`
	TotalFolders int64                  `json:"totalFolders"`
	TotalSize    int64                  `json:"totalSize"`
	FileTypes    map[filetype.Label]int `json:"fileTypes"`
	Largest      []*FileRecord          `json:"largestFiles"`
	Oldest       []*FileRecord          `json:"oldestFiles"`
	Warnings     int                    `json:"warnings"`
	Success      bool                   `json:"success"`
	Error        string                 `json:"error,omitempty"`
}

// Scan walks root and aggregates the result without retaining every record
func (e *Engine) Scan(ctx context.Context, root string) (*ScanResult, error) {
	largest := newTopList(TopN, largerFirst)
	oldest := newTopList(TopN, olderFirst)

	result := &ScanResult{
		RootPath:  root,
		FileTypes: make(map[filetype.Label]int),
	}

	summary, err := e.Walk(ctx, root, func(record *FileRecord) error {
		result.TotalSize += record.Size
		result.FileTypes[record.Type]++
		largest.offer(record)
		oldest.offer(record)
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.RootPath = summary.Root
	result.TotalFiles = summary.Files
	result.TotalFolders = summary.Folders
	result.Warnings = summary.WarningCount()
	result.Largest = largest.items
	result.Oldest = oldest.items
	result.Success = true

	e.logger.Info("scan complete", "root", result.RootPath, "files", result.TotalFiles,
		"folders", result.TotalFolders, "bytes", result.TotalSize)
	return result, nil
}

// less reports whether a ranks before b
type less func(a, b *FileRecord) bool

func largerFirst(a, b *FileRecord) bool {
	if a.Size != b.Size {
		return a.Size > b.Size
	}
	return a.Path < b.Path
}

func olderFirst(a, b *FileRecord) bool {
	if !a.Modified.Equal(b.Modified) {
		return a.Modified.Before(b.Modified)
	}
	return a.Path < b.Path
}

// topList keeps the best n records seen so far in ranked order. The
// ordering is total, so the outcome does not depend on arrival order.
type topList struct {
	n     int
	less  less
	items []*FileRecord
}

func newTopList(n int, fn less) *topList {
	return &topList{n: n, less: fn, items: make([]*FileRecord, 0, n)}
}

func (t *topList) offer(record *FileRecord) {
	if len(t.items) == t.n && !t.less(record, t.items[len(t.items)-1]) {
		return
	}

	i := sort.Search(len(t.items), func(i int) bool { return t.less(record, t.items[i]) })
	if len(t.items) < t.n {
		t.items = append(t.items, nil)
	}
	copy(t.items[i+1:], t.items[i:len(t.items)-1])
	t.items[i] = record
}
