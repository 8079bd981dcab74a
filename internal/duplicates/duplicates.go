// Package duplicates groups file records by content digest.
package duplicates

import (
	"sort"

	"github.com/jeffanddom/organizex/internal/scanner"
)

// Group is a set of two or more files with identical content. Files are
// ordered oldest first, so Files[0] is the copy to keep.
type Group struct {
	ID          int                   `json:"id"`
	Name        string                `json:"name"`
	Digest      string                `json:"hash"`
	Size        int64                 `json:"size"`
	TotalSize   int64                 `json:"totalSize"`
	WastedBytes int64                 `json:"wastedBytes"`
	Files       []*scanner.FileRecord `json:"files"`
}

// Primary returns the member that is kept by default
func (g *Group) Primary() *scanner.FileRecord {
	return g.Files[0]
}

// Redundant returns every member except the primary
func (g *Group) Redundant() []*scanner.FileRecord {
	return g.Files[1:]
}

// Summary totals a set of groups
type Summary struct {
	Groups         int   `json:"groups"`
	DuplicateFiles int   `json:"duplicateFiles"`
	WastedBytes    int64 `json:"wastedBytes"`
}

// Eligible reports whether a record takes part in duplicate detection.
// Zero-byte files would all match each other and are excluded.
func Eligible(record *scanner.FileRecord) bool {
	return record != nil && record.Digest != nil && *record.Digest != "" && record.Size > 0
}

// Find groups records by digest. Input order does not matter: records are
// sorted by path before bucketing, so ids and membership are reproducible.
func Find(records []*scanner.FileRecord) []*Group {
	eligible := make([]*scanner.FileRecord, 0, len(records))
	for _, record := range records {
		if Eligible(record) {
			eligible = append(eligible, record)
		}
	}
	sort.SliceStable(eligible, func(i, j int) bool { return eligible[i].Path < eligible[j].Path })

	buckets := make(map[string][]*scanner.FileRecord)
	var order []string
	for _, record := range eligible {
		digest := *record.Digest
		if _, seen := buckets[digest]; !seen {
			order = append(order, digest)
		}
		buckets[digest] = append(buckets[digest], record)
	}

	groups := make([]*Group, 0)
	for _, digest := range order {
		members := buckets[digest]
		if len(members) < 2 {
			continue
		}

		sort.SliceStable(members, func(i, j int) bool {
			if !members[i].Modified.Equal(members[j].Modified) {
				return members[i].Modified.Before(members[j].Modified)
			}
			return members[i].Path < members[j].Path
		})

		group := &Group{
			ID:     len(groups) + 1,
			Name:   members[0].Name,
			Digest: digest,
			Size:   members[0].Size,
			Files:  members,
		}
		for _, member := range members {
			group.TotalSize += member.Size
		}
		group.WastedBytes = group.TotalSize - group.Size
		groups = append(groups, group)
	}

	return groups
}

// Summarize totals groups
func Summarize(groups []*Group) Summary {
	var s Summary
	for _, g := range groups {
		s.Groups++
		s.DuplicateFiles += len(g.Files) - 1
		s.WastedBytes += g.WastedBytes
	}
	return s
}

// DefaultDeletions lists the paths removed by "keep oldest, delete rest"
func DefaultDeletions(groups []*Group) []string {
	var paths []string
	for _, g := range groups {
		for _, record := range g.Redundant() {
			paths = append(paths, record.Path)
		}
	}
	return paths
}
