// Package progress evaluates requirements against user actions and live
// statistics.
package progress

import (
	"strings"

	"github.com/jeffanddom/organizex/internal/database"
)

// Event describes one completed user action
type Event struct {
	Action database.Action
	// Count is the number of items the action touched
	Count int64
	// Folder is the base name of the organised directory
	Folder string
	// FileTypes counts the moved files per type label
	FileTypes map[string]int64
	// Bytes freed by the action
	Bytes int64
	// Category of the completed quest for quest_completed events
	Category string
}

// Evaluate returns the new progress of a requirement with the given current
// progress and target. event may be nil when only live statistics changed.
// snap must already include the effects of event. The result is never below
// current and never above target.
func Evaluate(req database.Requirement, event *Event, snap *database.Snapshot, current, target int64) int64 {
	next := current
	switch req.Kind {
	case database.RequirementFolderMatch:
		if event != nil && event.Action == database.ActionFilesOrganized &&
			strings.EqualFold(event.Folder, req.Folder) && event.Count >= atLeastOne(req.Min) {
			next = target
		}
	case database.RequirementFileTypeMatch:
		if event != nil && event.Action == database.ActionFilesOrganized &&
			event.FileTypes[req.FileType] >= atLeastOne(req.Min) {
			next = target
		}
	case database.RequirementMinCount:
		if event != nil && event.Action == req.Action && event.Count >= atLeastOne(req.Min) {
			next = target
		}
	case database.RequirementCumulative:
		if event != nil {
			next = current + amount(req, event, snap)
		}
	case database.RequirementThreshold:
		if snap != nil {
			if v, err := snap.Value(req.Counter); err == nil {
				next = v
			}
		}
	}

	if next > target {
		next = target
	}
	if next < current {
		next = current
	}
	return next
}

// amount is how far event advances a cumulative counter
func amount(req database.Requirement, event *Event, snap *database.Snapshot) int64 {
	switch req.Counter {
	case database.CounterFilesOrganized:
		if event.Action == database.ActionFilesOrganized {
			return event.Count
		}
	case database.CounterFoldersCleaned:
		if event.Action == database.ActionFilesOrganized && event.Count > 0 {
			return 1
		}
	case database.CounterDuplicatesRemoved:
		if event.Action == database.ActionDuplicatesRemoved {
			return event.Count
		}
	case database.CounterSpaceFreedMiB:
		if event.Action == database.ActionDuplicatesRemoved {
			return mibCrossed(event.Bytes, snap)
		}
	case database.CounterQuestsCompleted:
		if event.Action == database.ActionQuestCompleted &&
			(req.Category == "" || req.Category == event.Category) {
			return 1
		}
	}
	return 0
}

// mibCrossed counts the MiB boundaries the running space_freed total passed
// when it grew by freed bytes, so sub-MiB remainders carry over between
// events
func mibCrossed(freed int64, snap *database.Snapshot) int64 {
	if snap == nil {
		return freed >> 20
	}
	after := snap.Stats.SpaceFreed
	before := max(after-freed, 0)
	return after>>20 - before>>20
}

func atLeastOne(n int64) int64 {
	if n < 1 {
		return 1
	}
	return n
}
