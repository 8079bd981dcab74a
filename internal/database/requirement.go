package database

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// RequirementKind selects how a Requirement is evaluated
type RequirementKind string

const (
	// RequirementFolderMatch is met by organising at least Min files in Folder
	RequirementFolderMatch RequirementKind = "folder_match"
	// RequirementFileTypeMatch is met by organising at least Min files of FileType
	RequirementFileTypeMatch RequirementKind = "file_type_match"
	// RequirementMinCount is met by a single Action of at least Min items
	RequirementMinCount RequirementKind = "min_count"
	// RequirementCumulative accumulates Counter across actions up to the target
	RequirementCumulative RequirementKind = "cumulative"
	// RequirementThreshold is met once the live Counter reaches Min
	RequirementThreshold RequirementKind = "threshold"
)

// Action is something the user did that may advance quests
type Action string

const (
	ActionFilesOrganized    Action = "files_organized"
	ActionDuplicatesRemoved Action = "duplicates_removed"
	ActionQuestCompleted    Action = "quest_completed"
)

// Counter names a live statistic
type Counter string

const (
	CounterFilesOrganized    Counter = "files_organized"
	CounterDuplicatesRemoved Counter = "duplicates_removed"
	CounterQuestsCompleted   Counter = "quests_completed"
	CounterFoldersCleaned    Counter = "folders_cleaned"
	CounterSpaceFreedMiB     Counter = "space_freed_mib"
	CounterStreakDays        Counter = "streak_days"
	CounterLevel             Counter = "level"
	CounterTotalXP           Counter = "total_xp"
	CounterQuestsToday       Counter = "quests_today"
)

// Requirement is the condition attached to quests, badges and achievements
type Requirement struct {
	Kind     RequirementKind `json:"kind"`
	Folder   string          `json:"folder,omitempty"`
	FileType string          `json:"file_type,omitempty"`
	Action   Action          `json:"action,omitempty"`
	Counter  Counter         `json:"counter,omitempty"`
	Category string          `json:"category,omitempty"`
	Min      int64           `json:"min,omitempty"`
}

// Validate checks that the fields needed by Kind are present
func (r Requirement) Validate() error {
	switch r.Kind {
	case RequirementFolderMatch:
		if r.Folder == "" {
			return fmt.Errorf("folder_match requirement needs a folder")
		}
	case RequirementFileTypeMatch:
		if r.FileType == "" {
			return fmt.Errorf("file_type_match requirement needs a file type")
		}
	case RequirementMinCount:
		if r.Action == "" {
			return fmt.Errorf("min_count requirement needs an action")
		}
	case RequirementCumulative, RequirementThreshold:
		if r.Counter == "" {
			return fmt.Errorf("%s requirement needs a counter", r.Kind)
		}
	default:
		return fmt.Errorf("unknown requirement kind: %q", string(r.Kind))
	}
	return nil
}

// Value implements driver.Valuer
func (r Requirement) Value() (driver.Value, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner
func (r *Requirement) Scan(src any) error {
	*r = Requirement{}
	if err := scanJSON(src, r); err != nil {
		return fmt.Errorf("failed to scan requirement: %w", err)
	}
	return nil
}

// Snapshot is a point-in-time view of every live statistic
type Snapshot struct {
	User        User
	Stats       UserStats
	QuestsToday int64
}

// Value reads counter from the snapshot
func (s Snapshot) Value(counter Counter) (int64, error) {
	switch counter {
	case CounterFilesOrganized:
		return s.Stats.FilesOrganized, nil
	case CounterDuplicatesRemoved:
		return s.Stats.DuplicatesRemoved, nil
	case CounterQuestsCompleted:
		return s.Stats.QuestsCompleted, nil
	case CounterFoldersCleaned:
		return s.Stats.FoldersCleaned, nil
	case CounterSpaceFreedMiB:
		return s.Stats.SpaceFreed >> 20, nil
	case CounterStreakDays:
		if s.User.Streak > s.Stats.StreakDays {
			return s.User.Streak, nil
		}
		return s.Stats.StreakDays, nil
	case CounterLevel:
		return LevelFor(s.User.TotalXP), nil
	case CounterTotalXP:
		return s.User.TotalXP, nil
	case CounterQuestsToday:
		return s.QuestsToday, nil
	default:
		return 0, fmt.Errorf("unknown counter: %q", string(counter))
	}
}
