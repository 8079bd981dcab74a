package database

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// XPPerLevel is the amount of XP between two levels
const XPPerLevel = 100

// User is the singleton progression record. Level and XP are derived from
// TotalXP on every write.
type User struct {
	ID              int64      `db:"id" json:"-"`
	Level           int64      `db:"level" json:"level"`
	XP              int64      `db:"xp" json:"xp"`
	TotalXP         int64      `db:"total_xp" json:"totalXp"`
	Streak          int64      `db:"streak" json:"streak"`
	Badges          BadgeSet   `db:"badges" json:"badges"`
	CompletedQuests int64      `db:"completed_quests" json:"completedQuests"`
	LastActive      *time.Time `db:"last_active" json:"lastActive"`
	CreatedAt       time.Time  `db:"created_at" json:"createdAt"`
}

// LevelFor returns the level reached with total XP
func LevelFor(totalXP int64) int64 {
	if totalXP < 0 {
		totalXP = 0
	}
	return totalXP/XPPerLevel + 1
}

// SetTotalXP updates TotalXP and the derived fields
func (u *User) SetTotalXP(total int64) {
	u.TotalXP = total
	u.Level = LevelFor(total)
	u.XP = total % XPPerLevel
}

// UserStats holds the non-decreasing activity counters
type UserStats struct {
	ID                int64 `db:"id" json:"-"`
	FilesOrganized    int64 `db:"files_organized" json:"filesOrganized"`
	DuplicatesRemoved int64 `db:"duplicates_removed" json:"duplicatesRemoved"`
	QuestsCompleted   int64 `db:"quests_completed" json:"questsCompleted"`
	TotalXPEarned     int64 `db:"total_xp_earned" json:"totalXpEarned"`
	StreakDays        int64 `db:"streak_days" json:"streakDays"`
	FoldersCleaned    int64 `db:"folders_cleaned" json:"foldersCleaned"`
	SpaceFreed        int64 `db:"space_freed" json:"spaceFreed"`
}

// Stat names a counter in user_stats that operations may increment
type Stat string

const (
	StatFilesOrganized    Stat = "files_organized"
	StatDuplicatesRemoved Stat = "duplicates_removed"
	StatQuestsCompleted   Stat = "quests_completed"
	StatTotalXPEarned     Stat = "total_xp_earned"
	StatFoldersCleaned    Stat = "folders_cleaned"
	StatSpaceFreed        Stat = "space_freed"
)

// column maps a stat to its column. Only listed stats are updatable.
func (s Stat) column() (string, error) {
	switch s {
	case StatFilesOrganized:
		return "files_organized", nil
	case StatDuplicatesRemoved:
		return "duplicates_removed", nil
	case StatQuestsCompleted:
		return "quests_completed", nil
	case StatTotalXPEarned:
		return "total_xp_earned", nil
	case StatFoldersCleaned:
		return "folders_cleaned", nil
	case StatSpaceFreed:
		return "space_freed", nil
	default:
		return "", fmt.Errorf("unknown stat: %q", string(s))
	}
}

// QuestType is what a quest asks the user to do
type QuestType string

const (
	QuestTypeOrganize  QuestType = "organize"
	QuestTypeClean     QuestType = "clean"
	QuestTypeDuplicate QuestType = "duplicate"
	QuestTypeSort      QuestType = "sort"
	QuestTypeBackup    QuestType = "backup"
	QuestTypeRename    QuestType = "rename"
)

// Difficulty of a quest
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// QuestStatus is a state in the quest lifecycle
type QuestStatus string

const (
	QuestStatusAvailable  QuestStatus = "available"
	QuestStatusInProgress QuestStatus = "in_progress"
	QuestStatusCompleted  QuestStatus = "completed"
	QuestStatusExpired    QuestStatus = "expired"
)

// Open reports whether a quest in this status can still progress
func (s QuestStatus) Open() bool {
	return s == QuestStatusAvailable || s == QuestStatusInProgress
}

// Quest categories
const (
	CategoryDaily        = "daily"
	CategoryWeekly       = "weekly"
	CategoryAchievements = "achievements"
)

// Quest is a generated task instance
type Quest struct {
	ID           string      `db:"id" json:"id"`
	Title        string      `db:"title" json:"title"`
	Description  string      `db:"description" json:"description"`
	Type         QuestType   `db:"type" json:"type"`
	Difficulty   Difficulty  `db:"difficulty" json:"difficulty"`
	XPReward     int64       `db:"xp_reward" json:"xpReward"`
	Status       QuestStatus `db:"status" json:"status"`
	Category     string      `db:"category" json:"category"`
	Progress     int64       `db:"progress" json:"progress"`
	Target       int64       `db:"target" json:"target"`
	Deadline     *time.Time  `db:"deadline" json:"deadline"`
	Requirements Requirement `db:"requirements" json:"requirements"`
	CreatedAt    time.Time   `db:"created_at" json:"createdAt"`
	CompletedAt  *time.Time  `db:"completed_at" json:"completedAt"`
}

// Badge is a catalog entry
type Badge struct {
	ID          string      `db:"id" json:"id"`
	Name        string      `db:"name" json:"name"`
	Description string      `db:"description" json:"description"`
	Icon        string      `db:"icon" json:"icon"`
	Category    string      `db:"category" json:"category"`
	Requirement Requirement `db:"requirement" json:"requirement"`
}

// Achievement tracks progress towards a one-time reward
type Achievement struct {
	ID          string      `db:"id" json:"id"`
	Name        string      `db:"name" json:"name"`
	Description string      `db:"description" json:"description"`
	Icon        string      `db:"icon" json:"icon"`
	Progress    int64       `db:"progress" json:"progress"`
	Target      int64       `db:"target" json:"target"`
	XPReward    int64       `db:"xp_reward" json:"xpReward"`
	Completed   bool        `db:"completed" json:"completed"`
	CompletedAt *time.Time  `db:"completed_at" json:"completedAt"`
	Requirement Requirement `db:"requirement" json:"requirement"`
}

// ActivityType classifies activity log entries
type ActivityType string

const (
	ActivityQuestCompleted      ActivityType = "quest_completed"
	ActivityFilesOrganized      ActivityType = "files_organized"
	ActivityDuplicatesRemoved   ActivityType = "duplicates_removed"
	ActivityBonusXP             ActivityType = "bonus_xp"
	ActivityAchievementUnlocked ActivityType = "achievement_unlocked"
	ActivityBadgeEarned         ActivityType = "badge_earned"
)

// Activity is an append-only log entry
type Activity struct {
	ID          int64        `db:"id" json:"id"`
	Type        ActivityType `db:"type" json:"type"`
	Description string       `db:"description" json:"description"`
	XPGained    int64        `db:"xp_gained" json:"xpGained"`
	CreatedAt   time.Time    `db:"created_at" json:"timestamp"`
}

// BadgeSet is the ordered set of earned badge ids
type BadgeSet []string

// Has reports whether id is in the set
func (b BadgeSet) Has(id string) bool {
	for _, existing := range b {
		if existing == id {
			return true
		}
	}
	return false
}

// Add appends id unless present and reports whether it was added
func (b *BadgeSet) Add(id string) bool {
	if b.Has(id) {
		return false
	}
	*b = append(*b, id)
	return true
}

// Value implements driver.Valuer
func (b BadgeSet) Value() (driver.Value, error) {
	if b == nil {
		b = BadgeSet{}
	}
	data, err := json.Marshal([]string(b))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner
func (b *BadgeSet) Scan(src any) error {
	var ids []string
	if err := scanJSON(src, &ids); err != nil {
		return fmt.Errorf("failed to scan badge set: %w", err)
	}
	*b = BadgeSet{}
	for _, id := range ids {
		b.Add(id)
	}
	return nil
}

func scanJSON(src any, dest any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T", src)
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, dest)
}
