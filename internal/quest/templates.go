package quest

import (
	"strings"

	"github.com/jeffanddom/organizex/internal/database"
	"github.com/jeffanddom/organizex/internal/filetype"
)

// Template is the blueprint a quest is instantiated from
type Template struct {
	Title        string
	Description  string
	Type         database.QuestType
	Difficulty   database.Difficulty
	XPReward     int64
	Target       int64
	Requirements database.Requirement
}

func folderMatch(folder string, min int64) database.Requirement {
	return database.Requirement{Kind: database.RequirementFolderMatch, Folder: folder, Min: min}
}

func fileTypeMatch(label filetype.Label, min int64) database.Requirement {
	return database.Requirement{Kind: database.RequirementFileTypeMatch, FileType: string(label), Min: min}
}

func cumulative(counter database.Counter) database.Requirement {
	return database.Requirement{Kind: database.RequirementCumulative, Counter: counter}
}

func threshold(counter database.Counter, min int64) database.Requirement {
	return database.Requirement{Kind: database.RequirementThreshold, Counter: counter, Min: min}
}

// DailyTemplates are sampled without replacement every day
var DailyTemplates = []Template{
	{
		Title: "Clean Your Downloads", Description: "Organize files in your Downloads folder",
		Type: database.QuestTypeOrganize, Difficulty: database.DifficultyEasy, XPReward: 50, Target: 1,
		Requirements: folderMatch("Downloads", 5),
	},
	{
		Title: "Desktop Declutter", Description: "Clear and organize your Desktop",
		Type: database.QuestTypeClean, Difficulty: database.DifficultyEasy, XPReward: 40, Target: 1,
		Requirements: folderMatch("Desktop", 3),
	},
	{
		Title: "Duplicate Hunter", Description: "Find and remove duplicate files",
		Type: database.QuestTypeDuplicate, Difficulty: database.DifficultyMedium, XPReward: 75, Target: 1,
		Requirements: database.Requirement{
			Kind: database.RequirementMinCount, Action: database.ActionDuplicatesRemoved, Min: 3,
		},
	},
	{
		Title: "Photo Organizer", Description: "Sort images into proper folders",
		Type: database.QuestTypeSort, Difficulty: database.DifficultyEasy, XPReward: 45, Target: 1,
		Requirements: fileTypeMatch(filetype.Images, 10),
	},
	{
		Title: "Document Sorter", Description: "Organize scattered documents",
		Type: database.QuestTypeSort, Difficulty: database.DifficultyMedium, XPReward: 60, Target: 1,
		Requirements: fileTypeMatch(filetype.Documents, 5),
	},
	{
		Title: "Music Library Cleanup", Description: "Organize your audio files",
		Type: database.QuestTypeOrganize, Difficulty: database.DifficultyMedium, XPReward: 55, Target: 1,
		Requirements: fileTypeMatch(filetype.Audio, 8),
	},
	{
		Title: "Video Collection Sort", Description: "Organize video files properly",
		Type: database.QuestTypeSort, Difficulty: database.DifficultyHard, XPReward: 80, Target: 1,
		Requirements: fileTypeMatch(filetype.Videos, 5),
	},
	{
		Title: "Archive Explorer", Description: "Review and organize compressed files",
		Type: database.QuestTypeOrganize, Difficulty: database.DifficultyMedium, XPReward: 65, Target: 1,
		Requirements: fileTypeMatch(filetype.Archives, 3),
	},
}

// WeeklyTemplates are sampled on the first day of the week
var WeeklyTemplates = []Template{
	{
		Title: "Master Organizer", Description: "Organize 100 files this week",
		Type: database.QuestTypeOrganize, Difficulty: database.DifficultyHard, XPReward: 200, Target: 100,
		Requirements: cumulative(database.CounterFilesOrganized),
	},
	{
		Title: "Duplicate Destroyer", Description: "Remove 25 duplicate files",
		Type: database.QuestTypeDuplicate, Difficulty: database.DifficultyHard, XPReward: 150, Target: 25,
		Requirements: cumulative(database.CounterDuplicatesRemoved),
	},
	{
		// target is in MiB
		Title: "Space Saver", Description: "Free up 1GB of storage space",
		Type: database.QuestTypeClean, Difficulty: database.DifficultyHard, XPReward: 250, Target: 1024,
		Requirements: cumulative(database.CounterSpaceFreedMiB),
	},
	{
		Title: "Quest Completionist", Description: "Complete 10 daily quests this week",
		Type: database.QuestTypeOrganize, Difficulty: database.DifficultyMedium, XPReward: 180, Target: 10,
		Requirements: database.Requirement{
			Kind: database.RequirementCumulative, Counter: database.CounterQuestsCompleted,
			Category: database.CategoryDaily,
		},
	},
	{
		Title: "Folder Master", Description: "Organize 5 different folders",
		Type: database.QuestTypeOrganize, Difficulty: database.DifficultyMedium, XPReward: 160, Target: 5,
		Requirements: cumulative(database.CounterFoldersCleaned),
	},
}

// AchievementTemplates are generated once and never expire
var AchievementTemplates = []Template{
	{
		Title: "First Steps", Description: "Complete your first organization task",
		Type: database.QuestTypeOrganize, Difficulty: database.DifficultyEasy, XPReward: 100, Target: 1,
		Requirements: threshold(database.CounterFilesOrganized, 1),
	},
	{
		Title: "Streak Keeper", Description: "Maintain a 7-day organization streak",
		Type: database.QuestTypeOrganize, Difficulty: database.DifficultyMedium, XPReward: 300, Target: 7,
		Requirements: threshold(database.CounterStreakDays, 7),
	},
	{
		Title: "File Management Expert", Description: "Organize 1000 files total",
		Type: database.QuestTypeOrganize, Difficulty: database.DifficultyHard, XPReward: 500, Target: 1000,
		Requirements: threshold(database.CounterFilesOrganized, 1000),
	},
	{
		Title: "Duplicate Detective", Description: "Remove 100 duplicate files",
		Type: database.QuestTypeDuplicate, Difficulty: database.DifficultyHard, XPReward: 400, Target: 100,
		Requirements: threshold(database.CounterDuplicatesRemoved, 100),
	},
	{
		Title: "Storage Optimizer", Description: "Free up 10GB of storage space",
		Type: database.QuestTypeClean, Difficulty: database.DifficultyHard, XPReward: 750, Target: 10240,
		Requirements: threshold(database.CounterSpaceFreedMiB, 10240),
	},
}

// AchievementQuestID derives the stable id of an achievement quest
func AchievementQuestID(title string) string {
	return "achievement_" + strings.ReplaceAll(strings.ToLower(title), " ", "_")
}
