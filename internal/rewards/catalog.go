package rewards

import "github.com/jeffanddom/organizex/internal/database"

func threshold(counter database.Counter, min int64) database.Requirement {
	return database.Requirement{Kind: database.RequirementThreshold, Counter: counter, Min: min}
}

// Badges is the badge catalog
var Badges = []database.Badge{
	{
		ID: "clean_desk_novice", Name: "Clean Desk Novice", Description: "Complete your first quest",
		Icon: "fas fa-broom", Category: "organization",
		Requirement: threshold(database.CounterQuestsCompleted, 1),
	},
	{
		ID: "download_slayer", Name: "Download Slayer", Description: "Clean up 5 folders",
		Icon: "fas fa-download", Category: "organization",
		Requirement: threshold(database.CounterFoldersCleaned, 5),
	},
	{
		ID: "duplicate_destroyer", Name: "Duplicate Destroyer", Description: "Remove 100 duplicate files",
		Icon: "fas fa-clone", Category: "cleanup",
		Requirement: threshold(database.CounterDuplicatesRemoved, 100),
	},
	{
		ID: "file_master", Name: "File Master", Description: "Organize 1000 files",
		Icon: "fas fa-folder-tree", Category: "organization",
		Requirement: threshold(database.CounterFilesOrganized, 1000),
	},
	{
		ID: "organization_guru", Name: "Organization Guru", Description: "Reach level 20",
		Icon: "fas fa-user-graduate", Category: "progression",
		Requirement: threshold(database.CounterLevel, 20),
	},
	{
		ID: "speed_sorter", Name: "Speed Sorter", Description: "Complete 10 quests in one day",
		Icon: "fas fa-bolt", Category: "quests",
		Requirement: threshold(database.CounterQuestsToday, 10),
	},
	{
		ID: "streak_master", Name: "Streak Master", Description: "Maintain a 30-day streak",
		Icon: "fas fa-fire", Category: "consistency",
		Requirement: threshold(database.CounterStreakDays, 30),
	},
	{
		ID: "quest_completer", Name: "Quest Completer", Description: "Complete 100 quests",
		Icon: "fas fa-flag-checkered", Category: "quests",
		Requirement: threshold(database.CounterQuestsCompleted, 100),
	},
}

// Achievements is the achievement catalog. Progress is recomputed from live
// statistics on every check.
var Achievements = []database.Achievement{
	{
		ID: "first_organization", Name: "First Steps", Description: "Complete your first file organization",
		Icon: "fas fa-baby", Target: 1, XPReward: 100,
		Requirement: threshold(database.CounterFilesOrganized, 1),
	},
	{
		ID: "file_organizer", Name: "File Organizer", Description: "Organize 100 files",
		Icon: "fas fa-folder", Target: 100, XPReward: 500,
		Requirement: threshold(database.CounterFilesOrganized, 100),
	},
	{
		ID: "duplicate_hunter", Name: "Duplicate Hunter", Description: "Find and remove 50 duplicate files",
		Icon: "fas fa-search", Target: 50, XPReward: 300,
		Requirement: threshold(database.CounterDuplicatesRemoved, 50),
	},
	{
		ID: "quest_master", Name: "Quest Master", Description: "Complete 50 quests",
		Icon: "fas fa-crown", Target: 50, XPReward: 1000,
		Requirement: threshold(database.CounterQuestsCompleted, 50),
	},
	{
		// target is in MiB
		ID: "storage_saver", Name: "Storage Saver", Description: "Free up 1GB of space",
		Icon: "fas fa-hdd", Target: 1024, XPReward: 750,
		Requirement: threshold(database.CounterSpaceFreedMiB, 1024),
	},
}
