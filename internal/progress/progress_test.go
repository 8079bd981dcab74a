package progress_test

import (
	"testing"

	"github.com/jeffanddom/organizex/internal/database"
	"github.com/jeffanddom/organizex/internal/progress"
)

func TestEvaluate(t *testing.T) {
	organized := &progress.Event{
		Action:    database.ActionFilesOrganized,
		Count:     6,
		Folder:    "Downloads",
		FileTypes: map[string]int64{"Images": 6},
	}
	removed := &progress.Event{
		Action: database.ActionDuplicatesRemoved,
		Count:  4,
		Bytes:  3 << 20,
	}
	snap := &database.Snapshot{
		User:  database.User{TotalXP: 1950, Streak: 2},
		Stats: database.UserStats{FilesOrganized: 40, StreakDays: 5, SpaceFreed: 10 << 20},
	}

	tests := []struct {
		name    string
		req     database.Requirement
		event   *progress.Event
		current int64
		target  int64
		want    int64
	}{
		{
			name:   "folder match is case insensitive",
			req:    database.Requirement{Kind: database.RequirementFolderMatch, Folder: "downloads", Min: 5},
			event:  organized,
			target: 1,
			want:   1,
		},
		{
			name:   "folder match needs the minimum",
			req:    database.Requirement{Kind: database.RequirementFolderMatch, Folder: "Downloads", Min: 10},
			event:  organized,
			target: 1,
			want:   0,
		},
		{
			name:   "file type match counts per type",
			req:    database.Requirement{Kind: database.RequirementFileTypeMatch, FileType: "Images", Min: 5},
			event:  organized,
			target: 1,
			want:   1,
		},
		{
			name:   "file type match ignores other types",
			req:    database.Requirement{Kind: database.RequirementFileTypeMatch, FileType: "Videos", Min: 1},
			event:  organized,
			target: 1,
			want:   0,
		},
		{
			name:   "min count matches the action",
			req:    database.Requirement{Kind: database.RequirementMinCount, Action: database.ActionDuplicatesRemoved, Min: 3},
			event:  removed,
			target: 1,
			want:   1,
		},
		{
			name:   "min count ignores other actions",
			req:    database.Requirement{Kind: database.RequirementMinCount, Action: database.ActionDuplicatesRemoved, Min: 3},
			event:  organized,
			target: 1,
			want:   0,
		},
		{
			name:    "cumulative adds and caps",
			req:     database.Requirement{Kind: database.RequirementCumulative, Counter: database.CounterFilesOrganized},
			event:   organized,
			current: 97,
			target:  100,
			want:    100,
		},
		{
			name:    "cumulative folders count once per action",
			req:     database.Requirement{Kind: database.RequirementCumulative, Counter: database.CounterFoldersCleaned},
			event:   organized,
			current: 2,
			target:  5,
			want:    3,
		},
		{
			name:   "cumulative space uses whole MiB",
			req:    database.Requirement{Kind: database.RequirementCumulative, Counter: database.CounterSpaceFreedMiB},
			event:  removed,
			target: 1024,
			want:   3,
		},
		{
			name:   "cumulative quests filter by category",
			req:    database.Requirement{Kind: database.RequirementCumulative, Counter: database.CounterQuestsCompleted, Category: "daily"},
			event:  &progress.Event{Action: database.ActionQuestCompleted, Count: 1, Category: "weekly"},
			target: 10,
			want:   0,
		},
		{
			name:   "threshold reads the snapshot",
			req:    database.Requirement{Kind: database.RequirementThreshold, Counter: database.CounterFilesOrganized, Min: 100},
			target: 100,
			want:   40,
		},
		{
			name:   "threshold covers level",
			req:    database.Requirement{Kind: database.RequirementThreshold, Counter: database.CounterLevel, Min: 20},
			target: 20,
			want:   20,
		},
		{
			name:   "streak uses the longer record",
			req:    database.Requirement{Kind: database.RequirementThreshold, Counter: database.CounterStreakDays, Min: 7},
			target: 7,
			want:   5,
		},
		{
			name:    "progress never decreases",
			req:     database.Requirement{Kind: database.RequirementThreshold, Counter: database.CounterFilesOrganized, Min: 100},
			current: 60,
			target:  100,
			want:    60,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := progress.Evaluate(tt.req, tt.event, snap, tt.current, tt.target)
			if got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestEvaluateSpaceFreedCarriesRemainders(t *testing.T) {
	req := database.Requirement{Kind: database.RequirementCumulative, Counter: database.CounterSpaceFreedMiB}
	const batch = 768 << 10

	snap := &database.Snapshot{}
	var current int64
	for i := 0; i < 4; i++ {
		snap.Stats.SpaceFreed += batch
		current = progress.Evaluate(req, &progress.Event{
			Action: database.ActionDuplicatesRemoved,
			Count:  1,
			Bytes:  batch,
		}, snap, current, 1024)
	}

	if want := snap.Stats.SpaceFreed >> 20; current != want {
		t.Errorf("expected progress %d to match %d MiB freed, got %d", want, want, current)
	}
	if current != 3 {
		t.Errorf("expected 3, got %d", current)
	}
}
