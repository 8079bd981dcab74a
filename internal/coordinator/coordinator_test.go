package coordinator_test

import (
	"context"
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jeffanddom/organizex/internal/checksum"
	"github.com/jeffanddom/organizex/internal/coordinator"
	"github.com/jeffanddom/organizex/internal/database"
	"github.com/jeffanddom/organizex/internal/filetype"
	"github.com/jeffanddom/organizex/internal/logging"
	"github.com/jeffanddom/organizex/internal/quest"
	"github.com/jeffanddom/organizex/internal/rewards"
	"github.com/jeffanddom/organizex/internal/scanner"
	"github.com/jeffanddom/organizex/internal/storage"
	"github.com/jeffanddom/organizex/tests/testutil"
)

var now = time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)

func newCoordinator(t *testing.T, home string, maxOps int) (*database.Database, *coordinator.Coordinator) {
	t.Helper()
	db := testutil.NewTestDB(t)
	clk := testutil.NewStubClock(now)

	rw := rewards.NewEngine(db, clk, logging.Nop())
	quests := quest.NewEngine(db, rw, quest.Config{
		Clock: clk,
		IDs:   &testutil.SequentialIDs{},
		Rand:  rand.New(rand.NewPCG(1, 2)),
	}, logging.Nop())

	coord := coordinator.New(db, quests, rw, coordinator.Config{
		MaxConcurrentOps: maxOps,
		Scanner:          scanner.Config{ChecksumAlgorithm: checksum.AlgorithmSHA256, ParallelWorkers: 2},
		Aliases:          storage.NewAliases(home, nil),
		Clock:            clk,
	}, logging.Nop())

	if err := coord.Bootstrap(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return db, coord
}

func TestCoordinator_Scan(t *testing.T) {
	ctx := context.Background()

	t.Run("reports health and actions", func(t *testing.T) {
		root := t.TempDir()
		for _, name := range []string{"a.jpg", "b.jpg", "c.pdf"} {
			testutil.MustWriteFile(t, filepath.Join(root, name), name)
		}

		_, coord := newCoordinator(t, root, 0)
		report, err := coord.Scan(ctx, root)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if report.TotalFiles != 3 {
			t.Errorf("expected 3 files, got %d", report.TotalFiles)
		}
		if report.Health == nil || report.Health.Score != 100 {
			t.Errorf("expected a healthy folder, got %+v", report.Health)
		}
		if report.Actions == nil {
			t.Error("expected non-nil actions")
		}
		if len(coord.Running()) != 0 {
			t.Errorf("expected no running operations, got %v", coord.Running())
		}
	})

	t.Run("resolves aliases against home", func(t *testing.T) {
		home := t.TempDir()
		testutil.MustWriteFile(t, filepath.Join(home, "Downloads", "a.zip"), "zip")

		_, coord := newCoordinator(t, home, 0)
		report, err := coord.Scan(ctx, "downloads")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if report.RootPath != filepath.Join(home, "Downloads") {
			t.Errorf("expected downloads folder, got %s", report.RootPath)
		}
	})

	t.Run("fails for missing root", func(t *testing.T) {
		_, coord := newCoordinator(t, t.TempDir(), 0)
		_, err := coord.Scan(ctx, filepath.Join(t.TempDir(), "missing"))
		if !errors.Is(err, storage.ErrPathNotFound) {
			t.Errorf("expected ErrPathNotFound, got %v", err)
		}
	})
}

func TestCoordinator_FindDuplicates(t *testing.T) {
	root := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(root, "a.txt"), "same content")
	testutil.MustWriteFile(t, filepath.Join(root, "sub", "b.txt"), "same content")
	testutil.MustWriteFile(t, filepath.Join(root, "c.txt"), "other")

	_, coord := newCoordinator(t, root, 0)
	report, err := coord.FindDuplicates(context.Background(), root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(report.Groups))
	}
	if report.Summary.DuplicateFiles != 1 {
		t.Errorf("expected 1 duplicate file, got %d", report.Summary.DuplicateFiles)
	}
	if report.Summary.WastedBytes != int64(len("same content")) {
		t.Errorf("expected %d wasted bytes, got %d", len("same content"), report.Summary.WastedBytes)
	}
}

func TestCoordinator_ClassifyPath(t *testing.T) {
	root := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(root, "screenshot_1.png"), "png")
	testutil.MustWriteFile(t, filepath.Join(root, "notes.txt"), "txt")

	_, coord := newCoordinator(t, root, 0)
	report, err := coord.ClassifyPath(context.Background(), root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Classifications) != 2 {
		t.Fatalf("expected 2 classifications, got %d", len(report.Classifications))
	}
	names := report.SmartFolders[filetype.Images]
	if len(names) == 0 || names[0] != "Screenshots" {
		t.Errorf("expected screenshot folder names, got %v", names)
	}
}

func TestCoordinator_Organize(t *testing.T) {
	ctx := context.Background()

	t.Run("moves files and records progress", func(t *testing.T) {
		root := t.TempDir()
		for _, name := range []string{"a.jpg", "b.png", "c.pdf"} {
			testutil.MustWriteFile(t, filepath.Join(root, name), name)
		}

		db, coord := newCoordinator(t, root, 0)
		report, err := coord.Organize(ctx, root, map[filetype.Label]bool{
			filetype.Images:    true,
			filetype.Documents: true,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if report.Organized != 3 {
			t.Errorf("expected 3 files organized, got %d", report.Organized)
		}
		if report.XPGained != 3*coordinator.XPPerFileOrganized {
			t.Errorf("expected %d xp, got %d", 3*coordinator.XPPerFileOrganized, report.XPGained)
		}
		testutil.MustExist(t, filepath.Join(root, string(filetype.Images), "a.jpg"))
		testutil.MustExist(t, filepath.Join(root, string(filetype.Documents), "c.pdf"))

		if len(report.Rewards.NewAchievements) != 1 || report.Rewards.NewAchievements[0] != "first_organization" {
			t.Errorf("expected first_organization, got %v", report.Rewards.NewAchievements)
		}
		if !report.Rewards.LevelUp || *report.Rewards.NewLevel != 2 {
			t.Errorf("expected level up to 2, got %+v", report.Rewards)
		}

		stats, err := db.Stats.Get(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if stats.FilesOrganized != 3 || stats.FoldersCleaned != 1 {
			t.Errorf("unexpected stats: %+v", stats)
		}

		user, err := db.Users.Get(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if user.TotalXP != 115 {
			t.Errorf("expected 115 xp, got %d", user.TotalXP)
		}

		recent, err := db.Activity.Recent(ctx, 10)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		found := false
		for _, a := range recent {
			if a.Type == database.ActivityFilesOrganized && a.XPGained == 15 {
				found = true
			}
		}
		if !found {
			t.Error("expected a files_organized activity")
		}
	})

	t.Run("records nothing when no file moves", func(t *testing.T) {
		root := t.TempDir()
		testutil.MustWriteFile(t, filepath.Join(root, "a.jpg"), "a")

		db, coord := newCoordinator(t, root, 0)
		report, err := coord.Organize(ctx, root, map[filetype.Label]bool{filetype.Documents: true})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if report.Organized != 0 || report.XPGained != 0 {
			t.Errorf("unexpected report: %+v", report)
		}

		stats, err := db.Stats.Get(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if stats.FoldersCleaned != 0 {
			t.Errorf("expected 0 folders cleaned, got %d", stats.FoldersCleaned)
		}
	})

	t.Run("quick sort rejects unknown folders", func(t *testing.T) {
		_, coord := newCoordinator(t, t.TempDir(), 0)
		_, err := coord.QuickSort(ctx, "music")
		if !errors.Is(err, coordinator.ErrUnknownFolder) {
			t.Errorf("expected ErrUnknownFolder, got %v", err)
		}
	})

	t.Run("quick sort organizes an alias", func(t *testing.T) {
		home := t.TempDir()
		downloads := filepath.Join(home, "Downloads")
		testutil.MustWriteFile(t, filepath.Join(downloads, "setup.zip"), "zip")
		testutil.MustWriteFile(t, filepath.Join(downloads, "song.mp3"), "mp3")

		_, coord := newCoordinator(t, home, 0)
		report, err := coord.QuickSort(ctx, "Downloads")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if report.Organized != 2 {
			t.Errorf("expected 2 files organized, got %d", report.Organized)
		}
		testutil.MustExist(t, filepath.Join(downloads, string(filetype.Archives), "setup.zip"))
	})
}

func TestCoordinator_DeleteFiles(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes files and records progress", func(t *testing.T) {
		root := t.TempDir()
		a := filepath.Join(root, "a.txt")
		b := filepath.Join(root, "sub", "b.txt")
		testutil.MustWriteSized(t, a, 100)
		testutil.MustWriteSized(t, b, 50)

		db, coord := newCoordinator(t, root, 0)
		report, err := coord.DeleteFiles(ctx, []string{a, b, filepath.Join(root, "missing.txt")})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if report.Deleted != 2 || report.BytesFreed != 150 {
			t.Errorf("unexpected result: %+v", report.DeleteResult)
		}
		if len(report.Errors) != 1 {
			t.Errorf("expected 1 error, got %v", report.Errors)
		}
		if report.XPGained != 2*coordinator.XPPerFileDeleted {
			t.Errorf("expected %d xp, got %d", 2*coordinator.XPPerFileDeleted, report.XPGained)
		}
		testutil.MustNotExist(t, a)

		stats, err := db.Stats.Get(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if stats.DuplicatesRemoved != 2 || stats.SpaceFreed != 150 {
			t.Errorf("unexpected stats: %+v", stats)
		}
	})

	t.Run("awards nothing when every path is missing", func(t *testing.T) {
		root := t.TempDir()
		db, coord := newCoordinator(t, root, 0)

		report, err := coord.DeleteFiles(ctx, []string{filepath.Join(root, "gone.txt")})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if report.Deleted != 0 || report.XPGained != 0 {
			t.Errorf("unexpected report: %+v", report)
		}

		user, err := db.Users.Get(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if user.TotalXP != 0 {
			t.Errorf("expected 0 xp, got %d", user.TotalXP)
		}
	})
}

func TestCoordinator_Concurrency(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects more roots than the limit", func(t *testing.T) {
		root := t.TempDir()
		_, coord := newCoordinator(t, root, 1)

		dirs := []string{filepath.Join(root, "x"), filepath.Join(root, "y")}
		var paths []string
		for _, dir := range dirs {
			if err := os.MkdirAll(dir, 0755); err != nil {
				t.Fatalf("failed to create directory: %v", err)
			}
			path := filepath.Join(dir, "f.txt")
			testutil.MustWriteFile(t, path, "f")
			paths = append(paths, path)
		}

		_, err := coord.DeleteFiles(ctx, paths)
		if !errors.Is(err, coordinator.ErrTooBusy) {
			t.Errorf("expected ErrTooBusy, got %v", err)
		}
		testutil.MustExist(t, paths[0])
	})

	t.Run("cancel fails when nothing runs", func(t *testing.T) {
		_, coord := newCoordinator(t, t.TempDir(), 0)
		if err := coord.Cancel("/nowhere"); !errors.Is(err, coordinator.ErrNotRunning) {
			t.Errorf("expected ErrNotRunning, got %v", err)
		}
	})

	t.Run("cancel stops a running operation", func(t *testing.T) {
		root := t.TempDir()
		_, coord := newCoordinator(t, root, 0)

		opCtx, release, err := coordinator.Acquire(coord, context.Background(), root)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if running := coord.Running(); len(running) != 1 || running[0] != root {
			t.Fatalf("expected %s to be running, got %v", root, running)
		}

		if err := coord.Cancel(root); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		select {
		case <-opCtx.Done():
		default:
			t.Error("expected operation context to be cancelled")
		}

		release()
		if running := coord.Running(); len(running) != 0 {
			t.Errorf("expected nothing running, got %v", running)
		}
	})
}
