package database_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jeffanddom/organizex/internal/database"
	"github.com/jeffanddom/organizex/tests/testutil"
)

func TestFromURL(t *testing.T) {
	t.Run("rejects unsupported schemes", func(t *testing.T) {
		for _, url := range []string{"", "mysql://localhost/db", "sqlite://"} {
			if _, err := database.FromURL(url); err == nil {
				t.Errorf("expected error for %q", url)
			}
		}
	})

	t.Run("detects the dialect", func(t *testing.T) {
		cases := map[string]database.Dialect{
			"postgres://u:p@localhost/organizex":   database.DialectPostgres,
			"postgresql://localhost/organizex":     database.DialectPostgres,
			"sqlite:///var/lib/organizex/state.db": database.DialectSQLite,
			":memory:":                             database.DialectSQLite,
		}
		for url, expected := range cases {
			dialect, err := database.DialectOf(url)
			if err != nil {
				t.Fatalf("unexpected error for %q: %v", url, err)
			}
			if dialect != expected {
				t.Errorf("%q: expected %s, got %s", url, expected, dialect)
			}
		}
	})

	t.Run("opens sqlite file databases", func(t *testing.T) {
		db, err := database.FromURL("sqlite://" + t.TempDir() + "/organizex.db")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer db.Close()

		if db.Dialect() != database.DialectSQLite {
			t.Errorf("expected sqlite dialect, got %s", db.Dialect())
		}
		if err := db.Health(context.Background()); err != nil {
			t.Errorf("unexpected health error: %v", err)
		}
	})
}

func TestDatabase_WithinTransaction(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	t.Run("commits on success", func(t *testing.T) {
		err := db.WithinTransaction(ctx, func(repos *database.Repositories) error {
			return repos.Stats.Increment(ctx, database.StatFilesOrganized, 3)
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		stats, err := db.Stats.Get(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if stats.FilesOrganized != 3 {
			t.Errorf("expected 3 files organized, got %d", stats.FilesOrganized)
		}
	})

	t.Run("rolls back on error", func(t *testing.T) {
		boom := errors.New("boom")
		err := db.WithinTransaction(ctx, func(repos *database.Repositories) error {
			if err := repos.Stats.Increment(ctx, database.StatFilesOrganized, 100); err != nil {
				return err
			}
			return boom
		})
		if !errors.Is(err, boom) {
			t.Fatalf("expected boom, got %v", err)
		}

		stats, err := db.Stats.Get(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if stats.FilesOrganized != 3 {
			t.Errorf("expected rollback to keep 3, got %d", stats.FilesOrganized)
		}
	})

	t.Run("rolls back and repanics", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("expected panic to propagate")
			}
		}()
		_ = db.Exclusive(ctx, func(repos *database.Repositories) error {
			_ = repos.Stats.Increment(ctx, database.StatFilesOrganized, 1)
			panic("boom")
		})
	})
}

func TestUserRepository(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	t.Run("starts at level one", func(t *testing.T) {
		user, err := db.Users.Get(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if user.Level != 1 || user.XP != 0 || user.TotalXP != 0 {
			t.Errorf("unexpected initial user: %+v", user)
		}
		if user.LastActive != nil {
			t.Error("expected nil last active")
		}
		if len(user.Badges) != 0 {
			t.Errorf("expected no badges, got %v", user.Badges)
		}
	})

	t.Run("derives level from total xp", func(t *testing.T) {
		if err := db.Users.SaveProgress(ctx, 250); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		user, err := db.Users.Get(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if user.Level != 3 || user.XP != 50 || user.TotalXP != 250 {
			t.Errorf("expected level 3 with 50 xp, got %+v", user)
		}
	})

	t.Run("stores badges as a set", func(t *testing.T) {
		badges := database.BadgeSet{"clean_desk_novice", "clean_desk_novice", "file_master"}
		if err := db.Users.SaveBadges(ctx, badges); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		user, err := db.Users.Get(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(user.Badges) != 2 || !user.Badges.Has("file_master") {
			t.Errorf("unexpected badges: %v", user.Badges)
		}
	})

	t.Run("records activity time and streak", func(t *testing.T) {
		at := time.Date(2024, 3, 4, 9, 30, 0, 0, time.UTC)
		if err := db.Users.TouchActive(ctx, at, 4); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		user, err := db.Users.Get(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if user.LastActive == nil || !user.LastActive.Equal(at) {
			t.Errorf("expected last active %v, got %v", at, user.LastActive)
		}
		if user.Streak != 4 {
			t.Errorf("expected streak 4, got %d", user.Streak)
		}
	})
}

func TestStatsRepository(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	t.Run("rejects negative deltas", func(t *testing.T) {
		if err := db.Stats.Increment(ctx, database.StatSpaceFreed, -1); err == nil {
			t.Error("expected error for negative delta")
		}
	})

	t.Run("rejects unknown stats", func(t *testing.T) {
		if err := db.Stats.Increment(ctx, database.Stat("level; DROP TABLE users"), 1); err == nil {
			t.Error("expected error for unknown stat")
		}
	})

	t.Run("streak only rises", func(t *testing.T) {
		if err := db.Stats.RaiseStreak(ctx, 5); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := db.Stats.RaiseStreak(ctx, 2); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		stats, err := db.Stats.Get(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if stats.StreakDays != 5 {
			t.Errorf("expected streak 5, got %d", stats.StreakDays)
		}
	})
}

func TestActivityRepository(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 12; i++ {
		entry := &database.Activity{
			Type:        database.ActivityFilesOrganized,
			Description: "Organized files",
			XPGained:    5,
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}
		if err := db.Activity.Append(ctx, entry); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if entry.ID == 0 {
			t.Fatal("expected ID to be set")
		}
	}

	t.Run("returns newest first", func(t *testing.T) {
		recent, err := db.Activity.Recent(ctx, 10)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(recent) != 10 {
			t.Fatalf("expected 10 entries, got %d", len(recent))
		}
		if !recent[0].CreatedAt.Equal(base.Add(11 * time.Minute)) {
			t.Errorf("expected newest entry first, got %v", recent[0].CreatedAt)
		}
	})

	t.Run("counts entries since a time", func(t *testing.T) {
		count, err := db.Activity.CountSince(ctx, database.ActivityFilesOrganized, base.Add(10*time.Minute))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if count != 2 {
			t.Errorf("expected 2, got %d", count)
		}
	})
}
