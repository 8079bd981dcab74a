// Package rewards owns every mutation of the user's progression: XP, levels,
// badges, achievements and the daily bonus.
package rewards

import (
	"context"
	"fmt"

	"github.com/jeffanddom/organizex/internal/clock"
	"github.com/jeffanddom/organizex/internal/database"
	"github.com/jeffanddom/organizex/internal/logging"
	"github.com/jeffanddom/organizex/internal/progress"
)

// Engine evaluates and applies rewards
type Engine struct {
	db     *database.Database
	clock  clock.Clock
	logger logging.Logger
}

// Result describes what a rewards check unlocked
type Result struct {
	NewBadges       []string `json:"newBadges"`
	NewAchievements []string `json:"newAchievements"`
	LevelUp         bool     `json:"levelUp"`
	NewLevel        *int64   `json:"newLevel"`
}

// NewEngine creates a rewards engine
func NewEngine(db *database.Database, clk clock.Clock, logger logging.Logger) *Engine {
	if clk == nil {
		clk = clock.Real{}
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Engine{db: db, clock: clk, logger: logger}
}

// Seed stores the badge and achievement catalogs. Existing rows are kept.
func (e *Engine) Seed(ctx context.Context) error {
	return e.db.WithinTransaction(ctx, func(repos *database.Repositories) error {
		if err := repos.Badges.Seed(ctx, Badges); err != nil {
			return err
		}
		return repos.Achievements.Seed(ctx, Achievements)
	})
}

// LevelFor returns the level reached with total XP
func LevelFor(totalXP int64) int64 {
	return database.LevelFor(totalXP)
}

// AwardXP adds amount to the user's total and recomputes level and in-level
// XP. It is the only way XP changes and must run inside Exclusive.
func AwardXP(ctx context.Context, repos *database.Repositories, amount int64, reason string) (*database.User, error) {
	if amount < 0 {
		return nil, fmt.Errorf("cannot award negative xp: %d", amount)
	}

	user, err := repos.Users.GetForUpdate(ctx)
	if err != nil {
		return nil, err
	}
	if amount == 0 {
		return user, nil
	}

	user.SetTotalXP(user.TotalXP + amount)
	if err := repos.Users.SaveProgress(ctx, user.TotalXP); err != nil {
		return nil, err
	}
	if err := repos.Stats.Increment(ctx, database.StatTotalXPEarned, amount); err != nil {
		return nil, err
	}
	return user, nil
}

// CheckRewards evaluates badges and achievements after xpGained was awarded
func (e *Engine) CheckRewards(ctx context.Context, xpGained int64) (*Result, error) {
	var result *Result
	err := e.db.Exclusive(ctx, func(repos *database.Repositories) error {
		var err error
		result, err = e.Check(ctx, repos, xpGained)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Check is CheckRewards for callers already inside Exclusive
func (e *Engine) Check(ctx context.Context, repos *database.Repositories, xpGained int64) (*Result, error) {
	now := e.clock.Now()
	result := &Result{NewBadges: []string{}, NewAchievements: []string{}}

	snap, err := repos.Snapshot(ctx, clock.StartOfDay(now))
	if err != nil {
		return nil, err
	}
	before := snap.User.TotalXP - xpGained
	if before < 0 {
		before = 0
	}

	achievements, err := repos.Achievements.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, a := range achievements {
		if a.Completed {
			continue
		}

		p := progress.Evaluate(a.Requirement, nil, snap, 0, a.Target)
		if p != a.Progress {
			if err := repos.Achievements.SaveProgress(ctx, a.ID, p); err != nil {
				return nil, err
			}
		}
		if p < a.Target {
			continue
		}

		completed, err := repos.Achievements.MarkCompleted(ctx, a.ID, now)
		if err != nil {
			return nil, err
		}
		if !completed {
			continue
		}
		if _, err := AwardXP(ctx, repos, a.XPReward, "achievement "+a.ID); err != nil {
			return nil, err
		}
		if err := repos.Activity.Append(ctx, &database.Activity{
			Type:        database.ActivityAchievementUnlocked,
			Description: "Achievement unlocked: " + a.Name,
			XPGained:    a.XPReward,
			CreatedAt:   now,
		}); err != nil {
			return nil, err
		}
		result.NewAchievements = append(result.NewAchievements, a.ID)
	}

	if len(result.NewAchievements) > 0 {
		if snap, err = repos.Snapshot(ctx, clock.StartOfDay(now)); err != nil {
			return nil, err
		}
	}

	newLevel := LevelFor(snap.User.TotalXP)
	if newLevel > LevelFor(before) {
		result.LevelUp = true
		result.NewLevel = &newLevel
	}

	badges, err := repos.Badges.List(ctx)
	if err != nil {
		return nil, err
	}
	earned := snap.User.Badges
	for _, b := range badges {
		if earned.Has(b.ID) {
			continue
		}
		// level badges are only reconsidered when a level boundary is crossed
		if b.Requirement.Counter == database.CounterLevel && !result.LevelUp {
			continue
		}
		value, err := snap.Value(b.Requirement.Counter)
		if err != nil {
			e.logger.Warn("skipping badge with invalid requirement", "badge", b.ID, "error", err)
			continue
		}
		if value >= b.Requirement.Min && earned.Add(b.ID) {
			result.NewBadges = append(result.NewBadges, b.ID)
		}
	}

	if len(result.NewBadges) > 0 {
		if err := repos.Users.SaveBadges(ctx, earned); err != nil {
			return nil, err
		}
		for _, id := range result.NewBadges {
			if err := repos.Activity.Append(ctx, &database.Activity{
				Type:        database.ActivityBadgeEarned,
				Description: "Badge earned: " + id,
				CreatedAt:   now,
			}); err != nil {
				return nil, err
			}
		}
	}

	if result.LevelUp || len(result.NewBadges) > 0 || len(result.NewAchievements) > 0 {
		e.logger.Info("rewards unlocked", "level_up", result.LevelUp,
			"badges", result.NewBadges, "achievements", result.NewAchievements)
	}
	return result, nil
}
