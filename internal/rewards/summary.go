package rewards

import (
	"context"
	"sort"

	"github.com/jeffanddom/organizex/internal/clock"
	"github.com/jeffanddom/organizex/internal/database"
)

// NextBadge is an unearned badge with progress towards it
type NextBadge struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Progress  float64          `json:"progress"`
	Remaining int64            `json:"remaining"`
	Counter   database.Counter `json:"type"`
}

// Summary is an overview of the user's progression
type Summary struct {
	Level                 int64       `json:"level"`
	XP                    int64       `json:"xp"`
	NextLevelXP           int64       `json:"nextLevelXp"`
	TotalBadges           int         `json:"totalBadges"`
	EarnedBadges          int         `json:"earnedBadges"`
	TotalAchievements     int         `json:"totalAchievements"`
	CompletedAchievements int         `json:"completedAchievements"`
	Streak                int64       `json:"streak"`
	NextBadges            []NextBadge `json:"nextBadges"`
	CompletionPercentage  float64     `json:"completionPercentage"`
}

// BadgeStatus is a catalog badge with whether it has been earned
type BadgeStatus struct {
	database.Badge
	Earned bool `json:"earned"`
}

// Summary computes the progression overview
func (e *Engine) Summary(ctx context.Context) (*Summary, error) {
	snap, err := e.db.Snapshot(ctx, clock.StartOfDay(e.clock.Now()))
	if err != nil {
		return nil, err
	}
	badges, err := e.db.Badges.List(ctx)
	if err != nil {
		return nil, err
	}
	achievements, err := e.db.Achievements.List(ctx)
	if err != nil {
		return nil, err
	}

	user := snap.User
	summary := &Summary{
		Level:             user.Level,
		XP:                user.XP,
		NextLevelXP:       database.XPPerLevel - user.XP,
		TotalBadges:       len(badges),
		EarnedBadges:      len(user.Badges),
		TotalAchievements: len(achievements),
		Streak:            user.Streak,
		NextBadges:        nextBadges(badges, snap, 3),
	}
	for _, a := range achievements {
		if a.Completed {
			summary.CompletedAchievements++
		}
	}

	var metrics float64
	for _, done := range []bool{
		snap.Stats.FilesOrganized > 0,
		snap.Stats.DuplicatesRemoved > 0,
		snap.Stats.QuestsCompleted > 0,
		user.Level > 1,
	} {
		if done {
			metrics++
		}
	}
	summary.CompletionPercentage = metrics / 4 * 100

	return summary, nil
}

// nextBadges returns up to limit unearned badges, closest to completion first
func nextBadges(badges []*database.Badge, snap *database.Snapshot, limit int) []NextBadge {
	next := []NextBadge{}
	for _, b := range badges {
		if snap.User.Badges.Has(b.ID) || b.Requirement.Min <= 0 {
			continue
		}
		current, err := snap.Value(b.Requirement.Counter)
		if err != nil || current >= b.Requirement.Min {
			continue
		}

		pct := float64(current) / float64(b.Requirement.Min) * 100
		if pct > 99 {
			pct = 99
		}
		next = append(next, NextBadge{
			ID:        b.ID,
			Name:      b.Name,
			Progress:  pct,
			Remaining: b.Requirement.Min - current,
			Counter:   b.Requirement.Counter,
		})
	}

	sort.SliceStable(next, func(i, j int) bool {
		if next[i].Progress != next[j].Progress {
			return next[i].Progress > next[j].Progress
		}
		return next[i].ID < next[j].ID
	})
	if len(next) > limit {
		next = next[:limit]
	}
	return next
}

// ListBadges returns the catalog with earned flags
func (e *Engine) ListBadges(ctx context.Context) ([]BadgeStatus, error) {
	user, err := e.db.Users.Get(ctx)
	if err != nil {
		return nil, err
	}
	badges, err := e.db.Badges.List(ctx)
	if err != nil {
		return nil, err
	}

	statuses := make([]BadgeStatus, 0, len(badges))
	for _, b := range badges {
		statuses = append(statuses, BadgeStatus{Badge: *b, Earned: user.Badges.Has(b.ID)})
	}
	return statuses, nil
}

// ListAchievements returns every achievement with stored progress
func (e *Engine) ListAchievements(ctx context.Context) ([]*database.Achievement, error) {
	return e.db.Achievements.List(ctx)
}
