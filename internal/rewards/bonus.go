package rewards

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jeffanddom/organizex/internal/clock"
	"github.com/jeffanddom/organizex/internal/database"
)

// ErrAlreadyClaimed is returned when the daily bonus was already credited today
var ErrAlreadyClaimed = errors.New("already claimed today")

// Bonus tiers
const (
	BonusWelcome     = "welcome"
	BonusStreak      = "streak"
	BonusConsistency = "consistency"
	BonusDaily       = "daily"
)

// Bonus describes daily-bonus eligibility
type Bonus struct {
	Eligible bool   `json:"eligible"`
	Type     string `json:"bonusType,omitempty"`
	Amount   int64  `json:"amount,omitempty"`
	// StreakAfterClaim is the streak recorded once this bonus is claimed
	StreakAfterClaim int64  `json:"streakAfterClaim,omitempty"`
	Reason           string `json:"reason,omitempty"`
}

// Claim is the outcome of a successful daily-bonus claim
type Claim struct {
	Bonus
	Rewards *Result `json:"rewards"`
}

// dailyBonus decides eligibility from the last check-in. The tier uses the
// streak recorded before today's check-in.
func dailyBonus(user *database.User, now time.Time) Bonus {
	if user.LastActive == nil {
		return Bonus{Eligible: true, Type: BonusWelcome, Amount: 50, StreakAfterClaim: 1}
	}

	last := *user.LastActive
	if !last.Before(clock.StartOfDay(now)) {
		return Bonus{Eligible: false, Reason: "Already claimed today"}
	}

	next := int64(1)
	if clock.SameDay(now.AddDate(0, 0, -1), last) {
		next = user.Streak + 1
	}

	bonus := Bonus{Eligible: true, Type: BonusDaily, Amount: 10, StreakAfterClaim: next}
	switch {
	case user.Streak >= 7:
		bonus.Type, bonus.Amount = BonusStreak, 25
	case user.Streak >= 3:
		bonus.Type, bonus.Amount = BonusConsistency, 15
	}
	return bonus
}

// DailyBonus reports whether the daily bonus can be claimed now
func (e *Engine) DailyBonus(ctx context.Context) (*Bonus, error) {
	user, err := e.db.Users.Get(ctx)
	if err != nil {
		return nil, err
	}
	bonus := dailyBonus(user, e.clock.Now())
	return &bonus, nil
}

// ClaimDailyBonus records today's check-in, updates the streak and awards
// the bonus. A second claim on the same day fails with ErrAlreadyClaimed.
func (e *Engine) ClaimDailyBonus(ctx context.Context) (*Claim, error) {
	var claim *Claim
	err := e.db.Exclusive(ctx, func(repos *database.Repositories) error {
		now := e.clock.Now()

		user, err := repos.Users.GetForUpdate(ctx)
		if err != nil {
			return err
		}
		bonus := dailyBonus(user, now)
		if !bonus.Eligible {
			return ErrAlreadyClaimed
		}

		if err := repos.Users.TouchActive(ctx, now, bonus.StreakAfterClaim); err != nil {
			return err
		}
		if err := repos.Stats.RaiseStreak(ctx, bonus.StreakAfterClaim); err != nil {
			return err
		}
		if _, err := AwardXP(ctx, repos, bonus.Amount, "daily bonus"); err != nil {
			return err
		}
		if err := repos.Activity.Append(ctx, &database.Activity{
			Type:        database.ActivityBonusXP,
			Description: fmt.Sprintf("Bonus XP: %s bonus", bonus.Type),
			XPGained:    bonus.Amount,
			CreatedAt:   now,
		}); err != nil {
			return err
		}

		result, err := e.Check(ctx, repos, bonus.Amount)
		if err != nil {
			return err
		}
		claim = &Claim{Bonus: bonus, Rewards: result}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("daily bonus claimed", "type", claim.Type, "amount", claim.Amount, "streak", claim.StreakAfterClaim)
	return claim, nil
}
