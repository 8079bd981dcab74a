package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// StatsRepository handles the activity counters
type StatsRepository struct {
	q sqlx.ExtContext
}

// Get retrieves the counters
func (r *StatsRepository) Get(ctx context.Context) (*UserStats, error) {
	var stats UserStats
	query := r.q.Rebind(`
		SELECT id, files_organized, duplicates_removed, quests_completed,
			total_xp_earned, streak_days, folders_cleaned, space_freed
		FROM user_stats WHERE id = ?`)
	if err := sqlx.GetContext(ctx, r.q, &stats, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, storageErr("get stats", err)
	}
	return &stats, nil
}

// Increment adds delta to a counter. Counters never decrease.
func (r *StatsRepository) Increment(ctx context.Context, stat Stat, delta int64) error {
	column, err := stat.column()
	if err != nil {
		return err
	}
	if delta < 0 {
		return fmt.Errorf("negative increment for %s: %d", column, delta)
	}
	if delta == 0 {
		return nil
	}

	query := r.q.Rebind(fmt.Sprintf(`UPDATE user_stats SET %[1]s = %[1]s + ? WHERE id = ?`, column))
	_, err = r.q.ExecContext(ctx, query, delta, userID)
	return storageErr("increment "+column, err)
}

// RaiseStreak stores days as the streak counter if it exceeds the current one
func (r *StatsRepository) RaiseStreak(ctx context.Context, days int64) error {
	query := r.q.Rebind(`UPDATE user_stats SET streak_days = ? WHERE id = ? AND streak_days < ?`)
	_, err := r.q.ExecContext(ctx, query, days, userID, days)
	return storageErr("raise streak", err)
}
