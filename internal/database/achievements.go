package database

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

// AchievementRepository handles achievement progress
type AchievementRepository struct {
	q sqlx.ExtContext
}

const achievementColumns = `id, name, description, icon, progress, target, xp_reward,
	completed, completed_at, requirement`

// Seed inserts achievements that are not yet present. Existing progress is kept.
func (r *AchievementRepository) Seed(ctx context.Context, achievements []Achievement) error {
	query := r.q.Rebind(`
		INSERT INTO achievements (` + achievementColumns + `)
		VALUES (?, ?, ?, ?, 0, ?, ?, ?, NULL, ?)
		ON CONFLICT (id) DO NOTHING`)

	for _, a := range achievements {
		if _, err := r.q.ExecContext(ctx, query,
			a.ID, a.Name, a.Description, a.Icon, a.Target, a.XPReward, false, a.Requirement); err != nil {
			return storageErr("seed achievement "+a.ID, err)
		}
	}
	return nil
}

// List returns every achievement ordered by ID
func (r *AchievementRepository) List(ctx context.Context) ([]*Achievement, error) {
	var achievements []*Achievement
	query := `SELECT ` + achievementColumns + ` FROM achievements ORDER BY id`
	if err := sqlx.SelectContext(ctx, r.q, &achievements, query); err != nil {
		return nil, storageErr("list achievements", err)
	}
	return achievements, nil
}

// SaveProgress stores progress for an incomplete achievement
func (r *AchievementRepository) SaveProgress(ctx context.Context, id string, progress int64) error {
	query := r.q.Rebind(`UPDATE achievements SET progress = ? WHERE id = ? AND completed = ?`)
	_, err := r.q.ExecContext(ctx, query, progress, id, false)
	return storageErr("save achievement progress", err)
}

// MarkCompleted completes an achievement once and reports whether this call
// completed it
func (r *AchievementRepository) MarkCompleted(ctx context.Context, id string, at time.Time) (bool, error) {
	query := r.q.Rebind(`
		UPDATE achievements SET completed = ?, completed_at = ?, progress = target
		WHERE id = ? AND completed = ?`)
	res, err := r.q.ExecContext(ctx, query, true, at.UTC(), id, false)
	if err != nil {
		return false, storageErr("complete achievement", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, storageErr("complete achievement", err)
	}
	return n > 0, nil
}
