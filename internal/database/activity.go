package database

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

// ActivityRepository handles the append-only activity log
type ActivityRepository struct {
	q sqlx.ExtContext
}

// Append inserts an entry and fills in its ID
func (r *ActivityRepository) Append(ctx context.Context, activity *Activity) error {
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = time.Now()
	}
	activity.CreatedAt = activity.CreatedAt.UTC()

	query := r.q.Rebind(`
		INSERT INTO activity (type, description, xp_gained, created_at)
		VALUES (?, ?, ?, ?)
		RETURNING id`)

	err := r.q.QueryRowxContext(ctx, query,
		activity.Type, activity.Description, activity.XPGained, activity.CreatedAt,
	).Scan(&activity.ID)
	return storageErr("append activity", err)
}

// Recent returns up to limit entries, newest first
func (r *ActivityRepository) Recent(ctx context.Context, limit int) ([]*Activity, error) {
	if limit <= 0 {
		limit = 10
	}
	query := r.q.Rebind(`
		SELECT id, type, description, xp_gained, created_at
		FROM activity
		ORDER BY created_at DESC, id DESC
		LIMIT ?`)

	var entries []*Activity
	if err := sqlx.SelectContext(ctx, r.q, &entries, query, limit); err != nil {
		return nil, storageErr("list activity", err)
	}
	return entries, nil
}

// CountSince counts entries of a type created at or after since
func (r *ActivityRepository) CountSince(ctx context.Context, activityType ActivityType, since time.Time) (int64, error) {
	var count int64
	query := r.q.Rebind(`SELECT COUNT(*) FROM activity WHERE type = ? AND created_at >= ?`)
	if err := sqlx.GetContext(ctx, r.q, &count, query, activityType, since.UTC()); err != nil {
		return 0, storageErr("count activity", err)
	}
	return count, nil
}
