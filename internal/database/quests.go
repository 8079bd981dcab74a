package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

// QuestRepository handles quest persistence
type QuestRepository struct {
	q sqlx.ExtContext
}

const questColumns = `id, title, description, type, difficulty, xp_reward, status, category,
	progress, target, deadline, requirements, created_at, completed_at`

// Upsert inserts or replaces a quest
func (r *QuestRepository) Upsert(ctx context.Context, quest *Quest) error {
	query := r.q.Rebind(`
		INSERT INTO quests (` + questColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			type = excluded.type,
			difficulty = excluded.difficulty,
			xp_reward = excluded.xp_reward,
			status = excluded.status,
			category = excluded.category,
			progress = excluded.progress,
			target = excluded.target,
			deadline = excluded.deadline,
			requirements = excluded.requirements,
			completed_at = excluded.completed_at`)

	_, err := r.q.ExecContext(ctx, query, questArgs(quest)...)
	return storageErr("upsert quest", err)
}

// InsertIfAbsent inserts a quest unless one with the same ID exists and
// reports whether a row was written
func (r *QuestRepository) InsertIfAbsent(ctx context.Context, quest *Quest) (bool, error) {
	query := r.q.Rebind(`
		INSERT INTO quests (` + questColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING`)

	res, err := r.q.ExecContext(ctx, query, questArgs(quest)...)
	if err != nil {
		return false, storageErr("insert quest", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, storageErr("insert quest", err)
	}
	return n > 0, nil
}

func questArgs(q *Quest) []any {
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now()
	}
	return []any{
		q.ID, q.Title, q.Description, q.Type, q.Difficulty, q.XPReward, q.Status, q.Category,
		q.Progress, q.Target, utcPtr(q.Deadline), q.Requirements, q.CreatedAt.UTC(), utcPtr(q.CompletedAt),
	}
}

func utcPtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

// Get retrieves a quest by ID
func (r *QuestRepository) Get(ctx context.Context, id string) (*Quest, error) {
	var quest Quest
	query := r.q.Rebind(`SELECT ` + questColumns + ` FROM quests WHERE id = ?`)
	if err := sqlx.GetContext(ctx, r.q, &quest, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, storageErr("get quest", err)
	}
	return &quest, nil
}

// QuestFilter narrows List results. Zero values match everything.
type QuestFilter struct {
	Status   QuestStatus
	Category string
}

// List returns quests matching filter, newest first
func (r *QuestRepository) List(ctx context.Context, filter QuestFilter) ([]*Quest, error) {
	query := `SELECT ` + questColumns + ` FROM quests WHERE 1 = 1`
	var args []any
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, filter.Status)
	}
	if filter.Category != "" {
		query += ` AND category = ?`
		args = append(args, filter.Category)
	}
	query += ` ORDER BY created_at DESC, id`

	var quests []*Quest
	if err := sqlx.SelectContext(ctx, r.q, &quests, r.q.Rebind(query), args...); err != nil {
		return nil, storageErr("list quests", err)
	}
	return quests, nil
}

// ListOpen returns available and in-progress quests, oldest first
func (r *QuestRepository) ListOpen(ctx context.Context) ([]*Quest, error) {
	query := r.q.Rebind(`
		SELECT ` + questColumns + ` FROM quests
		WHERE status IN (?, ?)
		ORDER BY created_at, id`)

	var quests []*Quest
	if err := sqlx.SelectContext(ctx, r.q, &quests, query,
		QuestStatusAvailable, QuestStatusInProgress); err != nil {
		return nil, storageErr("list open quests", err)
	}
	return quests, nil
}

// Transition moves a quest to status if its current status is one of from.
// It reports whether the quest changed. completedAt is stored as given.
func (r *QuestRepository) Transition(ctx context.Context, id string, to QuestStatus, completedAt *time.Time, from ...QuestStatus) (bool, error) {
	query, args, err := sqlx.In(`
		UPDATE quests SET status = ?, completed_at = ?
		WHERE id = ? AND status IN (?)`, to, utcPtr(completedAt), id, from)
	if err != nil {
		return false, storageErr("transition quest", err)
	}

	res, err := r.q.ExecContext(ctx, r.q.Rebind(query), args...)
	if err != nil {
		return false, storageErr("transition quest", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, storageErr("transition quest", err)
	}
	return n > 0, nil
}

// SaveProgress stores progress and status for an open quest
func (r *QuestRepository) SaveProgress(ctx context.Context, id string, progress int64, status QuestStatus) error {
	query := r.q.Rebind(`
		UPDATE quests SET progress = ?, status = ?
		WHERE id = ? AND status IN (?, ?)`)
	_, err := r.q.ExecContext(ctx, query, progress, status, id,
		QuestStatusAvailable, QuestStatusInProgress)
	return storageErr("save quest progress", err)
}

// CountCreatedSince counts quests of a category created at or after since
func (r *QuestRepository) CountCreatedSince(ctx context.Context, category string, since time.Time) (int64, error) {
	var count int64
	query := r.q.Rebind(`SELECT COUNT(*) FROM quests WHERE category = ? AND created_at >= ?`)
	if err := sqlx.GetContext(ctx, r.q, &count, query, category, since.UTC()); err != nil {
		return 0, storageErr("count quests", err)
	}
	return count, nil
}

// CountCompletedSince counts quests completed at or after since
func (r *QuestRepository) CountCompletedSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	query := r.q.Rebind(`SELECT COUNT(*) FROM quests WHERE status = ? AND completed_at >= ?`)
	if err := sqlx.GetContext(ctx, r.q, &count, query, QuestStatusCompleted, since.UTC()); err != nil {
		return 0, storageErr("count completed quests", err)
	}
	return count, nil
}
