package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

// UserRepository handles the singleton progression record
type UserRepository struct {
	q       sqlx.ExtContext
	dialect Dialect
}

const userID = 1

const userColumns = `id, level, xp, total_xp, streak, badges, completed_quests, last_active, created_at`

// Get retrieves the user record
func (r *UserRepository) Get(ctx context.Context) (*User, error) {
	return r.get(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`)
}

// GetForUpdate retrieves the user record and, where supported, locks the row
// until the surrounding transaction ends
func (r *UserRepository) GetForUpdate(ctx context.Context) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	if r.dialect == DialectPostgres {
		query += ` FOR UPDATE`
	}
	return r.get(ctx, query)
}

func (r *UserRepository) get(ctx context.Context, query string) (*User, error) {
	var user User
	if err := sqlx.GetContext(ctx, r.q, &user, r.q.Rebind(query), userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, storageErr("get user", err)
	}
	if user.Badges == nil {
		user.Badges = BadgeSet{}
	}
	return &user, nil
}

// SaveProgress stores total XP and its derived level and in-level XP
func (r *UserRepository) SaveProgress(ctx context.Context, totalXP int64) error {
	var u User
	u.SetTotalXP(totalXP)
	query := r.q.Rebind(`UPDATE users SET level = ?, xp = ?, total_xp = ? WHERE id = ?`)
	_, err := r.q.ExecContext(ctx, query, u.Level, u.XP, u.TotalXP, userID)
	return storageErr("save user progress", err)
}

// SaveBadges replaces the earned badge set
func (r *UserRepository) SaveBadges(ctx context.Context, badges BadgeSet) error {
	query := r.q.Rebind(`UPDATE users SET badges = ? WHERE id = ?`)
	_, err := r.q.ExecContext(ctx, query, badges, userID)
	return storageErr("save badges", err)
}

// TouchActive records a check-in at the given time with the resulting streak
func (r *UserRepository) TouchActive(ctx context.Context, at time.Time, streak int64) error {
	query := r.q.Rebind(`UPDATE users SET last_active = ?, streak = ? WHERE id = ?`)
	_, err := r.q.ExecContext(ctx, query, at.UTC(), streak, userID)
	return storageErr("touch user activity", err)
}

// IncrementCompletedQuests bumps the completed quest counter
func (r *UserRepository) IncrementCompletedQuests(ctx context.Context) error {
	query := r.q.Rebind(`UPDATE users SET completed_quests = completed_quests + 1 WHERE id = ?`)
	_, err := r.q.ExecContext(ctx, query, userID)
	return storageErr("increment completed quests", err)
}
