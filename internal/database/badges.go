package database

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// BadgeRepository handles the badge catalog
type BadgeRepository struct {
	q sqlx.ExtContext
}

// Seed inserts catalog entries that are not yet present
func (r *BadgeRepository) Seed(ctx context.Context, badges []Badge) error {
	query := r.q.Rebind(`
		INSERT INTO badges (id, name, description, icon, category, requirement)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING`)

	for _, b := range badges {
		if _, err := r.q.ExecContext(ctx, query,
			b.ID, b.Name, b.Description, b.Icon, b.Category, b.Requirement); err != nil {
			return storageErr("seed badge "+b.ID, err)
		}
	}
	return nil
}

// List returns the catalog ordered by ID
func (r *BadgeRepository) List(ctx context.Context) ([]*Badge, error) {
	var badges []*Badge
	query := `SELECT id, name, description, icon, category, requirement FROM badges ORDER BY id`
	if err := sqlx.SelectContext(ctx, r.q, &badges, query); err != nil {
		return nil, storageErr("list badges", err)
	}
	return badges, nil
}
