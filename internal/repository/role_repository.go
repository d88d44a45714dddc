package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/movie-catalog/internal/model"
)

// RoleRepo reads the roles lookup table.
type RoleRepo struct{ DB *sql.DB }

func NewRoleRepo(db *sql.DB) *RoleRepo { return &RoleRepo{DB: db} }

// ListByNames returns the roles whose name is in names, ordered by id.
// Names without a matching row are skipped.
func (r *RoleRepo) ListByNames(ctx context.Context, names []string) ([]model.Role, error) {
	out := []model.Role{}
	if len(names) == 0 {
		return out, nil
	}
	args := make([]any, len(names))
	for i, n := range names {
		args[i] = n
	}
	q := "SELECT id, name FROM roles WHERE name IN (?" + strings.Repeat(",?", len(names)-1) + ") ORDER BY id"
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var role model.Role
		if err := rows.Scan(&role.ID, &role.Name); err != nil {
			return nil, err
		}
		out = append(out, role)
	}
	return out, rows.Err()
}
