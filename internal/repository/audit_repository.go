package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/movie-catalog/internal/model"
)

// AuditRepo reads the actions lookup and user_logs rows.  Log rows are
// written by UserRepo inside each mutation's transaction.
type AuditRepo struct{ DB *sql.DB }

func NewAuditRepo(db *sql.DB) *AuditRepo { return &AuditRepo{DB: db} }

// ActionByName resolves an action name to its persisted row.
func (r *AuditRepo) ActionByName(ctx context.Context, name model.ActionName) (model.Action, error) {
	var a model.Action
	err := r.DB.QueryRowContext(ctx, "SELECT id, name FROM actions WHERE name = ? LIMIT 1", string(name)).
		Scan(&a.ID, &a.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Action{}, ErrActionNotFound
		}
		return model.Action{}, err
	}
	return a, nil
}

// ListByUser returns a user's audit entries, oldest first.
func (r *AuditRepo) ListByUser(ctx context.Context, userID uint64) ([]model.UserLog, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT l.id, l.user_id, a.name, l.description, l.created_at
		 FROM user_logs l JOIN actions a ON a.id = l.action_id
		 WHERE l.user_id = ? ORDER BY l.id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.UserLog{}
	for rows.Next() {
		var l model.UserLog
		if err := rows.Scan(&l.ID, &l.UserID, &l.Action, &l.Description, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// insertLog writes one user_logs row on tx and returns its id.
func insertLog(ctx context.Context, tx *sql.Tx, userID uint64, e model.LogEntry) (uint64, error) {
	res, err := tx.ExecContext(ctx,
		"INSERT INTO user_logs (user_id, action_id, description, created_at) VALUES (?,?,?,?)",
		userID, e.ActionID, e.Description, e.CreatedAt)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}
