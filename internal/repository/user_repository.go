package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/movie-catalog/internal/model"
)

// UserRepo reads and writes the users and user_roles tables.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id, name, surname, username, email, password, is_active"

func scanUser(s rowScanner) (model.User, error) {
	var (
		u             model.User
		name, surname sql.NullString
	)
	if err := s.Scan(&u.ID, &name, &surname, &u.Username, &u.Email, &u.PasswordHash, &u.IsActive); err != nil {
		return model.User{}, err
	}
	if name.Valid {
		u.Name = &name.String
	}
	if surname.Valid {
		u.Surname = &surname.String
	}
	u.Roles = []model.Role{}
	return u, nil
}

func nullable(s *string) sql.NullString {
	if s == nil || strings.TrimSpace(*s) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// isDuplicate reports whether err is MySQL error 1062 (duplicate entry).
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}

// GetByUsername fetches a user and their roles.  It returns ErrUserNotFound
// when no row matches.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username = ? LIMIT 1", username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, err
	}
	roles, err := r.rolesOf(ctx, u.ID)
	if err != nil {
		return model.User{}, err
	}
	u.Roles = roles
	return u, nil
}

func (r *UserRepo) rolesOf(ctx context.Context, userID uint64) ([]model.Role, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT r.id, r.name FROM roles r
		 JOIN user_roles ur ON ur.role_id = r.id
		 WHERE ur.user_id = ? ORDER BY r.id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Role{}
	for rows.Next() {
		var role model.Role
		if err := rows.Scan(&role.ID, &role.Name); err != nil {
			return nil, err
		}
		out = append(out, role)
	}
	return out, rows.Err()
}

// ListAll returns every user ordered by id with roles attached.  Roles are
// loaded with a single join instead of one query per user.
func (r *UserRepo) ListAll(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []model.User{}
	index := map[uint64]int{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		index[u.ID] = len(users)
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	roleRows, err := r.DB.QueryContext(ctx,
		`SELECT ur.user_id, r.id, r.name FROM user_roles ur
		 JOIN roles r ON r.id = ur.role_id
		 ORDER BY ur.user_id, r.id`)
	if err != nil {
		return nil, err
	}
	defer roleRows.Close()
	for roleRows.Next() {
		var (
			userID uint64
			role   model.Role
		)
		if err := roleRows.Scan(&userID, &role.ID, &role.Name); err != nil {
			return nil, err
		}
		if i, ok := index[userID]; ok {
			users[i].Roles = append(users[i].Roles, role)
		}
	}
	if err := roleRows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

// inTx runs fn in a transaction and commits when it returns nil.
func (r *UserRepo) inTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if err = fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// Create inserts the user (PasswordHash must already be a bcrypt hash)
// together with its audit entry and sets u.ID.  A duplicate username
// yields ErrUsernameExists.  It returns the log row id.
func (r *UserRepo) Create(ctx context.Context, u *model.User, e model.LogEntry) (uint64, error) {
	var logID uint64
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"INSERT INTO users (name, surname, username, email, password, is_active) VALUES (?,?,?,?,?,?)",
			nullable(u.Name), nullable(u.Surname), u.Username, u.Email, u.PasswordHash, u.IsActive)
		if err != nil {
			if isDuplicate(err) {
				return ErrUsernameExists
			}
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		logID, err = insertLog(ctx, tx, uint64(id), e)
		if err != nil {
			return err
		}
		u.ID = uint64(id)
		return nil
	})
	if err != nil {
		return 0, err
	}
	if u.Roles == nil {
		u.Roles = []model.Role{}
	}
	return logID, nil
}

// UpdatePassword stores a new password hash and its audit entry.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, hash string, e model.LogEntry) (uint64, error) {
	var logID uint64
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "UPDATE users SET password = ? WHERE id = ?", hash, id)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrUserNotFound
		}
		logID, err = insertLog(ctx, tx, id, e)
		return err
	})
	return logID, err
}

// SetActive sets the is_active flag and writes its audit entry.  MySQL
// reports zero affected rows when the flag is unchanged, so the count is
// not checked.
func (r *UserRepo) SetActive(ctx context.Context, id uint64, active bool, e model.LogEntry) (uint64, error) {
	var logID uint64
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "UPDATE users SET is_active = ? WHERE id = ?", active, id); err != nil {
			return err
		}
		var err error
		logID, err = insertLog(ctx, tx, id, e)
		return err
	})
	return logID, err
}

// ReplaceRoles swaps the user's role set for roleIDs and writes the audit
// entry in one transaction.
func (r *UserRepo) ReplaceRoles(ctx context.Context, userID uint64, roleIDs []uint64, e model.LogEntry) (uint64, error) {
	var logID uint64
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM user_roles WHERE user_id = ?", userID); err != nil {
			return err
		}
		for _, rid := range roleIDs {
			if _, err := tx.ExecContext(ctx, "INSERT INTO user_roles (user_id, role_id) VALUES (?, ?)", userID, rid); err != nil {
				return err
			}
		}
		var err error
		logID, err = insertLog(ctx, tx, userID, e)
		return err
	})
	return logID, err
}

// Delete removes the user and their role links and writes the audit entry.
// Nothing is logged when the user does not exist.
func (r *UserRepo) Delete(ctx context.Context, id uint64, e model.LogEntry) (uint64, error) {
	var logID uint64
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM user_roles WHERE user_id = ?", id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrUserNotFound
		}
		logID, err = insertLog(ctx, tx, id, e)
		return err
	})
	return logID, err
}
