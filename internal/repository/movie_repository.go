package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/movie-catalog/internal/model"
)

// MovieRepo encapsulates all database queries related to movies.  It
// depends on a sql.DB connection which is configured in main.
type MovieRepo struct {
	db *sql.DB
}

// NewMovieRepo constructs a MovieRepo with the provided DB handle.
func NewMovieRepo(db *sql.DB) *MovieRepo {
	return &MovieRepo{db: db}
}

const movieColumns = "id, title, overview, year, rating, category, director, studio, box_office"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMovie(s rowScanner) (model.Movie, error) {
	var m model.Movie
	err := s.Scan(&m.ID, &m.Title, &m.Overview, &m.Year, &m.Rating, &m.Category, &m.Director, &m.Studio, &m.BoxOffice)
	return m, err
}

func (r *MovieRepo) list(ctx context.Context, q string, args ...any) ([]model.Movie, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Movie{}
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListAll returns every movie ordered by id.
func (r *MovieRepo) ListAll(ctx context.Context) ([]model.Movie, error) {
	return r.list(ctx, "SELECT "+movieColumns+" FROM movies ORDER BY id")
}

// ListByCategory returns movies whose category equals the argument exactly.
func (r *MovieRepo) ListByCategory(ctx context.Context, category string) ([]model.Movie, error) {
	return r.list(ctx, "SELECT "+movieColumns+" FROM movies WHERE category = ? ORDER BY id", category)
}

// GetByID fetches a movie by id.  It returns ErrMovieNotFound if no row is
// found.
func (r *MovieRepo) GetByID(ctx context.Context, id uint64) (model.Movie, error) {
	m, err := scanMovie(r.db.QueryRowContext(ctx, "SELECT "+movieColumns+" FROM movies WHERE id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Movie{}, ErrMovieNotFound
		}
		return model.Movie{}, err
	}
	return m, nil
}

// CreateMany inserts all movies in one transaction and returns them with
// their generated ids.  Either every row is stored or none is.
func (r *MovieRepo) CreateMany(ctx context.Context, in []model.MovieInput) (out []model.Movie, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const q = `INSERT INTO movies (title, overview, year, rating, category, director, studio, box_office)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	out = make([]model.Movie, 0, len(in))
	for i, mi := range in {
		res, err := tx.ExecContext(ctx, q, mi.Title, mi.Overview, mi.Year, mi.Rating, mi.Category, mi.Director, mi.Studio, mi.BoxOffice)
		if err != nil {
			return nil, fmt.Errorf("insert movie %d: %w", i, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		out = append(out, mi.Movie(uint64(id)))
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update overwrites every column of the movie.  It returns ErrMovieNotFound
// when no row has the id.
func (r *MovieRepo) Update(ctx context.Context, id uint64, in model.MovieInput) (model.Movie, error) {
	if _, err := r.GetByID(ctx, id); err != nil {
		return model.Movie{}, err
	}
	const q = `UPDATE movies
	           SET title = ?, overview = ?, year = ?, rating = ?, category = ?, director = ?, studio = ?, box_office = ?
	           WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, q, in.Title, in.Overview, in.Year, in.Rating, in.Category, in.Director, in.Studio, in.BoxOffice, id); err != nil {
		return model.Movie{}, err
	}
	return in.Movie(id), nil
}

// Delete removes the movie and returns the row as it was.  It returns
// ErrMovieNotFound when no row has the id.
func (r *MovieRepo) Delete(ctx context.Context, id uint64) (model.Movie, error) {
	m, err := r.GetByID(ctx, id)
	if err != nil {
		return model.Movie{}, err
	}
	res, err := r.db.ExecContext(ctx, "DELETE FROM movies WHERE id = ?", id)
	if err != nil {
		return model.Movie{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.Movie{}, ErrMovieNotFound
	}
	return m, nil
}
