package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/iliyamo/movie-catalog/internal/model"
)

// MovieStore is the persistence the movie service needs.  The MySQL
// implementation is repository.MovieRepo.
type MovieStore interface {
	ListAll(ctx context.Context) ([]model.Movie, error)
	ListByCategory(ctx context.Context, category string) ([]model.Movie, error)
	GetByID(ctx context.Context, id uint64) (model.Movie, error)
	CreateMany(ctx context.Context, in []model.MovieInput) ([]model.Movie, error)
	Update(ctx context.Context, id uint64, in model.MovieInput) (model.Movie, error)
	Delete(ctx context.Context, id uint64) (model.Movie, error)
}

// MovieService is a stateless accessor for movie records.
type MovieService struct {
	store  MovieStore
	logger *zap.Logger
}

func NewMovieService(store MovieStore, logger *zap.Logger) *MovieService {
	return &MovieService{store: store, logger: logger.Named("MovieService")}
}

// List returns every movie.
func (s *MovieService) List(ctx context.Context) ([]model.Movie, error) {
	movies, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	return movies, nil
}

// Get returns one movie or ErrMovieNotFound.
func (s *MovieService) Get(ctx context.Context, id uint64) (model.Movie, error) {
	return s.store.GetByID(ctx, id)
}

// ListByCategory returns the movies whose category matches exactly.
func (s *MovieService) ListByCategory(ctx context.Context, category string) ([]model.Movie, error) {
	movies, err := s.store.ListByCategory(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("list movies by category: %w", err)
	}
	return movies, nil
}

// CreateMany persists all inputs and returns the created records.
func (s *MovieService) CreateMany(ctx context.Context, in []model.MovieInput) ([]model.Movie, error) {
	if len(in) == 0 {
		return []model.Movie{}, nil
	}
	movies, err := s.store.CreateMany(ctx, in)
	if err != nil {
		s.logger.Error("create movies failed", zap.Int("count", len(in)), zap.Error(err))
		return nil, fmt.Errorf("create movies: %w", err)
	}
	s.logger.Info("movies created", zap.Int("count", len(movies)))
	return movies, nil
}

// Update overwrites every field of the movie.  A missing id yields
// ErrMovieNotFound.
func (s *MovieService) Update(ctx context.Context, id uint64, in model.MovieInput) (model.Movie, error) {
	m, err := s.store.Update(ctx, id, in)
	if err != nil {
		return model.Movie{}, err
	}
	s.logger.Info("movie updated", zap.Uint64("movie_id", id))
	return m, nil
}

// Delete removes the movie and returns it as it was.  A missing id yields
// ErrMovieNotFound.
func (s *MovieService) Delete(ctx context.Context, id uint64) (model.Movie, error) {
	m, err := s.store.Delete(ctx, id)
	if err != nil {
		return model.Movie{}, err
	}
	s.logger.Info("movie deleted", zap.Uint64("movie_id", id), zap.String("title", m.Title))
	return m, nil
}
