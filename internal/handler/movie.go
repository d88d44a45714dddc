package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/movie-catalog/internal/model"
)

// MovieService is the movie API the handlers use.  *service.MovieService
// implements it.
type MovieService interface {
	List(ctx context.Context) ([]model.Movie, error)
	Get(ctx context.Context, id uint64) (model.Movie, error)
	ListByCategory(ctx context.Context, category string) ([]model.Movie, error)
	CreateMany(ctx context.Context, in []model.MovieInput) ([]model.Movie, error)
	Update(ctx context.Context, id uint64, in model.MovieInput) (model.Movie, error)
	Delete(ctx context.Context, id uint64) (model.Movie, error)
}

// CachePurger drops cached movie responses after a write.
type CachePurger interface {
	Purge(ctx context.Context) error
}

// MovieHandler serves /v1/movies.
type MovieHandler struct {
	Movies MovieService
	Cache  CachePurger
	log    *zap.Logger
}

func NewMovieHandler(movies MovieService, cache CachePurger, logger *zap.Logger) *MovieHandler {
	return &MovieHandler{Movies: movies, Cache: cache, log: logger.Named("MovieHandler")}
}

// movieID parses the :id path parameter.
func movieID(c echo.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

// purge runs after a committed write.  Failures are logged; the entries
// still expire on their TTL.
func (h *MovieHandler) purge(ctx context.Context) {
	if h.Cache == nil {
		return
	}
	if err := h.Cache.Purge(ctx); err != nil {
		h.log.Warn("movie cache purge failed", zap.Error(err))
	}
}

// List returns every movie, or those whose category matches ?category=
// exactly.
func (h *MovieHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	var (
		movies []model.Movie
		err    error
	)
	if category := strings.TrimSpace(c.QueryParam("category")); category != "" {
		movies, err = h.Movies.ListByCategory(ctx, category)
	} else {
		movies, err = h.Movies.List(ctx)
	}
	if err != nil {
		return fail(c, h.log, "list movies", err)
	}
	return c.JSON(http.StatusOK, movies)
}

func (h *MovieHandler) Get(c echo.Context) error {
	id, ok := movieID(c)
	if !ok {
		return badRequest(c, "invalid movie id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	m, err := h.Movies.Get(ctx, id)
	if err != nil {
		return fail(c, h.log, "get movie", err)
	}
	return c.JSON(http.StatusOK, m)
}

// CreateMany accepts a JSON array of movies and stores them in one
// transaction.  One invalid element rejects the whole batch.
func (h *MovieHandler) CreateMany(c echo.Context) error {
	var in []model.MovieInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "body must be a JSON array of movies")
	}
	for i := range in {
		if err := c.Validate(&in[i]); err != nil {
			return badRequest(c, "movie "+strconv.Itoa(i)+": "+err.Error())
		}
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	created, err := h.Movies.CreateMany(ctx, in)
	if err != nil {
		return fail(c, h.log, "create movies", err)
	}
	h.purge(ctx)
	return c.JSON(http.StatusCreated, created)
}

// Update overwrites every field of an existing movie.
func (h *MovieHandler) Update(c echo.Context) error {
	id, ok := movieID(c)
	if !ok {
		return badRequest(c, "invalid movie id")
	}
	var in model.MovieInput
	if ok, err := bindValid(c, &in); !ok {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	m, err := h.Movies.Update(ctx, id, in)
	if err != nil {
		return fail(c, h.log, "update movie", err)
	}
	h.purge(ctx)
	return c.JSON(http.StatusOK, m)
}

// Delete removes a movie and returns the removed record.
func (h *MovieHandler) Delete(c echo.Context) error {
	id, ok := movieID(c)
	if !ok {
		return badRequest(c, "invalid movie id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	m, err := h.Movies.Delete(ctx, id)
	if err != nil {
		return fail(c, h.log, "delete movie", err)
	}
	h.purge(ctx)
	return c.JSON(http.StatusOK, m)
}
