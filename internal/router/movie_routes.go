package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-catalog/internal/handler"
	"github.com/iliyamo/movie-catalog/internal/middleware"
	"github.com/iliyamo/movie-catalog/internal/model"
)

// RegisterMovies registers /v1/movies.  Reads are public and go through
// cache; writes require an admin token and purge the cache in the handler.
func RegisterMovies(e *echo.Echo, h *handler.MovieHandler, cache echo.MiddlewareFunc, jwtSecret string) {
	public := e.Group("/v1/movies", cache)
	public.GET("", h.List)
	public.GET("/:id", h.Get)

	admin := e.Group(
		"/v1/movies",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)
	admin.POST("", h.CreateMany)
	admin.PUT("/:id", h.Update)
	admin.DELETE("/:id", h.Delete)
}
