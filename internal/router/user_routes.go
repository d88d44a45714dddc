package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-catalog/internal/handler"
	"github.com/iliyamo/movie-catalog/internal/middleware"
	"github.com/iliyamo/movie-catalog/internal/model"
)

// RegisterUsers registers /v1/users.  Registration is public.  Password
// changes need any valid token; the handler checks the caller owns the
// account or is an admin.  Everything else is admin only.
func RegisterUsers(e *echo.Echo, h *handler.UserHandler, jwtSecret string) {
	e.POST("/v1/users", h.Register)

	jwt := middleware.JWTAuth(jwtSecret)
	e.PUT("/v1/users/:username/password", h.UpdatePassword, jwt)

	admin := e.Group("/v1/users", jwt, middleware.RequireRole(model.RoleAdmin))
	admin.GET("", h.List)
	admin.GET("/:username", h.Get)
	admin.PUT("/:username/roles", h.AssignRoles)
	admin.PATCH("/:username/state", h.SetState)
	admin.DELETE("/:username", h.Delete)
	admin.GET("/:username/logs", h.Logs)
}
