package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/movie-catalog/internal/handler"    // HTTP handlers
	"github.com/iliyamo/movie-catalog/internal/metrics"    // Prometheus exposition
	"github.com/iliyamo/movie-catalog/internal/middleware" // JWT authentication and role enforcement
)

// RegisterRoutes registers the unauthenticated health checks and /metrics.
// /healthz answers as long as the process is up; /readyz also pings the
// database.
func RegisterRoutes(e *echo.Echo, h *handler.HealthHandler) {
	e.GET("/healthz", h.Health)
	e.GET("/readyz", h.Ready)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
}

// RegisterAuth registers login under /v1/auth and the authenticated /v1/me.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/login", a.Login)

	e.GET("/v1/me", a.Me, middleware.JWTAuth(jwtSecret))
}
