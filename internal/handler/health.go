package handler // handler holds the HTTP handlers of the movie catalog API

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler answers liveness and readiness checks.
type HealthHandler struct {
	DB Pinger
}

// Health reports that the process is serving requests.
func (h *HealthHandler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// Ready pings the database and answers 503 when it is unreachable.
func (h *HealthHandler) Ready(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()
	if err := h.DB.PingContext(ctx); err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "database unavailable"})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ready"})
}
