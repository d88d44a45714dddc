package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/movie-catalog/internal/service"
)

// statusFor maps service errors onto HTTP statuses and client messages.
// Anything unrecognised is a 500 with a generic message.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrMovieNotFound):
		return http.StatusNotFound, "movie not found"
	case errors.Is(err, service.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, service.ErrUsernameTaken):
		return http.StatusConflict, "username already taken"
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, service.ErrPasswordTooLong):
		return http.StatusBadRequest, "password must be at most 72 bytes"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// fail writes the JSON error body for err.  Server errors are logged with
// the operation name.
func fail(c echo.Context, log *zap.Logger, op string, err error) error {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error(op+" failed", zap.Error(err))
	}
	return c.JSON(status, echo.Map{"error": msg})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}
