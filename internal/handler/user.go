package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/movie-catalog/internal/middleware"
	"github.com/iliyamo/movie-catalog/internal/model"
)

// UserService is the user API the handlers use.  *service.UserService
// implements it.
type UserService interface {
	Get(ctx context.Context, username string) (model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Create(ctx context.Context, in model.UserCreate) (model.User, error)
	AssignRoles(ctx context.Context, username string, names []string) (model.User, error)
	UpdatePassword(ctx context.Context, username, current, next string) error
	SetActive(ctx context.Context, username string, active bool) (model.User, error)
	Delete(ctx context.Context, username string) error
	Logs(ctx context.Context, username string) ([]model.UserLog, error)
}

// UserHandler serves /v1/users.
type UserHandler struct {
	Users UserService
	log   *zap.Logger
}

func NewUserHandler(users UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{Users: users, log: logger.Named("UserHandler")}
}

func usernameParam(c echo.Context) string {
	return strings.TrimSpace(c.Param("username"))
}

// Register creates an active user without roles.
func (h *UserHandler) Register(c echo.Context) error {
	var in model.UserCreate
	if ok, err := bindValid(c, &in); !ok {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.Create(ctx, in)
	if err != nil {
		return fail(c, h.log, "create user", err)
	}
	return c.JSON(http.StatusCreated, u)
}

func (h *UserHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Users.List(ctx)
	if err != nil {
		return fail(c, h.log, "list users", err)
	}
	return c.JSON(http.StatusOK, users)
}

func (h *UserHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.Get(ctx, usernameParam(c))
	if err != nil {
		return fail(c, h.log, "get user", err)
	}
	return c.JSON(http.StatusOK, u)
}

// AssignRoles replaces the user's roles with the ones named in the body.
func (h *UserHandler) AssignRoles(c echo.Context) error {
	var in model.RolesInput
	if ok, err := bindValid(c, &in); !ok {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.AssignRoles(ctx, usernameParam(c), in.Roles)
	if err != nil {
		return fail(c, h.log, "assign roles", err)
	}
	return c.JSON(http.StatusOK, u)
}

// UpdatePassword lets users change their own password.  Admins may change
// anyone's but still supply the current one.
func (h *UserHandler) UpdatePassword(c echo.Context) error {
	username := usernameParam(c)
	cl := middleware.ClaimsFrom(c)
	if cl == nil || (cl.Subject != username && !cl.HasRole(model.RoleAdmin)) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	var in model.PasswordChange
	if ok, err := bindValid(c, &in); !ok {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.UpdatePassword(ctx, username, in.CurrentPassword, in.NewPassword); err != nil {
		return fail(c, h.log, "update password", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// SetState activates or deactivates the user.
func (h *UserHandler) SetState(c echo.Context) error {
	var in model.StateChange
	if ok, err := bindValid(c, &in); !ok {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.SetActive(ctx, usernameParam(c), *in.IsActive)
	if err != nil {
		return fail(c, h.log, "set user state", err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *UserHandler) Delete(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.Delete(ctx, usernameParam(c)); err != nil {
		return fail(c, h.log, "delete user", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Logs lists the audit entries written for the user.
func (h *UserHandler) Logs(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	logs, err := h.Users.Logs(ctx, usernameParam(c))
	if err != nil {
		return fail(c, h.log, "list user logs", err)
	}
	return c.JSON(http.StatusOK, logs)
}
