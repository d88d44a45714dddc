package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/movie-catalog/internal/middleware"
	"github.com/iliyamo/movie-catalog/internal/model"
	"github.com/iliyamo/movie-catalog/internal/service"
	"github.com/iliyamo/movie-catalog/internal/utils"
)

// Authenticator is the part of the user service used for login and /me.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (utils.AccessToken, error)
	Get(ctx context.Context, username string) (model.User, error)
}

// AuthHandler serves login and the current-user endpoint.
type AuthHandler struct {
	Users Authenticator
	log   *zap.Logger
}

func NewAuthHandler(users Authenticator, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{Users: users, log: logger.Named("AuthHandler")}
}

// Login exchanges a username and password for an access token.
func (h *AuthHandler) Login(c echo.Context) error {
	var in model.LoginInput
	if ok, err := bindValid(c, &in); !ok {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	tok, err := h.Users.Login(ctx, in.Username, in.Password)
	if err != nil {
		return fail(c, h.log, "login", err)
	}
	return c.JSON(http.StatusOK, tok)
}

type meResp struct {
	Username string      `json:"username"`
	Roles    []string    `json:"roles"`
	User     *model.User `json:"user,omitempty"`
}

// Me describes the caller.  The configured administrator has no stored
// record, so only the token claims are returned for it.
func (h *AuthHandler) Me(c echo.Context) error {
	cl := middleware.ClaimsFrom(c)
	if cl == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	resp := meResp{Username: cl.Subject, Roles: cl.Roles}
	u, err := h.Users.Get(ctx, cl.Subject)
	switch {
	case err == nil:
		resp.User = &u
	case !errors.Is(err, service.ErrUserNotFound):
		return fail(c, h.log, "load current user", err)
	}
	return c.JSON(http.StatusOK, resp)
}
