package middleware // middleware provides reusable HTTP middleware for the movie catalog API

import (
	"net/http" // HTTP status codes for responses
	"strings"  // prefix checking and trimming of the Authorization header

	"github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

	"github.com/iliyamo/movie-catalog/internal/utils" // token parsing shared with the issuer
)

// Context keys set by JWTAuth.
const (
	ContextUsername = "username"
	ContextClaims   = "claims"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token and
// stores the parsed claims and the username (the token subject) on the
// context.  The secret must match the one used when issuing tokens.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))

			claims, err := utils.ParseAccessToken(secret, raw)
			if err != nil || claims.Subject == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			c.Set(ContextClaims, claims)
			c.Set(ContextUsername, claims.Subject)
			return next(c)
		}
	}
}

// ClaimsFrom returns the claims stored by JWTAuth, or nil on routes that are
// not protected.
func ClaimsFrom(c echo.Context) *utils.Claims {
	cl, _ := c.Get(ContextClaims).(*utils.Claims)
	return cl
}
