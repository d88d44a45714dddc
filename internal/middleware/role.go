package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireRole returns a middleware that lets the request through when the
// token claims grant at least one of roles.  It must run after JWTAuth;
// requests without claims or without a matching role get 403 Forbidden.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cl := ClaimsFrom(c)
			if cl != nil {
				for _, r := range roles {
					if cl.HasRole(r) {
						return next(c)
					}
				}
			}
			return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
		}
	}
}
