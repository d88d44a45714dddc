package middleware

// identity.go holds helpers shared by the cache and rate limit middleware.

import (
	"github.com/labstack/echo/v4"
)

// userID returns the authenticated username, or "guest" when the request
// carries no verified token.
func userID(c echo.Context) string {
	if cl := ClaimsFrom(c); cl != nil && cl.Subject != "" {
		return cl.Subject
	}
	if v, ok := c.Get(ContextUsername).(string); ok && v != "" {
		return v
	}
	return "guest"
}
