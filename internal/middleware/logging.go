package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/movie-catalog/internal/metrics"
)

// RequestLogger logs one line per request and records it in the HTTP
// metrics.  Handler errors are passed to echo's error handler first so the
// logged status matches what the client receives.
func RequestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	log := logger.Named("http")
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			req, res := c.Request(), c.Response()
			latency := time.Since(start)
			metrics.ObserveHTTPRequest(req.Method, c.Path(), res.Status, latency)
			fields := []zap.Field{
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path),
				zap.String("route", c.Path()),
				zap.Int("status", res.Status),
				zap.Duration("latency", latency),
				zap.String("ip", c.RealIP()),
				zap.String("user", userID(c)),
			}
			if id := res.Header().Get(echo.HeaderXRequestID); id != "" {
				fields = append(fields, zap.String("request_id", id))
			}
			if err != nil {
				fields = append(fields, zap.Error(err))
			}
			switch {
			case res.Status >= 500:
				log.Error("request", fields...)
			case res.Status >= 400:
				log.Warn("request", fields...)
			default:
				log.Info("request", fields...)
			}
			return nil
		}
	}
}
