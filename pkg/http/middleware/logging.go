package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	applogger "OptionPilot/pkg/logger"
)

// RequestLogging logs every request at debug level and server errors at warn.
// Handler errors are rendered here so the logged status is the final one.
func RequestLogging(l *applogger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			start := time.Now()

			if err := next(c); err != nil {
				c.Error(err)
			}

			status := c.Response().Status
			fields := []applogger.Field{
				applogger.String("method", req.Method),
				applogger.String("route", c.Path()),
				applogger.String("uri", req.RequestURI),
				applogger.String("remote", c.RealIP()),
				applogger.Int("status", status),
				applogger.Duration("latency_ms", time.Since(start)),
			}
			if id := req.Header.Get(echo.HeaderXRequestID); id != "" {
				fields = append(fields, applogger.String("request_id", id))
			}

			if status >= 500 {
				l.Warn("request failed", fields...)
			} else {
				l.Debug("request", fields...)
			}
			return nil
		}
	}
}
