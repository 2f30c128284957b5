package middleware

import (
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"
)

// Logger writes one debug line per admin request. Scrapes of /metrics and
// /healthz are frequent, so they are only logged when they fail.
func Logger(logger ectologger.Logger) echo.MiddlewareFunc {
	quiet := map[string]bool{"/metrics": true, "/healthz": true}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				// commit the response so the status below is the one sent
				c.Error(err)
			}

			status := c.Response().Status
			if quiet[c.Path()] && status < 400 {
				return nil
			}

			req := c.Request()
			logger.WithContext(req.Context()).WithFields(map[string]any{
				"method":      req.Method,
				"route":       c.Path(),
				"status":      status,
				"duration_ms": time.Since(start).Milliseconds(),
				"bytes":       c.Response().Size,
			}).Debugf("%s %s", req.Method, req.URL.Path)

			return nil
		}
	}
}
