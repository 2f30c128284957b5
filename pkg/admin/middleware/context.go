package middleware

import (
	appctx "github.com/Greenstand/domain-migration-scripts/pkg/context"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Context stores the run id, a request id and, on /progress/:pipeline
// routes, the pipeline name on the request context so admin log lines
// carry the same fields as the run's own lines.
func Context(runID string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := c.Request().Header.Get(echo.HeaderXRequestID)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			c.Response().Header().Set(echo.HeaderXRequestID, requestID)

			ctx := appctx.SetRequestID(c.Request().Context(), requestID)
			if runID != "" {
				ctx = appctx.SetRunID(ctx, runID)
			}
			if name := c.Param("pipeline"); name != "" {
				ctx = appctx.SetPipeline(ctx, name)
			}

			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}
