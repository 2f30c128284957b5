package middleware

import (
	"errors"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	appctx "github.com/Greenstand/domain-migration-scripts/pkg/context"
	migerrors "github.com/Greenstand/domain-migration-scripts/pkg/errors"
	"github.com/Greenstand/domain-migration-scripts/pkg/tracing"
	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Message   string         `json:"message"`
	RunID     string         `json:"run_id,omitempty"`
	RequestID string         `json:"request_id"`
	TraceID   string         `json:"trace_id"`
	Meta      map[string]any `json:"meta"`
}

// Error renders every handler error as an ErrorResponse. Client errors are
// logged at warn, everything else at error.
func Error(logger ectologger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		ctx := c.Request().Context()
		httpErr := toHTTPError(err)

		log := logger.WithContext(ctx).WithError(err)
		if httperror.IsClientError(httpErr) {
			log.Warnf("Admin request failed with %d", httpErr.Code)
		} else {
			log.Errorf("Admin request failed with %d", httpErr.Code)
		}

		if c.Response().Committed {
			return
		}

		_ = c.JSON(httpErr.Code, ErrorResponse{
			Message:   httpErr.Message,
			RunID:     appctx.GetRunID(ctx),
			RequestID: appctx.GetRequestID(ctx),
			TraceID:   tracing.TraceID(ctx),
			Meta:      httpErr.Meta,
		})
	}
}

func toHTTPError(err error) *httperror.HTTPError {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		message := http.StatusText(he.Code)
		if msg, ok := he.Message.(string); ok {
			message = msg
		}
		return httperror.NewHTTPError(he.Code, message)
	}

	if httperror.IsHTTPError(err) {
		var httpErr *httperror.HTTPError
		errors.As(err, &httpErr)
		return httpErr
	}

	if migerrors.Classify(err) != migerrors.KindUnknown {
		httpErr := migerrors.ToHTTPError(err, 0)
		delete(httpErr.Meta, "source_id")
		return httpErr
	}

	return httperror.NewHTTPError(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}
