// Package admin serves the optional operator endpoints of a run: health,
// live progress and Prometheus metrics.
package admin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/Greenstand/domain-migration-scripts/pkg/admin/middleware"
	migerrors "github.com/Greenstand/domain-migration-scripts/pkg/errors"
	"github.com/Greenstand/domain-migration-scripts/pkg/progress"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
)

type Server struct {
	echo      *echo.Echo
	port      int
	runID     string
	board     *progress.Board
	checks    map[string]Check
	logger    ectologger.Logger
	startTime time.Time
}

type Option func(*Server)

// WithCheck adds a named dependency check to /healthz.
func WithCheck(name string, check Check) Option {
	return func(s *Server) { s.checks[name] = check }
}

func New(serviceName string, port int, runID string, board *progress.Board, logger ectologger.Logger, opts ...Option) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.Error(logger)

	s := &Server{
		echo:      e,
		port:      port,
		runID:     runID,
		board:     board,
		checks:    map[string]Check{},
		logger:    logger,
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}

	e.Use(otelecho.Middleware(serviceName))
	e.Use(middleware.Context(runID))
	e.Use(middleware.Logger(logger))

	e.GET("/healthz", s.healthHandler)
	e.GET("/progress", s.progressHandler)
	e.GET("/progress/:pipeline", s.pipelineProgressHandler)
	e.GET("/progress/:pipeline/failures/:source_id", s.failureHandler)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return s
}

func (s *Server) Handler() http.Handler {
	return s.echo
}

type ProgressResponse struct {
	RunID     string              `json:"run_id"`
	Pipelines []progress.Snapshot `json:"pipelines"`
}

func (s *Server) progressHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, ProgressResponse{
		RunID:     s.runID,
		Pipelines: s.board.Snapshots(),
	})
}

func (s *Server) pipelineProgressHandler(c echo.Context) error {
	snapshot, err := s.snapshot(c.Param("pipeline"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, snapshot)
}

// failureHandler answers with the error a recent record failed with, using
// the status code of its kind.
func (s *Server) failureHandler(c echo.Context) error {
	snapshot, err := s.snapshot(c.Param("pipeline"))
	if err != nil {
		return err
	}

	sourceID, err := strconv.ParseInt(c.Param("source_id"), 10, 64)
	if err != nil {
		return httperror.NewHTTPErrorf(http.StatusBadRequest, "invalid source id %q", c.Param("source_id"))
	}

	failure, ok := snapshot.FindFailure(sourceID)
	if !ok {
		return httperror.NewHTTPErrorf(http.StatusNotFound, "no recent failure for source id %d", sourceID).
			AddMetaValue("pipeline", snapshot.Pipeline)
	}

	return migerrors.ToHTTPError(failure.Err(), sourceID).
		AddMetaValue("pipeline", snapshot.Pipeline).
		AddMetaValue("failed_at", failure.At)
}

func (s *Server) snapshot(pipeline string) (progress.Snapshot, error) {
	snapshot, ok := s.board.Get(pipeline)
	if !ok {
		return snapshot, httperror.NewHTTPErrorf(http.StatusNotFound, "no run for pipeline %s", pipeline).
			AddMetaValue("pipeline", pipeline)
	}
	return snapshot, nil
}

// Start serves in the background. Listen errors other than a clean
// shutdown are logged.
func (s *Server) Start() {
	addr := fmt.Sprintf(":%d", s.port)
	go func() {
		s.logger.Infof("Admin server listening on %s", addr)
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.WithError(err).Error("Admin server stopped")
		}
	}()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
