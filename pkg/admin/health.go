package admin

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
)

type CheckResult struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

type HealthResponse struct {
	Status     Status                 `json:"status"`
	RunID      string                 `json:"run_id,omitempty"`
	Uptime     string                 `json:"uptime"`
	Checks     map[string]CheckResult `json:"checks,omitempty"`
	ReportedAt time.Time              `json:"reported_at"`
}

// Check pings one dependency, e.g. the store or Redis.
type Check func(ctx context.Context) error

func (s *Server) runChecks(ctx context.Context) (map[string]CheckResult, Status) {
	overall := StatusHealthy
	results := make(map[string]CheckResult, len(s.checks))

	for name, check := range s.checks {
		start := time.Now()
		checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := check(checkCtx)
		cancel()

		result := CheckResult{Status: StatusHealthy, Latency: time.Since(start).String()}
		if err != nil {
			result.Status = StatusUnhealthy
			result.Message = err.Error()
			overall = StatusUnhealthy
		}
		results[name] = result
	}

	return results, overall
}

func (s *Server) healthHandler(c echo.Context) error {
	checks, status := s.runChecks(c.Request().Context())

	code := http.StatusOK
	if status == StatusUnhealthy {
		code = http.StatusServiceUnavailable
	}

	return c.JSON(code, HealthResponse{
		Status:     status,
		RunID:      s.runID,
		Uptime:     time.Since(s.startTime).Round(time.Second).String(),
		Checks:     checks,
		ReportedAt: time.Now(),
	})
}
