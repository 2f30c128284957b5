package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Greenstand/domain-migration-scripts/internal/testdb"
	"github.com/Greenstand/domain-migration-scripts/pkg/admin/middleware"
	migerrors "github.com/Greenstand/domain-migration-scripts/pkg/errors"
	"github.com/Greenstand/domain-migration-scripts/pkg/metrics"
	"github.com/Greenstand/domain-migration-scripts/pkg/progress"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthz(t *testing.T) {
	s := New("migrate", 0, "run-1", progress.NewBoard(), testdb.Logger(),
		WithCheck("database", func(context.Context) error { return nil }))

	rec := get(t, s, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)

	var body HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, StatusHealthy, body.Status)
	assert.Equal(t, "run-1", body.RunID)
	assert.Equal(t, StatusHealthy, body.Checks["database"].Status)
}

func TestHealthz_Unhealthy(t *testing.T) {
	s := New("migrate", 0, "run-1", progress.NewBoard(), testdb.Logger(),
		WithCheck("database", func(context.Context) error { return nil }),
		WithCheck("redis", func(context.Context) error { return errors.New("connection refused") }))

	rec := get(t, s, "/healthz")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, StatusUnhealthy, body.Status)
	assert.Equal(t, "connection refused", body.Checks["redis"].Message)
}

func TestProgress(t *testing.T) {
	board := progress.NewBoard()
	now := time.Date(2022, 1, 28, 12, 0, 0, 0, time.UTC)
	tracker := progress.NewTracker("planters", 4, testdb.Logger(),
		progress.WithRunID("run-1"), progress.WithClock(func() time.Time { return now }))
	tracker.Tick(context.Background(), progress.StatusCommitted)
	board.Put(tracker)

	s := New("migrate", 0, "run-1", board, testdb.Logger())

	rec := get(t, s, "/progress")
	require.Equal(t, http.StatusOK, rec.Code)
	var all ProgressResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	assert.Equal(t, "run-1", all.RunID)
	require.Len(t, all.Pipelines, 1)
	assert.Equal(t, 4, all.Pipelines[0].Total)
	assert.Equal(t, 1, all.Pipelines[0].Committed)

	rec = get(t, s, "/progress/planters")
	require.Equal(t, http.StatusOK, rec.Code)
	var one progress.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &one))
	assert.Equal(t, "planters", one.Pipeline)
}

func TestProgress_UnknownPipeline(t *testing.T) {
	s := New("migrate", 0, "run-1", progress.NewBoard(), testdb.Logger())

	rec := get(t, s, "/progress/trees")
	require.Equal(t, http.StatusNotFound, rec.Code)

	var body middleware.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "no run for pipeline trees", body.Message)
	assert.Equal(t, "trees", body.Meta["pipeline"])
}

func TestFailure(t *testing.T) {
	board := progress.NewBoard()
	tracker := progress.NewTracker("legacy-captures", 3, testdb.Logger())
	tracker.RecordFailure(42, migerrors.NewMissingPersonError(42, "a@x.com"))
	tracker.Tick(context.Background(), progress.StatusFailed)
	board.Put(tracker)

	s := New("migrate", 0, "run-1", board, testdb.Logger())

	rec := get(t, s, "/progress/legacy-captures/failures/42")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body middleware.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, migerrors.KindMissingPerson, body.Meta["kind"])
	assert.Equal(t, float64(42), body.Meta["source_id"])
	assert.Equal(t, "legacy-captures", body.Meta["pipeline"])

	rec = get(t, s, "/progress/legacy-captures/failures/43")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = get(t, s, "/progress/legacy-captures/failures/abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMetrics(t *testing.T) {
	metrics.RecordOutcome("admin-test", "committed", "", 0.001)
	s := New("migrate", 0, "run-1", progress.NewBoard(), testdb.Logger())

	rec := get(t, s, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `migration_records_processed_total{outcome="committed",pipeline="admin-test"} 1`))
}
