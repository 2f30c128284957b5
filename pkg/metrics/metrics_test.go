package metrics_test

import (
	"testing"

	"github.com/Greenstand/domain-migration-scripts/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordOutcome(t *testing.T) {
	before := testutil.ToFloat64(metrics.RecordsTotal.WithLabelValues("metrics-test", "failed"))
	beforeKind := testutil.ToFloat64(metrics.RecordFailuresTotal.WithLabelValues("metrics-test", "missing_person"))

	metrics.RecordOutcome("metrics-test", "failed", "missing_person", 0.02)
	metrics.RecordOutcome("metrics-test", "committed", "", 0.01)

	assert.Equal(t, before+1, testutil.ToFloat64(metrics.RecordsTotal.WithLabelValues("metrics-test", "failed")))
	assert.Equal(t, beforeKind+1, testutil.ToFloat64(metrics.RecordFailuresTotal.WithLabelValues("metrics-test", "missing_person")))
}

func TestRecordPending(t *testing.T) {
	metrics.RecordPending("metrics-test", 12)
	assert.Equal(t, 12.0, testutil.ToFloat64(metrics.PendingRecords.WithLabelValues("metrics-test")))
}
