// Package metrics provides Prometheus metrics for migration runs.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RecordsTotal tracks processed records by pipeline and outcome
	RecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "migration",
			Subsystem: "records",
			Name:      "processed_total",
			Help:      "Total number of processed records by outcome",
		},
		[]string{"pipeline", "outcome"},
	)

	// RecordFailuresTotal tracks failed records by error kind
	RecordFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "migration",
			Subsystem: "records",
			Name:      "failures_total",
			Help:      "Total number of failed records by error kind",
		},
		[]string{"pipeline", "kind"},
	)

	// RecordDuration tracks the time spent in one record's transaction
	RecordDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "migration",
			Subsystem: "records",
			Name:      "duration_seconds",
			Help:      "Duration of record transactions in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"pipeline"},
	)

	// PendingRecords is the pending-set size counted at the start of a run
	PendingRecords = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "migration",
			Subsystem: "run",
			Name:      "pending_records",
			Help:      "Pending records counted when the run started",
		},
		[]string{"pipeline"},
	)

	// RunsTotal tracks finished runs by exit code
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "migration",
			Subsystem: "run",
			Name:      "finished_total",
			Help:      "Total number of finished runs by exit code",
		},
		[]string{"pipeline", "exit_code"},
	)

	// EventsPublishedTotal tracks record events sent to Kafka
	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "migration",
			Subsystem: "events",
			Name:      "published_total",
			Help:      "Total number of record events published by status",
		},
		[]string{"topic", "status"},
	)
)

// RecordOutcome records one processed record
func RecordOutcome(pipeline, outcome, kind string, durationSeconds float64) {
	RecordsTotal.WithLabelValues(pipeline, outcome).Inc()
	RecordDuration.WithLabelValues(pipeline).Observe(durationSeconds)
	if kind != "" {
		RecordFailuresTotal.WithLabelValues(pipeline, kind).Inc()
	}
}

// RecordPending records the size of a run's pending set
func RecordPending(pipeline string, count int) {
	PendingRecords.WithLabelValues(pipeline).Set(float64(count))
}

// RecordRun records a finished run
func RecordRun(pipeline, exitCode string) {
	RunsTotal.WithLabelValues(pipeline, exitCode).Inc()
}

// RecordEventPublish records a Kafka publish attempt
func RecordEventPublish(topic, status string) {
	EventsPublishedTotal.WithLabelValues(topic, status).Inc()
}
