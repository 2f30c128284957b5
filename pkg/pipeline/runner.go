// Package pipeline drives a migration: it counts the pending set, streams it
// through the transactional writer one record at a time and decides the exit
// code of the run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Gobusters/ectologger"
	appctx "github.com/Greenstand/domain-migration-scripts/pkg/context"
	"github.com/Greenstand/domain-migration-scripts/pkg/cursor"
	migerrors "github.com/Greenstand/domain-migration-scripts/pkg/errors"
	"github.com/Greenstand/domain-migration-scripts/pkg/events"
	"github.com/Greenstand/domain-migration-scripts/pkg/metrics"
	"github.com/Greenstand/domain-migration-scripts/pkg/progress"
	"github.com/Greenstand/domain-migration-scripts/pkg/tracing"
	"github.com/Greenstand/domain-migration-scripts/pkg/writer"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

const (
	ExitOK            = 0
	ExitRecordFailure = 1
	ExitSetup         = 2
)

// Migration is one runnable pipeline.
type Migration interface {
	Name() string
	Run(ctx context.Context, r *Runner) Result
}

// Summary is the accounting of a finished run.
type Summary struct {
	Pipeline  string        `json:"pipeline"`
	Total     int           `json:"total"`
	Processed int           `json:"processed"`
	Committed int           `json:"committed"`
	Failed    int           `json:"failed"`
	Skipped   int           `json:"skipped"`
	Duration  time.Duration `json:"duration_ns"`
}

type Result struct {
	ExitCode int
	Summary  Summary
	// Err is the reason for a non-zero exit code.
	Err error
}

// Runner holds what every pipeline run shares: the error policy, progress
// reporting and the event publisher.
type Runner struct {
	logger    ectologger.Logger
	abort     bool
	logEvery  int
	runID     string
	board     *progress.Board
	publisher events.Publisher
	now       func() time.Time
}

type RunnerOption func(*Runner)

// WithAbortOnRecordError stops the run at the first failed record.
func WithAbortOnRecordError(abort bool) RunnerOption {
	return func(r *Runner) { r.abort = abort }
}

func WithProgressEvery(percent int) RunnerOption {
	return func(r *Runner) { r.logEvery = percent }
}

func WithRunID(runID string) RunnerOption {
	return func(r *Runner) { r.runID = runID }
}

// WithBoard publishes the run's tracker for the admin server.
func WithBoard(board *progress.Board) RunnerOption {
	return func(r *Runner) { r.board = board }
}

func WithPublisher(publisher events.Publisher) RunnerOption {
	return func(r *Runner) { r.publisher = publisher }
}

func WithClock(now func() time.Time) RunnerOption {
	return func(r *Runner) { r.now = now }
}

func NewRunner(logger ectologger.Logger, opts ...RunnerOption) *Runner {
	r := &Runner{
		logger:    logger,
		logEvery:  1,
		publisher: events.Nop{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Pipeline pairs the cursor over a pending set with the writer for its rows.
type Pipeline[T writer.Record] struct {
	name   string
	cursor *cursor.Cursor[T]
	writer *writer.Writer[T]
}

func New[T writer.Record](name string, c *cursor.Cursor[T], w *writer.Writer[T]) *Pipeline[T] {
	return &Pipeline[T]{
		name:   name,
		cursor: c,
		writer: w,
	}
}

func (p *Pipeline[T]) Name() string {
	return p.name
}

// abortError stops the stream after a failed record under the abort policy.
type abortError struct {
	sourceID int64
	err      error
}

func (e *abortError) Error() string {
	return fmt.Sprintf("aborted at record %d: %v", e.sourceID, e.err)
}

func (e *abortError) Unwrap() error {
	return e.err
}

// Run migrates the pending set. The cursor and the writer run as a producer
// and a consumer joined by an unbuffered channel, so the next row is not read
// until the current record's transaction is finished.
func (p *Pipeline[T]) Run(ctx context.Context, r *Runner) Result {
	start := r.now()
	ctx = appctx.SetPipeline(ctx, p.name)
	if r.runID != "" {
		ctx = appctx.SetRunID(ctx, r.runID)
	}

	ctx, span := tracing.StartSpan(ctx, "Pipeline.Run", attribute.String(tracing.AttrPipeline, p.name))
	defer span.End()

	log := r.logger.WithContext(ctx)

	total, err := p.cursor.Count(ctx)
	if err != nil {
		tracing.RecordError(span, err)
		return r.finish(ctx, Result{ExitCode: ExitSetup, Summary: Summary{Pipeline: p.name}, Err: migerrors.NewSetupError("count", err)}, start)
	}
	metrics.RecordPending(p.name, total)

	if total == 0 {
		log.Info("No record left to migrate")
		return r.finish(ctx, Result{ExitCode: ExitOK, Summary: Summary{Pipeline: p.name}}, start)
	}
	log.Infof("Migrating %d records", total)

	tracker := progress.NewTracker(p.name, total, r.logger,
		progress.WithRunID(r.runID),
		progress.WithLogEvery(r.logEvery),
		progress.WithClock(r.now),
	)
	if r.board != nil {
		r.board.Put(tracker)
	}

	g, gctx := errgroup.WithContext(ctx)
	records := make(chan T)

	g.Go(func() error {
		return p.cursor.Stream(gctx, records)
	})

	g.Go(func() error {
		for rec := range records {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcome := p.writer.Write(gctx, rec)
			if err := r.account(gctx, p.name, tracker, outcome); err != nil {
				return err
			}
		}
		return nil
	})

	err = g.Wait()
	result := Result{ExitCode: ExitOK, Summary: summarize(tracker.Snapshot())}

	var aborted *abortError
	switch {
	case err == nil && tracker.Complete():
		log.Info("Migration complete")
	case err == nil:
		// rows migrated or removed by someone else after the count
		log.WithFields(map[string]any{
			"processed": result.Summary.Processed,
			"total":     total,
		}).Warn("Pending set shrank during the run")
	case errors.As(err, &aborted):
		log.WithError(aborted.err).Errorf("Migration aborted at record %d", aborted.sourceID)
		result.ExitCode = ExitRecordFailure
		result.Err = err
	case ctx.Err() != nil:
		log.WithError(ctx.Err()).Warn("Migration interrupted")
		result.ExitCode = ExitRecordFailure
		result.Err = ctx.Err()
	default:
		log.WithError(err).Error("Pending record stream failed")
		result.ExitCode = ExitSetup
		result.Err = migerrors.NewSetupError("stream", err)
	}

	if result.Err != nil {
		tracing.RecordError(span, result.Err)
	}
	return r.finish(ctx, result, start)
}

// account books one outcome. It returns an error only when the run must stop.
func (r *Runner) account(ctx context.Context, pipeline string, tracker *progress.Tracker, o writer.Outcome) error {
	if o.Failed() {
		tracker.RecordFailure(o.SourceID, o.Err)
		tracker.Tick(ctx, progress.StatusFailed)
		metrics.RecordOutcome(pipeline, string(progress.StatusFailed), migerrors.Classify(o.Err), o.Duration.Seconds())
		if r.abort || !migerrors.IsRecordError(o.Err) {
			return &abortError{sourceID: o.SourceID, err: o.Err}
		}
		return nil
	}

	status := progress.StatusCommitted
	if o.Result.Action == writer.ActionSkipped {
		status = progress.StatusSkipped
	}
	tracker.Tick(ctx, status)
	metrics.RecordOutcome(pipeline, string(status), "", o.Duration.Seconds())

	if status == progress.StatusCommitted {
		r.publish(ctx, pipeline, o)
	}
	return nil
}

// publish sends the record-migrated event. The record is already committed,
// so a failed publish is only logged.
func (r *Runner) publish(ctx context.Context, pipeline string, o writer.Outcome) {
	event := events.RecordMigrated{
		Pipeline:        pipeline,
		SourceID:        o.SourceID,
		TargetID:        o.Result.TargetID,
		GrowerAccountID: o.Result.GrowerAccountID,
		Action:          string(o.Result.Action),
		RunID:           r.runID,
		MigratedAt:      r.now(),
		TraceID:         tracing.TraceID(ctx),
	}

	if err := r.publisher.Publish(ctx, event); err != nil {
		r.logger.WithContext(appctx.SetSourceID(ctx, o.SourceID)).WithError(err).Warn("Failed to publish record migrated event")
	}
}

func (r *Runner) finish(ctx context.Context, result Result, start time.Time) Result {
	result.Summary.Duration = r.now().Sub(start)
	metrics.RecordRun(result.Summary.Pipeline, strconv.Itoa(result.ExitCode))

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"total":     result.Summary.Total,
		"processed": result.Summary.Processed,
		"committed": result.Summary.Committed,
		"failed":    result.Summary.Failed,
		"skipped":   result.Summary.Skipped,
		"duration":  result.Summary.Duration.String(),
		"exit_code": result.ExitCode,
	}).Info("Run summary")

	return result
}

func summarize(s progress.Snapshot) Summary {
	return Summary{
		Pipeline:  s.Pipeline,
		Total:     s.Total,
		Processed: s.Processed,
		Committed: s.Committed,
		Failed:    s.Failed,
		Skipped:   s.Skipped,
	}
}
