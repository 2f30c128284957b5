// Package writer migrates one record per transaction.
package writer

import (
	"context"
	"time"

	"github.com/Gobusters/ectologger"
	appctx "github.com/Greenstand/domain-migration-scripts/pkg/context"
	"github.com/Greenstand/domain-migration-scripts/pkg/database"
	migerrors "github.com/Greenstand/domain-migration-scripts/pkg/errors"
	"github.com/Greenstand/domain-migration-scripts/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
)

type Record interface {
	GetSourceID() int64
}

// Action says what a committed record did to the target.
type Action string

const (
	ActionInserted Action = "inserted"
	ActionUpdated  Action = "updated"
	// ActionSkipped commits nothing: the record needed no change.
	ActionSkipped Action = "skipped"
)

// Result is what a handler reports for a record it handled.
type Result struct {
	Action          Action
	TargetID        string
	GrowerAccountID string
}

// Handler resolves, transforms and writes one record. ctx carries the record's
// transaction; every query the handler runs must go through it.
type Handler[T Record] interface {
	Handle(ctx context.Context, rec T, step *Step) (Result, error)
}

type HandlerFunc[T Record] func(ctx context.Context, rec T, step *Step) (Result, error)

func (f HandlerFunc[T]) Handle(ctx context.Context, rec T, step *Step) (Result, error) {
	return f(ctx, rec, step)
}

// Outcome is the final word on one record.
type Outcome struct {
	SourceID int64
	// State is Committed or RolledBack.
	State State
	// FailedAt is the stage the record was in when it failed.
	FailedAt State
	Result   Result
	Err      error
	Duration time.Duration
}

func (o Outcome) Failed() bool {
	return o.Err != nil
}

type Writer[T Record] struct {
	db      database.DB
	handler Handler[T]
	logger  ectologger.Logger
}

func New[T Record](db database.DB, handler Handler[T], logger ectologger.Logger) *Writer[T] {
	return &Writer[T]{
		db:      db,
		handler: handler,
		logger:  logger,
	}
}

// Write runs the handler for rec in its own transaction and commits it, or
// rolls it back on any failure. Failures are logged here with the source id.
func (w *Writer[T]) Write(ctx context.Context, rec T) Outcome {
	start := time.Now()
	sourceID := rec.GetSourceID()
	ctx = appctx.SetSourceID(ctx, sourceID)

	ctx, span := tracing.StartSpan(ctx, "Writer.Write", attribute.Int64(tracing.AttrSourceID, sourceID))
	defer span.End()

	step := &Step{state: Extracted}
	result, err := w.write(ctx, rec, step)

	outcome := Outcome{
		SourceID: sourceID,
		State:    Committed,
		Result:   result,
		Duration: time.Since(start),
	}
	if err != nil {
		err = migerrors.FromWriteError(err, sourceID)
		tracing.RecordError(span, err)

		outcome.State = RolledBack
		outcome.FailedAt = step.State()
		outcome.Err = err
		outcome.Result = Result{}

		w.logger.WithContext(ctx).WithFields(map[string]any{
			"failed_at": step.State().String(),
			"kind":      migerrors.Classify(err),
		}).WithError(err).Errorf("Error processing record %d", sourceID)
	}

	span.SetAttributes(attribute.String("state", outcome.State.String()))
	return outcome
}

func (w *Writer[T]) write(ctx context.Context, rec T, step *Step) (Result, error) {
	txCtx, tx, err := w.db.GetTx(ctx, nil)
	if err != nil {
		return Result{}, err
	}
	defer tx.Rollback(txCtx)

	result, err := w.handler.Handle(txCtx, rec, step)
	if err != nil {
		return Result{}, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return Result{}, err
	}

	return result, nil
}
