// Package cursor counts and streams the pending set of a migration.
package cursor

import (
	"context"
	"fmt"

	"github.com/Gobusters/ectologger"
	"github.com/Greenstand/domain-migration-scripts/pkg/database"
	"github.com/Greenstand/domain-migration-scripts/pkg/tracing"
)

type Cursor[T any] struct {
	db     database.DB
	query  Query
	logger ectologger.Logger
}

func New[T any](db database.DB, query Query, logger ectologger.Logger) *Cursor[T] {
	return &Cursor[T]{
		db:     db,
		query:  query,
		logger: logger,
	}
}

func (c *Cursor[T]) Query() Query {
	return c.query
}

// Count returns the size of the pending set at the time of the call.
func (c *Cursor[T]) Count(ctx context.Context) (int, error) {
	ctx, span := tracing.StartSpan(ctx, "Cursor.Count")
	defer span.End()

	query, args := database.CountOf(c.query.Build()).Build()

	c.logger.WithContext(ctx).WithFields(map[string]any{
		"query": query,
	}).Debug("Counting pending records")

	var count int
	if err := c.db.GetContext(ctx, &count, query, args...); err != nil {
		tracing.RecordError(span, err)
		c.logger.WithContext(ctx).WithError(err).Error("Failed to count pending records")
		return 0, fmt.Errorf("failed to count pending records: %w", err)
	}

	return count, nil
}

// Stream runs the pending-set query and sends every row on out, then closes
// out. out should be unbuffered: each send waits for the consumer, so at most
// one row is in flight. Stream stops with ctx.Err() when ctx is cancelled.
// A stream cannot be restarted; call Stream again to re-run the query.
func (c *Cursor[T]) Stream(ctx context.Context, out chan<- T) error {
	defer close(out)

	ctx, span := tracing.StartSpan(ctx, "Cursor.Stream")
	defer span.End()

	query, args := c.query.Build().Build()

	c.logger.WithContext(ctx).WithFields(map[string]any{
		"query": query,
	}).Debug("Streaming pending records")

	rows, err := c.db.QueryxContext(ctx, query, args...)
	if err != nil {
		tracing.RecordError(span, err)
		c.logger.WithContext(ctx).WithError(err).Error("Failed to open pending record stream")
		return fmt.Errorf("failed to open pending record stream: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rec T
		if err := rows.StructScan(&rec); err != nil {
			tracing.RecordError(span, err)
			return fmt.Errorf("failed to scan pending record: %w", err)
		}

		select {
		case out <- rec:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if err := rows.Err(); err != nil {
		tracing.RecordError(span, err)
		c.logger.WithContext(ctx).WithError(err).Error("Pending record stream failed")
		return fmt.Errorf("pending record stream failed: %w", err)
	}

	return nil
}
