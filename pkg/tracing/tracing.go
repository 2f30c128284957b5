// Package tracing holds the process tracer. Spans are opened per pipeline
// run, per record write and per repository call; they are no-ops until Setup
// installs a provider.
package tracing

import (
	"context"

	migerrors "github.com/Greenstand/domain-migration-scripts/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span attribute keys shared by the pipeline packages.
const (
	AttrPipeline  = "migration.pipeline"
	AttrSourceID  = "migration.source_id"
	AttrErrorKind = "migration.error_kind"
)

var tracer trace.Tracer

func SetTracer(t trace.Tracer) {
	tracer = t
}

// StartSpan opens a child span of the one on ctx. Without a tracer the span
// already on ctx is handed back and nothing is recorded.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// TraceID is the hex id of the trace on ctx, or "" when nothing is traced.
func TraceID(ctx context.Context) string {
	if tracer == nil {
		return ""
	}
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return ""
	}
	return sc.TraceID().String()
}

// RecordError marks span as failed and tags it with the error kind used in
// logs and metrics.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetAttributes(attribute.String(AttrErrorKind, migerrors.Classify(err)))
	span.SetStatus(codes.Error, err.Error())
}
