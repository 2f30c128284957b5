package tracing_test

import (
	"context"
	"errors"
	"testing"

	migerrors "github.com/Greenstand/domain-migration-scripts/pkg/errors"
	"github.com/Greenstand/domain-migration-scripts/pkg/tracing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestStartSpanWithoutTracer(t *testing.T) {
	tracing.SetTracer(nil)

	ctx, span := tracing.StartSpan(context.Background(), "noop")
	defer span.End()

	assert.Equal(t, "", tracing.TraceID(ctx))
	assert.False(t, span.IsRecording())
}

func TestRecordError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tracing.SetTracer(provider.Tracer("test"))
	t.Cleanup(func() { tracing.SetTracer(nil) })

	ctx, span := tracing.StartSpan(context.Background(), "Writer.Write", attribute.Int64(tracing.AttrSourceID, 42))
	assert.Len(t, tracing.TraceID(ctx), 32)
	tracing.RecordError(span, migerrors.NewMissingPersonError(42, "a@x.com"))
	tracing.RecordError(span, nil)
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "Writer.Write", ended[0].Name())
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Contains(t, ended[0].Attributes(), attribute.Int64(tracing.AttrSourceID, 42))
	assert.Contains(t, ended[0].Attributes(), attribute.String(tracing.AttrErrorKind, migerrors.KindMissingPerson))
}

func TestRecordErrorWrapped(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tracing.SetTracer(provider.Tracer("test"))
	t.Cleanup(func() { tracing.SetTracer(nil) })

	_, span := tracing.StartSpan(context.Background(), "Pipeline.Run")
	tracing.RecordError(span, migerrors.NewSetupError("count", errors.New("connection refused")))
	span.End()

	require.Len(t, recorder.Ended(), 1)
	assert.Contains(t, recorder.Ended()[0].Attributes(), attribute.String(tracing.AttrErrorKind, migerrors.KindSetup))
}
