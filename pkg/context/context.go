package context

import "context"

type ContextKey string

var (
	RunIDKey    = ContextKey("X-Run-Id")
	PipelineKey = ContextKey("X-Pipeline")
	SourceIDKey = ContextKey("X-Source-Id")
)

func SetRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDKey, runID)
}

func GetRunID(ctx context.Context) string {
	value, ok := ctx.Value(RunIDKey).(string)
	if !ok {
		return ""
	}
	return value
}

func SetPipeline(ctx context.Context, pipeline string) context.Context {
	return context.WithValue(ctx, PipelineKey, pipeline)
}

func GetPipeline(ctx context.Context) string {
	value, ok := ctx.Value(PipelineKey).(string)
	if !ok {
		return ""
	}
	return value
}

// SetSourceID tags the context with the id of the source row being migrated.
func SetSourceID(ctx context.Context, sourceID int64) context.Context {
	return context.WithValue(ctx, SourceIDKey, sourceID)
}

// GetSourceID returns the source row id and whether one was set.
func GetSourceID(ctx context.Context) (int64, bool) {
	value, ok := ctx.Value(SourceIDKey).(int64)
	return value, ok
}

var RequestIDKey = ContextKey("X-Request-Id")

func SetRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

func GetRequestID(ctx context.Context) string {
	value, ok := ctx.Value(RequestIDKey).(string)
	if !ok {
		return ""
	}
	return value
}
