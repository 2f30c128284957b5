// Package logging builds the zap-backed ectologger used across the module.
package logging

import (
	"strings"

	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	appctx "github.com/Greenstand/domain-migration-scripts/pkg/context"
	"github.com/Greenstand/domain-migration-scripts/pkg/tracing"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Options struct {
	Level  string
	Pretty bool
	Debug  bool // forces debug level regardless of Level
}

// New returns the logger and a flush function to defer in main.
func New(opts Options) (ectologger.Logger, func() error, error) {
	cfg := zap.NewProductionConfig()
	if opts.Pretty {
		cfg = zap.NewDevelopmentConfig()
	}

	level := zapcore.InfoLevel
	if opts.Debug {
		level = zapcore.DebugLevel
	} else if opts.Level != "" {
		parsed, err := zapcore.ParseLevel(strings.ToLower(opts.Level))
		if err != nil {
			return nil, nil, err
		}
		level = parsed
	}
	cfg.Level = zap.NewAtomicLevelAt(level)

	zapLogger, err := cfg.Build()
	if err != nil {
		return nil, nil, err
	}

	return zapadapter.NewZapEctoLogger(zapLogger, EnrichFromContext), zapLogger.Sync, nil
}

// EnrichFromContext copies the run id, pipeline, source id and trace id
// carried on the message context into its fields.
func EnrichFromContext(msg ectologger.EctoLogMessage) ectologger.EctoLogMessage {
	if msg.Ctx == nil {
		return msg
	}

	fields := make(map[string]interface{}, len(msg.Fields)+4)
	for k, v := range msg.Fields {
		fields[k] = v
	}

	if runID := appctx.GetRunID(msg.Ctx); runID != "" {
		fields["run_id"] = runID
	}
	if pipeline := appctx.GetPipeline(msg.Ctx); pipeline != "" {
		fields["pipeline"] = pipeline
	}
	if sourceID, ok := appctx.GetSourceID(msg.Ctx); ok {
		fields["source_id"] = sourceID
	}
	if traceID := tracing.TraceID(msg.Ctx); traceID != "" {
		fields["trace_id"] = traceID
	}

	msg.Fields = fields
	return msg
}
