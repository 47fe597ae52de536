package sinks

import (
	"context"

	"go.uber.org/zap"

	"github.com/JakeFAU/weather-lookup/internal/progress"
)

// LogSink emits structured logs for each lookup milestone. It is useful
// when stdout is piped away or when auditing which pages were visited.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink wires a Zap logger to the sink interface.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

// Consume logs each event in the batch using structured fields.
func (s *LogSink) Consume(_ context.Context, batch []progress.Event) error {
	for _, evt := range batch {
		fields := []zap.Field{
			zap.Stringer("lookup_id", evt.LookupUUID()),
			zap.String("stage", string(evt.Stage)),
			zap.String("worker", evt.Worker),
			zap.String("query", evt.Query),
			zap.String("url", evt.URL),
			zap.Duration("dur", evt.Dur),
		}
		if evt.Note != "" {
			fields = append(fields, zap.String("note", evt.Note))
		}
		s.logger.Debug("progress event", fields...)
	}
	return nil
}

// Close implements the Sink interface; it performs no action.
func (s *LogSink) Close(context.Context) error {
	return nil
}
