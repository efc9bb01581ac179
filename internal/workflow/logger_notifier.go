package workflow

import (
	"context"

	"go.uber.org/zap"
)

// LoggerNotifier logs every lifecycle event at info level (error level for
// node.failed), adapted from the teacher's observer.LoggerObserver to this
// engine's single ExecutionEvent shape (no execution/workflow ID, no wave
// fields, since this engine runs one workflow at a time with no
// persistence layer of its own).
type LoggerNotifier struct {
	log *zap.Logger
}

// NewLoggerNotifier builds a LoggerNotifier writing through log.
func NewLoggerNotifier(log *zap.Logger) *LoggerNotifier {
	return &LoggerNotifier{log: log}
}

// Notify implements ExecutionNotifier.
func (n *LoggerNotifier) Notify(_ context.Context, event ExecutionEvent) {
	if n.log == nil {
		return
	}
	fields := []zap.Field{
		zap.String("event_type", event.Type),
		zap.String("node_name", event.NodeName),
		zap.String("status", event.Status),
		zap.Int64("duration_ms", event.DurationMs),
	}
	if event.Message != "" {
		fields = append(fields, zap.String("message", event.Message))
	}
	if event.Err != nil {
		fields = append(fields, zap.Error(event.Err))
		n.log.Error("workflow event", fields...)
		return
	}
	n.log.Info("workflow event", fields...)
}
