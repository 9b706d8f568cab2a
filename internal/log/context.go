package log

import (
	"context"
	"log/slog"
)

type contextKey struct{}

// WithLogger returns a copy of ctx carrying logger.
func WithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext returns the request-scoped logger, or one over slog.Default.
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(contextKey{}).(*Logger); ok {
		return logger
	}
	return &Logger{Logger: slog.Default(), component: "unknown"}
}

// StructuredLogger emits the application's domain events with fixed fields.
type StructuredLogger struct {
	logger *Logger
}

func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{logger: logger}
}

// LogAllocationSaved logs a successful create or update.
func (sl *StructuredLogger) LogAllocationSaved(ctx context.Context, id int64, department string, cairo, tenth int, date string, created bool) {
	op := OpUpdate
	if created {
		op = OpCreate
	}
	fields := NewFields().
		WithAllocation(id, department, cairo, tenth, date).
		WithOperation(op)
	fields[FieldCreated] = created

	sl.logger.InfoContext(ctx, "Allocation saved", fields.ToSlice()...)
}

// LogError logs err with the operation that produced it.
func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, operation string, fields LogFields) {
	if fields == nil {
		fields = NewFields()
	}
	sl.logger.ErrorContext(ctx, msg, fields.WithError(err).WithOperation(operation).ToSlice()...)
}
