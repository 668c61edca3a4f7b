package logging

import (
	"context"
	"log/slog"

	"statewatch/internal/services"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if id, ok := services.SaveIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldSaveID, id))
	}
	if ref, ok := services.RecordFromContext(ctx); ok {
		fields = append(fields,
			slog.String(FieldRecordType, ref.Type),
			slog.String(FieldRecord, ref.Name),
		)
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived
// from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	args := make([]any, 0, len(fields))
	for _, field := range fields {
		args = append(args, field)
	}
	return logger.With(args...)
}
