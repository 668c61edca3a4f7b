package services

import (
	"context"

	"statewatch/internal/record"
)

type contextKey string

const (
	saveIDKey contextKey = "save_id"
	recordKey contextKey = "record_ref"
)

// WithSaveID stamps a context with the save-cycle correlation identifier.
func WithSaveID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, saveIDKey, id)
}

// SaveIDFromContext extracts the save-cycle identifier when present.
func SaveIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(saveIDKey).(string)
	return id, ok && id != ""
}

// WithRecord stamps a context with the record under mutation.
func WithRecord(ctx context.Context, ref record.Ref) context.Context {
	if ref.IsZero() {
		return ctx
	}
	return context.WithValue(ctx, recordKey, ref)
}

// RecordFromContext extracts the record reference when present.
func RecordFromContext(ctx context.Context) (record.Ref, bool) {
	if ctx == nil {
		return record.Ref{}, false
	}
	ref, ok := ctx.Value(recordKey).(record.Ref)
	return ref, ok && !ref.IsZero()
}
