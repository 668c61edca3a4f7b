package logging

import (
	"log/slog"
	"time"
)

// Attr aliases slog.Attr so callers can stay on the logging package.
type Attr = slog.Attr

func Bool(key string, value bool) Attr { return slog.Bool(key, value) }

func Duration(key string, value time.Duration) Attr { return slog.Duration(key, value) }

func Int(key string, value int) Attr { return slog.Int(key, value) }

func Int64(key string, value int64) Attr { return slog.Int64(key, value) }

func String(key string, value string) Attr { return slog.String(key, value) }

func Any(key string, value any) Attr { return slog.Any(key, value) }

// Error wraps an error for structured logging, tolerating nil.
func Error(err error) Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.String("error", err.Error())
}

// Standardized structured logging keys.
const (
	// FieldComponent names the subsystem emitting the record.
	FieldComponent = "component"
	// FieldRecordType is the watched record's type.
	FieldRecordType = "record_type"
	// FieldRecord is the watched record's unique name.
	FieldRecord = "record"
	// FieldStateField is the resolved workflow state field name.
	FieldStateField = "state_field"
	// FieldFromState is the originating workflow state of a transition.
	FieldFromState = "from_state"
	// FieldToState is the target workflow state of a transition.
	FieldToState = "to_state"
	// FieldRole is a role identifier being expanded during resolution.
	FieldRole = "role"
	// FieldRecipient is the user identity a delivery was attempted for.
	FieldRecipient = "recipient"
	// FieldChannel is the delivery channel name (email, inapp, push).
	FieldChannel = "channel"
	// FieldSaveID correlates every log line of one save cycle.
	FieldSaveID = "save_id"
	// FieldEventType tags warnings and errors with a stable machine key.
	FieldEventType = "event_type"
	// FieldErrorHint carries remediation guidance for operators.
	FieldErrorHint = "error_hint"
	// FieldImpact states the user-facing consequence of a warning.
	FieldImpact = "impact"
)

// WithComponent returns a logger annotated with a component name.
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(String(FieldComponent, component))
}

// WarnWithContext logs a warning guaranteed to carry event-type, hint,
// and impact keys so operational alerts stay greppable.
func WarnWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	if logger == nil {
		return
	}
	logger.Warn(msg, attrPadding(eventType, attrs)...)
}

// ErrorWithContext logs an error guaranteed to carry event-type, hint,
// and impact keys.
func ErrorWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	if logger == nil {
		return
	}
	logger.Error(msg, attrPadding(eventType, attrs)...)
}

func attrPadding(eventType string, attrs []Attr) []any {
	if !hasAttrKey(attrs, FieldEventType) {
		attrs = append(attrs, String(FieldEventType, eventType))
	}
	if !hasAttrKey(attrs, FieldErrorHint) {
		attrs = append(attrs, String(FieldErrorHint, "check logs for details"))
	}
	if !hasAttrKey(attrs, FieldImpact) {
		attrs = append(attrs, String(FieldImpact, "operation completed with warnings"))
	}
	args := make([]any, 0, len(attrs))
	for _, attr := range attrs {
		args = append(args, attr)
	}
	return args
}

func hasAttrKey(attrs []Attr, key string) bool {
	for _, attr := range attrs {
		if attr.Key == key {
			return true
		}
	}
	return false
}
