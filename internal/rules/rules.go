package rules

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"statewatch/internal/logging"
	"statewatch/internal/record"
)

// Method identifies the hook invoked on downstream automation for a
// detected state change.
const Method = "workflow_state_changed"

// Event describes one detected workflow state change, shaped for
// downstream automation rules keyed on the method name.
type Event struct {
	ID         string     `json:"id"`
	Method     string     `json:"method"`
	Record     record.Ref `json:"record"`
	StateField string     `json:"state_field"`
	From       string     `json:"from"`
	To         string     `json:"to"`
	OccurredAt time.Time  `json:"occurred_at"`
}

// NewEvent builds an event for a transition on the given record.
func NewEvent(ref record.Ref, stateField, from, to string) Event {
	return Event{
		ID:         uuid.New().String(),
		Method:     Method,
		Record:     ref,
		StateField: stateField,
		From:       from,
		To:         to,
		OccurredAt: time.Now().UTC(),
	}
}

// Engine receives state-change events before recipient notification.
// Emit failures must not block the save or the notifications; callers
// log and continue.
type Engine interface {
	Emit(ctx context.Context, event Event) error
}

// NopEngine discards events.
type NopEngine struct{}

func (NopEngine) Emit(context.Context, Event) error { return nil }

// LogEngine records each event to the structured log. It is the default
// engine when no automation backend is wired in.
type LogEngine struct {
	logger *slog.Logger
}

// NewLogEngine builds a log-backed engine.
func NewLogEngine(logger *slog.Logger) *LogEngine {
	return &LogEngine{logger: logging.WithComponent(logger, "rules")}
}

func (e *LogEngine) Emit(_ context.Context, event Event) error {
	e.logger.Info("state change event",
		logging.String("event_id", event.ID),
		logging.String("method", event.Method),
		logging.String(logging.FieldRecordType, event.Record.Type),
		logging.String(logging.FieldRecord, event.Record.Name),
		logging.String(logging.FieldStateField, event.StateField),
		logging.String(logging.FieldFromState, event.From),
		logging.String(logging.FieldToState, event.To))
	return nil
}
