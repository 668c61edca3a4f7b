package workflow

import (
	"log/slog"
	"strings"

	"statewatch/internal/logging"
	"statewatch/internal/record"
)

// Snapshot holds a record's pre-mutation field values. It lives for one
// save cycle and is discarded after the post-save comparison.
type Snapshot struct {
	Ref record.Ref
	// Exists is false for a brand-new record: the first save never
	// reports a transition, even with a non-empty initial state.
	Exists bool
	Values map[string]string
}

// Value returns the trimmed pre-mutation value of a field.
func (s Snapshot) Value(field string) string {
	return strings.TrimSpace(s.Values[field])
}

func (s Snapshot) hasField(field string) bool {
	_, ok := s.Values[field]
	return ok
}

// Detector determines whether a save cycle moved a record between
// workflow states.
type Detector struct {
	fields *FieldResolver
	logger *slog.Logger
}

// NewDetector constructs a detector over the given field resolver.
func NewDetector(fields *FieldResolver, logger *slog.Logger) *Detector {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Detector{
		fields: fields,
		logger: logging.WithComponent(logger, "detector"),
	}
}

// Capture snapshots the persisted, pre-mutation copy of a record. Pass
// nil for a record that does not exist yet.
func (d *Detector) Capture(rec *record.Record) Snapshot {
	if rec == nil {
		return Snapshot{}
	}
	values := make(map[string]string, len(rec.Fields))
	for key, value := range rec.Fields {
		values[key] = value
	}
	return Snapshot{Ref: rec.Ref(), Exists: true, Values: values}
}

// Detect compares the post-mutation record against the snapshot and
// reports the state change, if any. It never errors: unresolvable
// configuration degrades to "no transition".
func (d *Detector) Detect(rec *record.Record, snap Snapshot) (StateChange, bool) {
	if rec == nil {
		return StateChange{}, false
	}

	resolution, err := d.fields.Resolve(rec.Type)
	if err != nil {
		logging.WarnWithContext(d.logger, "state field resolution failed; save proceeds without detection", "field_resolution_failed",
			logging.String(logging.FieldRecordType, rec.Type),
			logging.Error(err),
			logging.String(logging.FieldImpact, "no transition notifications for this save"),
		)
		return StateChange{}, false
	}

	field, ok := d.pickField(resolution, rec, snap)
	if !ok {
		return StateChange{}, false
	}

	to := rec.Field(field)
	if to == "" {
		// Workflow removed, not a forward transition.
		return StateChange{}, false
	}
	if !snap.Exists {
		return StateChange{}, false
	}
	from := snap.Value(field)
	if from == to {
		return StateChange{}, false
	}

	d.logger.Debug("workflow state change detected",
		logging.String(logging.FieldRecordType, rec.Type),
		logging.String(logging.FieldRecord, rec.Name),
		logging.String(logging.FieldStateField, field),
		logging.String(logging.FieldFromState, from),
		logging.String(logging.FieldToState, to),
	)
	return StateChange{From: from, To: to, Field: field}, true
}

// pickField applies the resolution order: the declared workflow field
// when the record (or its snapshot) carries it, then the conventional
// fallback field, then nothing.
func (d *Detector) pickField(resolution Resolution, rec *record.Record, snap Snapshot) (string, bool) {
	if declared := resolution.Declared; declared != "" {
		if rec.HasField(declared) || snap.hasField(declared) {
			return declared, true
		}
	}
	fallback := d.fields.Fallback()
	if rec.HasField(fallback) || snap.hasField(fallback) {
		return fallback, true
	}
	return "", false
}
