package engine

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"statewatch/internal/logging"
	"statewatch/internal/metrics"
	"statewatch/internal/notify"
	"statewatch/internal/recipients"
	"statewatch/internal/record"
	"statewatch/internal/services"
	"statewatch/internal/workflow"
)

// Engine runs the save cycle: capture the persisted state, apply the
// caller's mutation, persist, then detect and announce any workflow
// transition. The notification leg is sealed off from the save — a
// panic or failure while resolving recipients or delivering can never
// surface as a save error.
type Engine struct {
	store      *record.Store
	source     workflow.Source
	detector   *workflow.Detector
	resolver   *recipients.Resolver
	dispatcher *notify.Dispatcher
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// New assembles the save engine.
func New(
	store *record.Store,
	source workflow.Source,
	detector *workflow.Detector,
	resolver *recipients.Resolver,
	dispatcher *notify.Dispatcher,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Engine {
	return &Engine{
		store:      store,
		source:     source,
		detector:   detector,
		resolver:   resolver,
		dispatcher: dispatcher,
		metrics:    m,
		logger:     logging.WithComponent(logger, "engine"),
	}
}

// CaptureState snapshots the persisted copy of a record before a
// mutation. A load failure degrades to an absent snapshot: the save
// proceeds, that cycle just cannot report a transition.
func (e *Engine) CaptureState(ctx context.Context, ref record.Ref) workflow.Snapshot {
	existing, err := e.store.GetByRef(ctx, ref.Type, ref.Name)
	if err != nil {
		logging.WarnWithContext(e.logger, "pre-save snapshot failed", "snapshot_failed",
			logging.String(logging.FieldRecordType, ref.Type),
			logging.String(logging.FieldRecord, ref.Name),
			logging.Error(err),
			logging.String(logging.FieldImpact, "no transition detection for this save"))
		return workflow.Snapshot{}
	}
	return e.detector.Capture(existing)
}

// AfterSave compares the persisted record against its pre-save
// snapshot and, on a transition, emits the rule event and notifies the
// resolved recipients. Panics are contained here. Hosts driving the
// two-phase contract directly get a save ID minted for them so their
// log lines correlate like Save's do.
func (e *Engine) AfterSave(ctx context.Context, rec *record.Record, snap workflow.Snapshot) {
	if rec == nil {
		return
	}
	if _, ok := services.SaveIDFromContext(ctx); !ok {
		ctx = services.WithSaveID(ctx, uuid.New().String())
	}
	ctx = services.WithRecord(ctx, rec.Ref())
	logger := logging.WithContext(ctx, e.logger)

	defer func() {
		if r := recover(); r != nil {
			logging.ErrorWithContext(logger, "notification pipeline panicked", "notify_panic",
				logging.Any("panic", r),
				logging.String(logging.FieldImpact, "save succeeded; notifications for this transition were lost"))
		}
	}()

	change, ok := e.detector.Detect(rec, snap)
	if !ok {
		return
	}
	if e.metrics != nil {
		e.metrics.TransitionsDetected.WithLabelValues(rec.Type).Inc()
	}

	transition := e.matchTransition(logger, rec, change)
	set := e.resolver.Resolve(ctx, rec, transition)
	summary := e.dispatcher.Dispatch(ctx, rec, change, set.Users())

	logger.Info("transition announced",
		logging.String(logging.FieldFromState, change.From),
		logging.String(logging.FieldToState, change.To),
		logging.Int("recipients", summary.Recipients),
		logging.Int("sent", summary.Sent),
		logging.Int("failed", summary.Failed),
		logging.Int("skipped", summary.Skipped))
}

// matchTransition finds the configured transition for a detected
// change. An unmatched change still notifies the owner and the extra
// recipients; only role expansion needs the transition.
func (e *Engine) matchTransition(logger *slog.Logger, rec *record.Record, change workflow.StateChange) *workflow.Transition {
	def, found, err := e.source.DefinitionFor(rec.Type)
	if err != nil {
		logging.WarnWithContext(logger, "workflow definition lookup failed", "definition_lookup_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "allowed-role recipients excluded for this transition"))
		return nil
	}
	if !found {
		return nil
	}
	transition, ok := def.Match(change.From, change.To)
	if !ok {
		logger.Debug("observed change matches no configured transition",
			logging.String(logging.FieldFromState, change.From),
			logging.String(logging.FieldToState, change.To))
		return nil
	}
	return &transition
}

// Save runs one full save cycle for the record identified by ref: load,
// snapshot, mutate, persist, detect, notify. mutate receives a fresh
// record when ref does not exist yet. The returned record is the
// persisted copy.
func (e *Engine) Save(ctx context.Context, ref record.Ref, mutate func(*record.Record) error) (*record.Record, error) {
	if ref.Type == "" || ref.Name == "" {
		return nil, services.Wrap(services.ErrValidation, "engine", "save", "record type and name must be set", nil)
	}

	ctx = services.WithSaveID(ctx, uuid.New().String())
	ctx = services.WithRecord(ctx, ref)

	existing, err := e.store.GetByRef(ctx, ref.Type, ref.Name)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "engine", "save", "load record", err)
	}
	snap := e.detector.Capture(existing)

	var working *record.Record
	if existing != nil {
		working = existing.Clone()
	} else {
		working = &record.Record{Type: ref.Type, Name: ref.Name}
	}
	if mutate != nil {
		if err := mutate(working); err != nil {
			return nil, services.Wrap(services.ErrValidation, "engine", "save", "apply mutation", err)
		}
	}
	// The identity of the record is fixed by ref.
	working.Type = ref.Type
	working.Name = ref.Name

	var persisted *record.Record
	if existing != nil {
		if err := e.store.Update(ctx, working); err != nil {
			return nil, services.Wrap(services.ErrTransient, "engine", "save", "persist record", err)
		}
		persisted = working
	} else {
		persisted, err = e.store.Create(ctx, working)
		if err != nil {
			return nil, services.Wrap(services.ErrTransient, "engine", "save", "create record", err)
		}
	}
	if e.metrics != nil {
		e.metrics.SavesTotal.WithLabelValues(ref.Type).Inc()
	}

	e.AfterSave(ctx, persisted, snap)
	return persisted, nil
}
