package notify

import (
	"context"
	"errors"
	"log/slog"

	"statewatch/internal/directory"
	"statewatch/internal/logging"
	"statewatch/internal/metrics"
	"statewatch/internal/record"
	"statewatch/internal/rules"
	"statewatch/internal/services"
	"statewatch/internal/workflow"
)

// Summary reports the outcome of one dispatch cycle.
type Summary struct {
	Recipients int
	Sent       int
	Failed     int
	Skipped    int
}

// Dispatcher fans one state change out to every recipient on every
// configured channel. Failures are isolated per recipient and channel:
// a bounced email to one user never blocks the in-app notification to
// another, and nothing a channel does can fail the save that triggered
// the dispatch.
type Dispatcher struct {
	channels []Channel
	engine   rules.Engine
	metrics  *metrics.Metrics
	baseURL  string
	logger   *slog.Logger
}

// NewDispatcher assembles a dispatcher. Nil channels are dropped so
// callers can pass disabled channels without guarding.
func NewDispatcher(channels []Channel, engine rules.Engine, m *metrics.Metrics, baseURL string, logger *slog.Logger) *Dispatcher {
	active := make([]Channel, 0, len(channels))
	for _, ch := range channels {
		if ch != nil {
			active = append(active, ch)
		}
	}
	if engine == nil {
		engine = rules.NopEngine{}
	}
	return &Dispatcher{
		channels: active,
		engine:   engine,
		metrics:  m,
		baseURL:  baseURL,
		logger:   logging.WithComponent(logger, "dispatch"),
	}
}

// Dispatch emits the state-change event, then attempts delivery to each
// recipient on each channel. It never returns an error; the summary and
// the log carry the per-delivery outcomes.
func (d *Dispatcher) Dispatch(ctx context.Context, rec *record.Record, change workflow.StateChange, users []directory.User) Summary {
	ctx = services.WithRecord(ctx, rec.Ref())
	logger := logging.WithContext(ctx, d.logger)

	d.emitEvent(ctx, logger, rec.Ref(), change)

	msg := Compose(rec, change, d.baseURL)
	summary := Summary{Recipients: len(users)}

	for _, user := range users {
		for _, channel := range d.channels {
			err := channel.Send(ctx, user, msg)
			switch {
			case err == nil:
				summary.Sent++
				d.count(channel.Name(), "sent")
				logger.Info("notification delivered",
					logging.String(logging.FieldChannel, channel.Name()),
					logging.String(logging.FieldRecipient, user.ID))
			case errors.Is(err, ErrSkip):
				summary.Skipped++
				d.count(channel.Name(), "skipped")
				logger.Debug("recipient skipped",
					logging.String(logging.FieldChannel, channel.Name()),
					logging.String(logging.FieldRecipient, user.ID))
			default:
				summary.Failed++
				d.count(channel.Name(), "failed")
				logging.WarnWithContext(logger, "notification delivery failed", "delivery_failed",
					logging.String(logging.FieldChannel, channel.Name()),
					logging.String(logging.FieldRecipient, user.ID),
					logging.Error(err),
					logging.String(logging.FieldImpact, "one recipient missed this notification"))
			}
		}
	}
	return summary
}

func (d *Dispatcher) emitEvent(ctx context.Context, logger *slog.Logger, ref record.Ref, change workflow.StateChange) {
	event := rules.NewEvent(ref, change.Field, change.From, change.To)
	if err := d.engine.Emit(ctx, event); err != nil {
		logging.WarnWithContext(logger, "rule event emission failed", "rule_emit_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "downstream automation missed this transition"))
		return
	}
	if d.metrics != nil {
		d.metrics.RuleEvents.Inc()
	}
}

func (d *Dispatcher) count(channel, outcome string) {
	if d.metrics == nil {
		return
	}
	d.metrics.NotificationsSent.WithLabelValues(channel, outcome).Inc()
}
