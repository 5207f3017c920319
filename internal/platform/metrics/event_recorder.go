package metrics

import (
	"context"
	"log/slog"

	"github.com/phrazzld/docket-api/internal/events"
)

// EventRecorder translates domain lifecycle events into metric increments.
// It implements events.EventHandler so it can be registered on the emitter
// without the service layer knowing metrics exist.
type EventRecorder struct {
	collector *Collector
	logger    *slog.Logger
}

// Ensure EventRecorder implements the events.EventHandler interface
var _ events.EventHandler = (*EventRecorder)(nil)

// NewEventRecorder creates a new EventRecorder backed by the given collector.
func NewEventRecorder(collector *Collector, logger *slog.Logger) *EventRecorder {
	if collector == nil {
		panic("collector cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &EventRecorder{
		collector: collector,
		logger:    logger.With(slog.String("component", "metrics_event_recorder")),
	}
}

// HandleEvent implements events.EventHandler.
func (r *EventRecorder) HandleEvent(ctx context.Context, event *events.Event) error {
	switch event.Type {
	case events.EventUserRegistered:
		r.collector.RecordRegistration()
	case events.EventSessionIssued:
		r.collector.RecordLogin()
	case events.EventSessionRevoked:
		r.collector.RecordLogout()
	case events.EventTaskCreated:
		var payload events.TaskEventPayload
		if err := event.UnmarshalPayload(&payload); err != nil {
			r.logger.Error("failed to decode task event payload",
				slog.String("error", err.Error()),
				slog.String("event_id", event.ID.String()))
			return err
		}
		r.collector.RecordTaskCreated(payload.Category)
	case events.EventTaskCompleted:
		r.collector.RecordTaskCompleted()
	case events.EventTaskDeleted:
		r.collector.RecordTaskDeleted()
	default:
		r.logger.Debug("ignoring unrecognized event type",
			slog.String("event_type", event.Type))
	}
	return nil
}
