package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Lifecycle event types emitted by the service layer.
const (
	EventUserRegistered = "user.registered"
	EventSessionIssued  = "session.issued"
	EventSessionRevoked = "session.revoked"
	EventTaskCreated    = "task.created"
	EventTaskCompleted  = "task.completed"
	EventTaskDeleted    = "task.deleted"
)

// Event represents a domain lifecycle event. It carries the event-specific
// data as serialized JSON so that emitters and handlers stay decoupled from
// each other's types.
type Event struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type is one of the Event* constants
	Type string `json:"type"`

	// Payload contains the event-specific data serialized as JSON
	Payload json.RawMessage `json:"payload"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *Event) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewEvent creates a new Event with the specified type and payload.
func NewEvent(eventType string, payload interface{}) (*Event, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   payloadBytes,
		CreatedAt: time.Now(),
	}, nil
}

// UserRegisteredPayload is the payload for EventUserRegistered.
type UserRegisteredPayload struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
}

// SessionEventPayload is the payload for EventSessionIssued and
// EventSessionRevoked. It deliberately carries no token material.
type SessionEventPayload struct {
	UserID uuid.UUID `json:"user_id"`
}

// TaskEventPayload is the payload for the task lifecycle events.
type TaskEventPayload struct {
	TaskID   uuid.UUID `json:"task_id"`
	UserID   uuid.UUID `json:"user_id"`
	Category string    `json:"category,omitempty"`
}

// EventHandler defines an interface for components that can handle events.
// Handlers are responsible for processing events and taking appropriate actions.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *Event) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *Event) error
}
