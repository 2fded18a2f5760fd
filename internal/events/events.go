package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Well-known channel names.
const (
	ChannelDownloadProgress = "download-progress"
	ChannelUpdateProgress   = "update-progress"
	ChannelInstallProgress  = "install-progress"
	ChannelVerifyProgress   = "verify-progress"
	ChannelNotification     = "task-notification"
)

// Event is a single message published on a named channel.
type Event struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Channel is the name the event was published on
	Channel string `json:"channel"`

	// Payload contains the channel-specific data serialized as JSON
	Payload json.RawMessage `json:"payload"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *Event) UnmarshalPayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// NewEvent creates an Event on channel with payload serialized to JSON.
// A json.RawMessage payload is used as-is.
func NewEvent(channel string, payload any) (*Event, error) {
	var raw json.RawMessage
	switch p := payload.(type) {
	case json.RawMessage:
		raw = p
	default:
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		raw = b
	}

	return &Event{
		ID:        uuid.New(),
		Channel:   channel,
		Payload:   raw,
		CreatedAt: time.Now(),
	}, nil
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *Event) error
}

// HandlerFunc adapts a plain function to EventHandler.
type HandlerFunc func(ctx context.Context, event *Event) error

// HandleEvent calls f(ctx, event).
func (f HandlerFunc) HandleEvent(ctx context.Context, event *Event) error {
	return f(ctx, event)
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all handlers of its channel.
	EmitEvent(ctx context.Context, event *Event) error
	// Publish wraps payload in a new event on channel and emits it.
	Publish(ctx context.Context, channel string, payload any) error
}

// EventSource is implemented by anything handlers can subscribe to.
type EventSource interface {
	// Subscribe registers handler for every event published on channel.
	Subscribe(channel string, handler EventHandler) error
}
