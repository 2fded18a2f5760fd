package events

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// InMemoryEventEmitter stores handlers per channel and dispatches events to
// them synchronously, in registration order.
type InMemoryEventEmitter struct {
	handlers map[string][]EventHandler
	mu       sync.RWMutex
	logger   *slog.Logger
}

// NewInMemoryEventEmitter creates a new instance of InMemoryEventEmitter.
func NewInMemoryEventEmitter(logger *slog.Logger) *InMemoryEventEmitter {
	return &InMemoryEventEmitter{
		handlers: make(map[string][]EventHandler),
		logger:   logger.With("component", "in_memory_event_emitter"),
	}
}

// Subscribe adds handler to the given channel.
func (e *InMemoryEventEmitter) Subscribe(channel string, handler EventHandler) error {
	if handler == nil {
		return fmt.Errorf("nil handler for channel %q", channel)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers[channel] = append(e.handlers[channel], handler)
	e.logger.Debug("registered event handler",
		"channel", channel,
		"handler_count", len(e.handlers[channel]))
	return nil
}

// HandlerCount returns how many handlers are subscribed to channel.
func (e *InMemoryEventEmitter) HandlerCount(channel string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.handlers[channel])
}

// EmitEvent publishes the given event to all handlers of its channel.
// If any handler returns an error, the event is still delivered to the
// remaining handlers and the first error encountered is returned.
func (e *InMemoryEventEmitter) EmitEvent(ctx context.Context, event *Event) error {
	e.mu.RLock()
	handlers := make([]EventHandler, len(e.handlers[event.Channel]))
	copy(handlers, e.handlers[event.Channel])
	e.mu.RUnlock()

	if len(handlers) == 0 {
		e.logger.Debug("no handlers registered for channel",
			"event_id", event.ID,
			"channel", event.Channel)
		return nil
	}

	var firstErr error
	for i, handler := range handlers {
		if err := handler.HandleEvent(ctx, event); err != nil {
			e.logger.Error("handler failed to process event",
				"error", err,
				"handler_index", i,
				"event_id", event.ID,
				"channel", event.Channel)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	return firstErr
}

// Publish builds an event for channel from payload and emits it.
func (e *InMemoryEventEmitter) Publish(ctx context.Context, channel string, payload any) error {
	event, err := NewEvent(channel, payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", channel, err)
	}
	return e.EmitEvent(ctx, event)
}

var (
	_ EventEmitter = (*InMemoryEventEmitter)(nil)
	_ EventSource  = (*InMemoryEventEmitter)(nil)
)
