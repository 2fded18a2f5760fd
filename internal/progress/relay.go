package progress

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/phrazzld/launchpad/internal/domain"
	"github.com/phrazzld/launchpad/internal/events"
)

// Channels are the progress channels the relay listens on.
var Channels = []string{
	events.ChannelDownloadProgress,
	events.ChannelUpdateProgress,
	events.ChannelInstallProgress,
	events.ChannelVerifyProgress,
}

// Sink receives decoded progress. It reports whether the progress was
// applied, which it is only while a task is active.
type Sink interface {
	ApplyProgress(p domain.Progress) bool
}

// Relay subscribes to every progress channel once per process and writes
// each event into the sink in arrival order.
type Relay struct {
	source events.EventSource
	sink   Sink
	logger *slog.Logger

	mu         sync.Mutex
	subscribed map[string]bool
}

// NewRelay creates a Relay reading from source and writing to sink.
func NewRelay(source events.EventSource, sink Sink, logger *slog.Logger) *Relay {
	return &Relay{
		source:     source,
		sink:       sink,
		logger:     logger.With("component", "progress_relay"),
		subscribed: make(map[string]bool, len(Channels)),
	}
}

// EnsureSubscribed subscribes to every channel not yet subscribed. Calling it
// again after success does nothing; after a failure it retries only the
// channels that failed.
func (r *Relay) EnsureSubscribed(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, channel := range Channels {
		if r.subscribed[channel] {
			continue
		}
		if err := r.source.Subscribe(channel, events.HandlerFunc(r.handle)); err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", channel, err)
		}
		r.subscribed[channel] = true
		r.logger.Debug("subscribed to progress channel", "channel", channel)
	}
	return nil
}

func (r *Relay) handle(_ context.Context, event *events.Event) error {
	var p domain.Progress
	if err := event.UnmarshalPayload(&p); err != nil {
		r.logger.Warn("dropping malformed progress event",
			"error", err,
			"channel", event.Channel,
			"event_id", event.ID)
		return fmt.Errorf("failed to decode %s payload: %w", event.Channel, err)
	}
	if !r.sink.ApplyProgress(p) {
		r.logger.Debug("progress ignored, no active task", "channel", event.Channel)
	}
	return nil
}
