package progress

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/phrazzld/launchpad/internal/domain"
	"github.com/phrazzld/launchpad/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu      sync.Mutex
	active  bool
	applied []domain.Progress
}

func (s *recordingSink) ApplyProgress(p domain.Progress) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return false
	}
	s.applied = append(s.applied, p)
	return true
}

// flakySource fails the first subscription to failOn.
type flakySource struct {
	*events.InMemoryEventEmitter
	failOn string
	failed bool
}

func (f *flakySource) Subscribe(channel string, h events.EventHandler) error {
	if channel == f.failOn && !f.failed {
		f.failed = true
		return errors.New("transport not connected")
	}
	return f.InMemoryEventEmitter.Subscribe(channel, h)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRelay_EnsureSubscribedIsIdempotent(t *testing.T) {
	emitter := events.NewInMemoryEventEmitter(discardLogger())
	relay := NewRelay(emitter, &recordingSink{}, discardLogger())

	for i := 0; i < 3; i++ {
		require.NoError(t, relay.EnsureSubscribed(context.Background()))
	}

	for _, channel := range Channels {
		assert.Equal(t, 1, emitter.HandlerCount(channel), channel)
	}
}

func TestRelay_RetriesOnlyFailedChannels(t *testing.T) {
	source := &flakySource{
		InMemoryEventEmitter: events.NewInMemoryEventEmitter(discardLogger()),
		failOn:               events.ChannelInstallProgress,
	}
	relay := NewRelay(source, &recordingSink{}, discardLogger())

	err := relay.EnsureSubscribed(context.Background())
	require.Error(t, err)
	assert.Zero(t, source.HandlerCount(events.ChannelInstallProgress))

	require.NoError(t, relay.EnsureSubscribed(context.Background()))
	for _, channel := range Channels {
		assert.Equal(t, 1, source.HandlerCount(channel), channel)
	}
}

func TestRelay_AppliesProgressInArrivalOrder(t *testing.T) {
	emitter := events.NewInMemoryEventEmitter(discardLogger())
	sink := &recordingSink{active: true}
	relay := NewRelay(emitter, sink, discardLogger())
	require.NoError(t, relay.EnsureSubscribed(context.Background()))

	ctx := context.Background()
	require.NoError(t, emitter.Publish(ctx, events.ChannelDownloadProgress,
		domain.Progress{Phase: "downloading", TotalBytes: 100, FinishedBytes: 10}))
	require.NoError(t, emitter.Publish(ctx, events.ChannelVerifyProgress,
		json.RawMessage(`{"phase":"verifying","total_count":5,"finished_count":2,"current":"a.bin"}`)))

	require.Len(t, sink.applied, 2)
	assert.Equal(t, int64(10), sink.applied[0].FinishedBytes)
	assert.Equal(t, "verifying", sink.applied[1].Phase)
	assert.Equal(t, "a.bin", sink.applied[1].Current)
}

func TestRelay_IgnoresEventsWhileIdle(t *testing.T) {
	emitter := events.NewInMemoryEventEmitter(discardLogger())
	sink := &recordingSink{}
	relay := NewRelay(emitter, sink, discardLogger())
	require.NoError(t, relay.EnsureSubscribed(context.Background()))

	require.NoError(t, emitter.Publish(context.Background(), events.ChannelUpdateProgress, domain.Progress{Phase: "x"}))
	assert.Empty(t, sink.applied)
}

func TestRelay_MalformedPayload(t *testing.T) {
	emitter := events.NewInMemoryEventEmitter(discardLogger())
	sink := &recordingSink{active: true}
	relay := NewRelay(emitter, sink, discardLogger())
	require.NoError(t, relay.EnsureSubscribed(context.Background()))

	err := emitter.Publish(context.Background(), events.ChannelDownloadProgress, json.RawMessage(`"not an object"`))
	assert.Error(t, err)
	assert.Empty(t, sink.applied)
}
