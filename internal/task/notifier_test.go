package task

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/launchpad/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventNotifier_PublishesOnNotificationChannel(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	emitter := events.NewInMemoryEventEmitter(log)

	var got []Notification
	require.NoError(t, emitter.Subscribe(events.ChannelNotification, events.HandlerFunc(
		func(_ context.Context, e *events.Event) error {
			var n Notification
			if err := e.UnmarshalPayload(&n); err != nil {
				return err
			}
			got = append(got, n)
			return nil
		})))

	want := Notification{
		Level:   LevelError,
		Kind:    KindRepair,
		RunID:   uuid.New(),
		GameID:  "hk4e",
		Title:   failureTitle(KindRepair),
		Message: "Genshin: permission denied",
	}
	NewEventNotifier(emitter, log).Notify(context.Background(), want)

	require.Len(t, got, 1)
	assert.Equal(t, want, got[0])
}

func TestFailureTitle(t *testing.T) {
	titles := map[Kind]string{
		KindDownload:         "Download failed",
		KindUpdate:           "Update failed",
		KindVerify:           "Verification failed",
		KindRepair:           "Repair failed",
		KindInstallerAcquire: "Installer download failed",
		KindInstallerUpdate:  "Installer download failed",
	}
	for kind, want := range titles {
		assert.Equal(t, want, failureTitle(kind), kind)
	}
}

func TestSummaries(t *testing.T) {
	assert.Equal(t, "All 3 files verified", verifySummary(3, 3, nil))
	assert.Equal(t, "8 of 10 files verified, 2 failed", verifySummary(10, 8, []string{"a", "b"}))
	assert.Equal(t, "Repaired 2 of 2 files", repairSummary(2, 2, nil))
	assert.Equal(t, "Repaired 1 of 2 files, 1 still failing", repairSummary(2, 1, []string{"b"}))
}
