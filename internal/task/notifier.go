package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/launchpad/internal/events"
)

// Level is the severity of a notification.
type Level string

// Notification levels.
const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification is a user-facing message about a run.
type Notification struct {
	Level    Level     `json:"level"`
	Kind     Kind      `json:"kind"`
	RunID    uuid.UUID `json:"run_id"`
	GameID   string    `json:"game_id"`
	GameName string    `json:"game_name,omitempty"`
	Title    string    `json:"title"`
	Message  string    `json:"message"`
}

// Notifier delivers notifications to whoever presents them.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// EventNotifier publishes notifications on the task-notification channel.
type EventNotifier struct {
	emitter events.EventEmitter
	logger  *slog.Logger
}

// NewEventNotifier creates a Notifier backed by emitter.
func NewEventNotifier(emitter events.EventEmitter, logger *slog.Logger) *EventNotifier {
	return &EventNotifier{
		emitter: emitter,
		logger:  logger.With("component", "task_notifier"),
	}
}

// Notify publishes n. Delivery failures are logged and dropped.
func (n *EventNotifier) Notify(ctx context.Context, note Notification) {
	if err := n.emitter.Publish(ctx, events.ChannelNotification, note); err != nil {
		n.logger.Warn("failed to deliver notification",
			"error", err,
			"run_id", note.RunID,
			"level", note.Level)
	}
}

// failureTitle is the kind-specific headline of a fatal failure.
func failureTitle(k Kind) string {
	switch k {
	case KindDownload:
		return "Download failed"
	case KindUpdate:
		return "Update failed"
	case KindVerify:
		return "Verification failed"
	case KindRepair:
		return "Repair failed"
	case KindInstallerAcquire, KindInstallerUpdate:
		return "Installer download failed"
	default:
		return "Task failed"
	}
}

func displayName(d Description) string {
	if d.GameName() != "" {
		return d.GameName()
	}
	return d.GameID()
}

func verifySummary(total, ok int, failed []string) string {
	if len(failed) == 0 {
		return fmt.Sprintf("All %d files verified", total)
	}
	return fmt.Sprintf("%d of %d files verified, %d failed", ok, total, len(failed))
}

func repairSummary(requested, repaired int, failed []string) string {
	if len(failed) == 0 {
		return fmt.Sprintf("Repaired %d of %d files", repaired, requested)
	}
	return fmt.Sprintf("Repaired %d of %d files, %d still failing", repaired, requested, len(failed))
}

var _ Notifier = (*EventNotifier)(nil)
