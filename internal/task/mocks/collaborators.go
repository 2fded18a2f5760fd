package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/launchpad/internal/domain"
	"github.com/phrazzld/launchpad/internal/task"
)

// ConfigSaver is a mock implementation of task.ConfigSaver that keeps every
// patch it receives.
type ConfigSaver struct {
	SaveGameConfigFn func(ctx context.Context, gameID string, patch domain.GameConfigPatch) (domain.GameConfig, error)

	mu      sync.Mutex
	patches map[string][]domain.GameConfigPatch
}

// SaveGameConfig implements task.ConfigSaver
func (m *ConfigSaver) SaveGameConfig(
	ctx context.Context,
	gameID string,
	patch domain.GameConfigPatch,
) (domain.GameConfig, error) {
	m.mu.Lock()
	if m.patches == nil {
		m.patches = make(map[string][]domain.GameConfigPatch)
	}
	m.patches[gameID] = append(m.patches[gameID], patch)
	m.mu.Unlock()

	if m.SaveGameConfigFn != nil {
		return m.SaveGameConfigFn(ctx, gameID, patch)
	}
	cfg := domain.GameConfig{GameID: gameID}
	patch.Apply(&cfg, cfg.UpdatedAt)
	return cfg, nil
}

// Patches returns the patches saved for gameID.
func (m *ConfigSaver) Patches(gameID string) []domain.GameConfigPatch {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.GameConfigPatch(nil), m.patches[gameID]...)
}

// Notifier is a mock implementation of task.Notifier.
type Notifier struct {
	mu            sync.Mutex
	notifications []task.Notification
}

// Notify implements task.Notifier
func (m *Notifier) Notify(_ context.Context, n task.Notification) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifications = append(m.notifications, n)
}

// Notifications returns everything delivered so far.
func (m *Notifier) Notifications() []task.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]task.Notification(nil), m.notifications...)
}

// Relay is a mock implementation of task.RelaySubscriber.
type Relay struct {
	EnsureSubscribedFn func(ctx context.Context) error

	mu    sync.Mutex
	count int
}

// EnsureSubscribed implements task.RelaySubscriber
func (m *Relay) EnsureSubscribed(ctx context.Context) error {
	m.mu.Lock()
	m.count++
	m.mu.Unlock()
	if m.EnsureSubscribedFn != nil {
		return m.EnsureSubscribedFn(ctx)
	}
	return nil
}

// Count returns how many times EnsureSubscribed was called.
func (m *Relay) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.count
}

var (
	_ task.ConfigSaver     = (*ConfigSaver)(nil)
	_ task.Notifier        = (*Notifier)(nil)
	_ task.RelaySubscriber = (*Relay)(nil)
)
