package service

import (
	"context"
	"sync"

	"github.com/phrazzld/launchpad/internal/domain"
	"github.com/stretchr/testify/mock"
)

// MockConfigStore mocks the ConfigStore interface
type MockConfigStore struct {
	mock.Mock
}

func (m *MockConfigStore) Load(ctx context.Context, gameID string) (domain.GameConfig, error) {
	args := m.Called(ctx, gameID)
	return args.Get(0).(domain.GameConfig), args.Error(1)
}

func (m *MockConfigStore) Save(
	ctx context.Context,
	gameID string,
	patch domain.GameConfigPatch,
) (domain.GameConfig, error) {
	args := m.Called(ctx, gameID, patch)
	return args.Get(0).(domain.GameConfig), args.Error(1)
}

// MockQueries mocks the Queries interface
type MockQueries struct {
	mock.Mock
}

func (m *MockQueries) ResolveDefaultExecutable(
	ctx context.Context,
	gameID, folder, endpoint string,
) (string, error) {
	args := m.Called(ctx, gameID, folder, endpoint)
	return args.String(0), args.Error(1)
}

func (m *MockQueries) ListGames(ctx context.Context) ([]domain.GameSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.GameSummary), args.Error(1)
}

func (m *MockQueries) ListPresets(ctx context.Context, gameID string) ([]domain.Preset, error) {
	args := m.Called(ctx, gameID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Preset), args.Error(1)
}

// countingBackend is an in-memory ConfigStore and Queries that counts
// every backend read.
type countingBackend struct {
	mu      sync.Mutex
	configs map[string]domain.GameConfig
	reads   int
}

func newCountingBackend() *countingBackend {
	return &countingBackend{configs: make(map[string]domain.GameConfig)}
}

func (b *countingBackend) Reads() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.reads
}

func (b *countingBackend) Load(_ context.Context, gameID string) (domain.GameConfig, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reads++
	cfg, ok := b.configs[gameID]
	if !ok {
		return domain.GameConfig{}, domain.ErrGameNotFound
	}
	return cfg, nil
}

func (b *countingBackend) Save(_ context.Context, gameID string, patch domain.GameConfigPatch) (domain.GameConfig, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	cfg := b.configs[gameID]
	cfg.GameID = gameID
	patch.Apply(&cfg, cfg.UpdatedAt)
	b.configs[gameID] = cfg
	return cfg, nil
}

func (b *countingBackend) ResolveDefaultExecutable(_ context.Context, gameID, folder, _ string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reads++
	return folder + "/" + gameID + ".exe", nil
}

func (b *countingBackend) ListGames(context.Context) ([]domain.GameSummary, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reads++
	return []domain.GameSummary{{GameID: "hk4e", DisplayName: "Genshin"}}, nil
}

func (b *countingBackend) ListPresets(_ context.Context, gameID string) ([]domain.Preset, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reads++
	return []domain.Preset{{ID: "global", Name: gameID + " global"}}, nil
}
