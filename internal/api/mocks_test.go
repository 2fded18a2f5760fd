package api

import (
	"context"
	"errors"
	"testing"

	"github.com/phrazzld/launchpad/internal/classify"
	"github.com/phrazzld/launchpad/internal/domain"
	"github.com/phrazzld/launchpad/internal/task"
	taskmocks "github.com/phrazzld/launchpad/internal/task/mocks"
	"github.com/stretchr/testify/require"
)

// idleOrchestrator returns an orchestrator for tests that never start a
// task.
func idleOrchestrator(t *testing.T) *task.Orchestrator {
	t.Helper()
	orch, err := task.NewOrchestrator(task.NewStore(), task.Deps{
		Executor:   &taskmocks.Executor{},
		Classifier: classify.Default(),
	})
	require.NoError(t, err)
	return orch
}

// fakeSettings is a hand-written SettingsService whose behaviour is set per
// test through the ...Fn fields.
type fakeSettings struct {
	LoadGameConfigFn           func(ctx context.Context, gameID string) (domain.GameConfig, error)
	SaveGameConfigFn           func(ctx context.Context, gameID string, patch domain.GameConfigPatch) (domain.GameConfig, error)
	SetGameVisibilityFn        func(ctx context.Context, gameID string, hidden bool) error
	ResolveDefaultExecutableFn func(ctx context.Context, gameID, folder, endpoint string) (string, error)
	ListGamesFn                func(ctx context.Context) ([]domain.GameSummary, error)
	ListPresetsFn              func(ctx context.Context, gameID string) ([]domain.Preset, error)
}

var errNotConfigured = errors.New("fake not configured")

func (f *fakeSettings) LoadGameConfig(ctx context.Context, gameID string) (domain.GameConfig, error) {
	if f.LoadGameConfigFn == nil {
		return domain.GameConfig{}, errNotConfigured
	}
	return f.LoadGameConfigFn(ctx, gameID)
}

func (f *fakeSettings) SaveGameConfig(
	ctx context.Context,
	gameID string,
	patch domain.GameConfigPatch,
) (domain.GameConfig, error) {
	if f.SaveGameConfigFn == nil {
		return domain.GameConfig{}, errNotConfigured
	}
	return f.SaveGameConfigFn(ctx, gameID, patch)
}

func (f *fakeSettings) SetGameVisibility(ctx context.Context, gameID string, hidden bool) error {
	if f.SetGameVisibilityFn == nil {
		return errNotConfigured
	}
	return f.SetGameVisibilityFn(ctx, gameID, hidden)
}

func (f *fakeSettings) ResolveDefaultExecutable(ctx context.Context, gameID, folder, endpoint string) (string, error) {
	if f.ResolveDefaultExecutableFn == nil {
		return "", errNotConfigured
	}
	return f.ResolveDefaultExecutableFn(ctx, gameID, folder, endpoint)
}

func (f *fakeSettings) ListGames(ctx context.Context) ([]domain.GameSummary, error) {
	if f.ListGamesFn == nil {
		return nil, errNotConfigured
	}
	return f.ListGamesFn(ctx)
}

func (f *fakeSettings) ListPresets(ctx context.Context, gameID string) ([]domain.Preset, error) {
	if f.ListPresetsFn == nil {
		return nil, errNotConfigured
	}
	return f.ListPresetsFn(ctx, gameID)
}
