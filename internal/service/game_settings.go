package service

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/phrazzld/launchpad/internal/cache"
	"github.com/phrazzld/launchpad/internal/config"
	"github.com/phrazzld/launchpad/internal/domain"
)

// ConfigStore persists per-game configuration.
// Version: 1.0
type ConfigStore interface {
	// Load returns the saved configuration of gameID, or
	// domain.ErrGameNotFound when nothing was saved yet.
	Load(ctx context.Context, gameID string) (domain.GameConfig, error)

	// Save applies patch to the saved configuration of gameID, creating it
	// when missing, and returns the result.
	Save(ctx context.Context, gameID string, patch domain.GameConfigPatch) (domain.GameConfig, error)
}

// Queries are the host's expensive read-only lookups.
// Version: 1.0
type Queries interface {
	// ResolveDefaultExecutable returns the executable the host would launch,
	// or "" when it finds none.
	ResolveDefaultExecutable(ctx context.Context, gameID, folder, endpoint string) (string, error)

	// ListGames returns the host's game catalogue.
	ListGames(ctx context.Context) ([]domain.GameSummary, error)

	// ListPresets returns the presets available for gameID.
	ListPresets(ctx context.Context, gameID string) ([]domain.Preset, error)
}

// GameSettings serves cached reads of game settings and host lookups, and
// invalidates the affected keys after every successful write.
type GameSettings struct {
	store   ConfigStore
	queries Queries
	cache   *cache.Cache
	ttl     config.CacheConfig
	logger  *slog.Logger
}

// NewGameSettings creates a GameSettings.
// It returns an error if any of the required dependencies are nil.
func NewGameSettings(
	store ConfigStore,
	queries Queries,
	c *cache.Cache,
	ttl config.CacheConfig,
	logger *slog.Logger,
) (*GameSettings, error) {
	if store == nil {
		return nil, &SettingsError{Operation: "create_service", Message: "store cannot be nil"}
	}
	if queries == nil {
		return nil, &SettingsError{Operation: "create_service", Message: "queries cannot be nil"}
	}
	if c == nil {
		return nil, &SettingsError{Operation: "create_service", Message: "cache cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &GameSettings{
		store:   store,
		queries: queries,
		cache:   c,
		ttl:     ttl,
		logger:  logger.With("component", "game_settings"),
	}, nil
}

// LoadGameConfig returns the saved configuration of gameID.
func (s *GameSettings) LoadGameConfig(ctx context.Context, gameID string) (domain.GameConfig, error) {
	if gameID == "" {
		return domain.GameConfig{}, domain.ErrEmptyGameID
	}

	cfg, err := cache.Get(ctx, s.cache, gameConfigKey(gameID), s.ttl.GameConfigTTL,
		func(ctx context.Context) (domain.GameConfig, error) {
			return s.store.Load(ctx, gameID)
		})
	if err != nil {
		return domain.GameConfig{}, NewSettingsError("load_game_config", "failed to load game configuration", err)
	}
	return cloneConfig(cfg), nil
}

// SaveGameConfig applies patch to the configuration of gameID.
func (s *GameSettings) SaveGameConfig(
	ctx context.Context,
	gameID string,
	patch domain.GameConfigPatch,
) (domain.GameConfig, error) {
	if gameID == "" {
		return domain.GameConfig{}, domain.ErrEmptyGameID
	}

	cfg, err := s.store.Save(ctx, gameID, patch)
	if err != nil {
		s.logger.Error("failed to save game configuration", "error", err, "game_id", gameID)
		return domain.GameConfig{}, NewSettingsError("save_game_config", "failed to save game configuration", err)
	}
	s.invalidate(MutationSaveGameConfig, gameID)
	return cfg, nil
}

// SetGameVisibility hides or shows gameID in the catalogue.
func (s *GameSettings) SetGameVisibility(ctx context.Context, gameID string, hidden bool) error {
	if gameID == "" {
		return domain.ErrEmptyGameID
	}

	if _, err := s.store.Save(ctx, gameID, domain.GameConfigPatch{Hidden: &hidden}); err != nil {
		s.logger.Error("failed to save game visibility", "error", err, "game_id", gameID)
		return NewSettingsError("set_game_visibility", "failed to save game visibility", err)
	}
	s.invalidate(MutationSetGameVisibility, gameID)
	return nil
}

// ResolveDefaultExecutable returns the executable to launch for gameID. A
// saved executable wins over the host's answer when it was saved for the
// same folder.
func (s *GameSettings) ResolveDefaultExecutable(ctx context.Context, gameID, folder, endpoint string) (string, error) {
	if gameID == "" {
		return "", domain.ErrEmptyGameID
	}

	path, err := cache.Get(ctx, s.cache, executableKey(gameID, folder, endpoint), s.ttl.ExecutableTTL,
		func(ctx context.Context) (string, error) {
			cfg, err := s.store.Load(ctx, gameID)
			switch {
			case err == nil:
				if cfg.Executable != "" && (cfg.GameFolder == "" || cfg.GameFolder == folder) {
					return cfg.Executable, nil
				}
			case !errors.Is(err, domain.ErrGameNotFound):
				return "", err
			}
			return s.queries.ResolveDefaultExecutable(ctx, gameID, folder, endpoint)
		})
	if err != nil {
		return "", NewSettingsError("resolve_default_executable", "failed to resolve executable", err)
	}
	return path, nil
}

// ListGames returns the host catalogue with the saved hidden flags applied.
func (s *GameSettings) ListGames(ctx context.Context) ([]domain.GameSummary, error) {
	games, err := cache.Get(ctx, s.cache, gamesKey, s.ttl.GamesTTL,
		func(ctx context.Context) ([]domain.GameSummary, error) {
			games, err := s.queries.ListGames(ctx)
			if err != nil {
				return nil, err
			}
			out := make([]domain.GameSummary, 0, len(games))
			for _, g := range games {
				cfg, err := s.store.Load(ctx, g.GameID)
				switch {
				case err == nil:
					g.Hidden = cfg.Hidden
				case !errors.Is(err, domain.ErrGameNotFound):
					return nil, err
				}
				out = append(out, g)
			}
			return out, nil
		})
	if err != nil {
		return nil, NewSettingsError("list_games", "failed to list games", err)
	}
	return slices.Clone(games), nil
}

// ListPresets returns the presets the host offers for gameID.
func (s *GameSettings) ListPresets(ctx context.Context, gameID string) ([]domain.Preset, error) {
	if gameID == "" {
		return nil, domain.ErrEmptyGameID
	}

	presets, err := cache.Get(ctx, s.cache, presetsKey(gameID), s.ttl.PresetsTTL,
		func(ctx context.Context) ([]domain.Preset, error) {
			return s.queries.ListPresets(ctx, gameID)
		})
	if err != nil {
		return nil, NewSettingsError("list_presets", "failed to list presets", err)
	}
	return slices.Clone(presets), nil
}

// invalidate drops every key the table lists for m.
func (s *GameSettings) invalidate(m Mutation, gameID string) {
	for _, pattern := range Invalidations[m] {
		key := pattern.Expand(gameID)
		if pattern.Prefix {
			s.cache.InvalidatePrefix(key)
		} else {
			s.cache.Invalidate(key)
		}
	}
	s.logger.Debug("invalidated cached settings", "mutation", m, "game_id", gameID)
}

func cloneConfig(cfg domain.GameConfig) domain.GameConfig {
	cfg.Languages = slices.Clone(cfg.Languages)
	return cfg
}
