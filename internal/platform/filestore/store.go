// Package filestore keeps per-game configuration as one YAML file per game
// under a directory. It is the default config store when no database is
// configured.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/phrazzld/launchpad/internal/domain"
	"github.com/phrazzld/launchpad/internal/service"
	"gopkg.in/yaml.v3"
)

const fileExt = ".yaml"

// Store implements service.ConfigStore on the local filesystem.
type Store struct {
	dir    string
	now    func() time.Time
	logger *slog.Logger

	// mu serializes read-modify-write cycles of Save.
	mu sync.Mutex
}

var _ service.ConfigStore = (*Store)(nil)

// New creates the directory if needed and returns a Store rooted at it.
func New(dir string, logger *slog.Logger) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("config directory cannot be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		dir:    dir,
		now:    time.Now,
		logger: logger.With("component", "file_config_store"),
	}, nil
}

// Load implements service.ConfigStore.
func (s *Store) Load(_ context.Context, gameID string) (domain.GameConfig, error) {
	if gameID == "" {
		return domain.GameConfig{}, domain.ErrEmptyGameID
	}
	return s.read(gameID)
}

// Save implements service.ConfigStore.
func (s *Store) Save(ctx context.Context, gameID string, patch domain.GameConfigPatch) (domain.GameConfig, error) {
	if gameID == "" {
		return domain.GameConfig{}, domain.ErrEmptyGameID
	}
	if err := ctx.Err(); err != nil {
		return domain.GameConfig{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.read(gameID)
	switch {
	case errors.Is(err, domain.ErrGameNotFound):
		cfg = domain.GameConfig{GameID: gameID}
	case err != nil:
		return domain.GameConfig{}, err
	}

	patch.Apply(&cfg, s.now().UTC())
	if err := s.write(gameID, cfg); err != nil {
		return domain.GameConfig{}, err
	}

	s.logger.Debug("saved game config", "game_id", gameID, "path", s.path(gameID))
	return cfg, nil
}

// path maps a game ID to a single file name inside dir.
func (s *Store) path(gameID string) string {
	return filepath.Join(s.dir, url.PathEscape(gameID)+fileExt)
}

func (s *Store) read(gameID string) (domain.GameConfig, error) {
	data, err := os.ReadFile(s.path(gameID))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.GameConfig{}, domain.ErrGameNotFound
		}
		return domain.GameConfig{}, fmt.Errorf("read game config %q: %w", gameID, err)
	}

	var cfg domain.GameConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.GameConfig{}, fmt.Errorf("parse game config %q: %w", gameID, err)
	}
	cfg.GameID = gameID
	return cfg, nil
}

// write replaces the game's file atomically through a temp file in the same
// directory.
func (s *Store) write(gameID string, cfg domain.GameConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal game config %q: %w", gameID, err)
	}

	tmp, err := os.CreateTemp(s.dir, ".game-*"+fileExt+".tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path(gameID)); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
