package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/launchpad/internal/domain"
	"github.com/phrazzld/launchpad/internal/platform/logger"
	"github.com/phrazzld/launchpad/internal/service"
)

const selectConfig = `
	SELECT game_id, game_folder, launcher_api, executable, languages, region,
	       preset_id, installer_path, installer_version, hidden, updated_at
	FROM game_configs
	WHERE game_id = $1
`

const upsertConfig = `
	INSERT INTO game_configs (
		game_id, game_folder, launcher_api, executable, languages, region,
		preset_id, installer_path, installer_version, hidden, updated_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	ON CONFLICT (game_id) DO UPDATE SET
		game_folder = EXCLUDED.game_folder,
		launcher_api = EXCLUDED.launcher_api,
		executable = EXCLUDED.executable,
		languages = EXCLUDED.languages,
		region = EXCLUDED.region,
		preset_id = EXCLUDED.preset_id,
		installer_path = EXCLUDED.installer_path,
		installer_version = EXCLUDED.installer_version,
		hidden = EXCLUDED.hidden,
		updated_at = EXCLUDED.updated_at
`

// GameConfigStore implements service.ConfigStore on the game_configs table.
type GameConfigStore struct {
	db     *sql.DB
	now    func() time.Time
	logger *slog.Logger
}

var _ service.ConfigStore = (*GameConfigStore)(nil)

// NewGameConfigStore creates a GameConfigStore on db.
// If logger is nil, a default logger will be used.
func NewGameConfigStore(db *sql.DB, logger *slog.Logger) *GameConfigStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GameConfigStore{
		db:     db,
		now:    time.Now,
		logger: logger.With(slog.String("component", "game_config_store")),
	}
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// Load implements service.ConfigStore.
func (s *GameConfigStore) Load(ctx context.Context, gameID string) (domain.GameConfig, error) {
	if gameID == "" {
		return domain.GameConfig{}, domain.ErrEmptyGameID
	}
	log := s.log(ctx)

	cfg, err := scanConfig(s.db.QueryRowContext(ctx, selectConfig, gameID))
	if err != nil {
		if IsNotFoundError(err) {
			log.Debug("game config not found", slog.String("game_id", gameID))
		} else {
			log.Error("failed to load game config", slog.String("game_id", gameID), slog.String("error", err.Error()))
		}
		return domain.GameConfig{}, MapError(err)
	}
	return cfg, nil
}

// Save implements service.ConfigStore. The row is locked for the whole
// read-modify-write so concurrent patches do not lose fields.
func (s *GameConfigStore) Save(
	ctx context.Context,
	gameID string,
	patch domain.GameConfigPatch,
) (cfg domain.GameConfig, err error) {
	if gameID == "" {
		return domain.GameConfig{}, domain.ErrEmptyGameID
	}
	log := s.log(ctx)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.GameConfig{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				log.Error("rollback failed", slog.String("error", rbErr.Error()))
			}
		}
	}()

	// Make sure a row exists to lock, so first-time saves serialize too.
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO game_configs (game_id) VALUES ($1) ON CONFLICT (game_id) DO NOTHING`, gameID); err != nil {
		return domain.GameConfig{}, MapError(err)
	}

	cfg, err = scanConfig(tx.QueryRowContext(ctx, selectConfig+" FOR UPDATE", gameID))
	if err != nil {
		return domain.GameConfig{}, MapError(err)
	}

	patch.Apply(&cfg, s.now().UTC())

	languages, err := json.Marshal(nonNil(cfg.Languages))
	if err != nil {
		return domain.GameConfig{}, fmt.Errorf("encode languages: %w", err)
	}
	if _, err = tx.ExecContext(ctx, upsertConfig,
		cfg.GameID,
		cfg.GameFolder,
		cfg.LauncherAPI,
		cfg.Executable,
		languages,
		cfg.Region,
		cfg.PresetID,
		cfg.InstallerPath,
		cfg.InstallerVersion,
		cfg.Hidden,
		cfg.UpdatedAt,
	); err != nil {
		log.Error("failed to save game config", slog.String("game_id", gameID), slog.String("error", err.Error()))
		return domain.GameConfig{}, MapError(err)
	}

	if err = tx.Commit(); err != nil {
		return domain.GameConfig{}, fmt.Errorf("commit transaction: %w", err)
	}

	log.Debug("game config saved", slog.String("game_id", gameID))
	return cfg, nil
}

func (s *GameConfigStore) log(ctx context.Context) *slog.Logger {
	return logger.FromContextOrDefault(ctx, s.logger)
}

func scanConfig(row rowScanner) (domain.GameConfig, error) {
	var (
		cfg       domain.GameConfig
		languages []byte
	)
	if err := row.Scan(
		&cfg.GameID,
		&cfg.GameFolder,
		&cfg.LauncherAPI,
		&cfg.Executable,
		&languages,
		&cfg.Region,
		&cfg.PresetID,
		&cfg.InstallerPath,
		&cfg.InstallerVersion,
		&cfg.Hidden,
		&cfg.UpdatedAt,
	); err != nil {
		return domain.GameConfig{}, err
	}
	if len(languages) > 0 {
		if err := json.Unmarshal(languages, &cfg.Languages); err != nil {
			return domain.GameConfig{}, fmt.Errorf("decode languages of %q: %w", cfg.GameID, err)
		}
	}
	if len(cfg.Languages) == 0 {
		cfg.Languages = nil
	}
	return cfg, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
