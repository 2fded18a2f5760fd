package api

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/launchpad/internal/api/shared"
	"github.com/phrazzld/launchpad/internal/domain"
)

// SettingsService is the cached game settings service.
type SettingsService interface {
	LoadGameConfig(ctx context.Context, gameID string) (domain.GameConfig, error)
	SaveGameConfig(ctx context.Context, gameID string, patch domain.GameConfigPatch) (domain.GameConfig, error)
	SetGameVisibility(ctx context.Context, gameID string, hidden bool) error
	ResolveDefaultExecutable(ctx context.Context, gameID, folder, endpoint string) (string, error)
	ListGames(ctx context.Context) ([]domain.GameSummary, error)
	ListPresets(ctx context.Context, gameID string) ([]domain.Preset, error)
}

// GameHandler serves the per-game settings endpoints.
type GameHandler struct {
	settings  SettingsService
	validator *validator.Validate
}

// NewGameHandler creates a new GameHandler
func NewGameHandler(settings SettingsService) *GameHandler {
	return &GameHandler{
		settings:  settings,
		validator: validator.New(),
	}
}

// ListGames handles GET /api/games.
func (h *GameHandler) ListGames(w http.ResponseWriter, r *http.Request) {
	games, err := h.settings.ListGames(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list games")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, games)
}

// GetConfig handles GET /api/games/{id}/config.
func (h *GameHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	gameID, err := getPathGameID(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	cfg, err := h.settings.LoadGameConfig(r.Context(), gameID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load game configuration")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, cfg)
}

// PatchConfig handles PATCH /api/games/{id}/config.
func (h *GameHandler) PatchConfig(w http.ResponseWriter, r *http.Request) {
	gameID, err := getPathGameID(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var patch domain.GameConfigPatch
	if err := shared.DecodeJSON(r, &patch); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if patch.IsEmpty() {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Patch changes nothing")
		return
	}

	cfg, err := h.settings.SaveGameConfig(r.Context(), gameID, patch)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to save game configuration")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, cfg)
}

// SetVisibility handles PUT /api/games/{id}/visibility.
func (h *GameHandler) SetVisibility(w http.ResponseWriter, r *http.Request) {
	gameID, err := getPathGameID(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req VisibilityRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.settings.SetGameVisibility(r.Context(), gameID, *req.Hidden); err != nil {
		HandleAPIError(w, r, err, "Failed to update visibility")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListPresets handles GET /api/games/{id}/presets.
func (h *GameHandler) ListPresets(w http.ResponseWriter, r *http.Request) {
	gameID, err := getPathGameID(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	presets, err := h.settings.ListPresets(r.Context(), gameID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list presets")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, presets)
}

// GetExecutable handles GET /api/games/{id}/executable?folder&endpoint.
func (h *GameHandler) GetExecutable(w http.ResponseWriter, r *http.Request) {
	gameID, err := getPathGameID(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	values, missing := requireQuery(r, "folder", "endpoint")
	if missing != "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Missing query parameter: "+missing)
		return
	}

	path, err := h.settings.ResolveDefaultExecutable(r.Context(), gameID, values["folder"], values["endpoint"])
	if err != nil {
		HandleAPIError(w, r, err, "Failed to resolve executable")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, ExecutableResponse{Path: path})
}
