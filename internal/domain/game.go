package domain

import "time"

// GameConfig is the persisted per-game configuration the launcher keeps.
// Task strategies write GameFolder/LauncherAPI after a download and the
// installer fields after an installer fetch.
type GameConfig struct {
	GameID           string    `json:"game_id" yaml:"game_id"`
	GameFolder       string    `json:"game_folder,omitempty" yaml:"game_folder,omitempty"`
	LauncherAPI      string    `json:"launcher_api,omitempty" yaml:"launcher_api,omitempty"`
	Executable       string    `json:"executable,omitempty" yaml:"executable,omitempty"`
	Languages        []string  `json:"languages,omitempty" yaml:"languages,omitempty"`
	Region           string    `json:"region,omitempty" yaml:"region,omitempty"`
	PresetID         string    `json:"preset_id,omitempty" yaml:"preset_id,omitempty"`
	InstallerPath    string    `json:"installer_path,omitempty" yaml:"installer_path,omitempty"`
	InstallerVersion string    `json:"installer_version,omitempty" yaml:"installer_version,omitempty"`
	Hidden           bool      `json:"hidden" yaml:"hidden"`
	UpdatedAt        time.Time `json:"updated_at" yaml:"updated_at"`
}

// GameConfigPatch is a partial update to a GameConfig. Nil fields are left
// untouched.
type GameConfigPatch struct {
	GameFolder       *string  `json:"game_folder,omitempty"`
	LauncherAPI      *string  `json:"launcher_api,omitempty"`
	Executable       *string  `json:"executable,omitempty"`
	Languages        []string `json:"languages,omitempty"`
	Region           *string  `json:"region,omitempty"`
	PresetID         *string  `json:"preset_id,omitempty"`
	InstallerPath    *string  `json:"installer_path,omitempty"`
	InstallerVersion *string  `json:"installer_version,omitempty"`
	Hidden           *bool    `json:"hidden,omitempty"`
}

// Apply merges the patch into cfg and stamps UpdatedAt.
func (p GameConfigPatch) Apply(cfg *GameConfig, now time.Time) {
	if p.GameFolder != nil {
		cfg.GameFolder = *p.GameFolder
	}
	if p.LauncherAPI != nil {
		cfg.LauncherAPI = *p.LauncherAPI
	}
	if p.Executable != nil {
		cfg.Executable = *p.Executable
	}
	if p.Languages != nil {
		cfg.Languages = append([]string(nil), p.Languages...)
	}
	if p.Region != nil {
		cfg.Region = *p.Region
	}
	if p.PresetID != nil {
		cfg.PresetID = *p.PresetID
	}
	if p.InstallerPath != nil {
		cfg.InstallerPath = *p.InstallerPath
	}
	if p.InstallerVersion != nil {
		cfg.InstallerVersion = *p.InstallerVersion
	}
	if p.Hidden != nil {
		cfg.Hidden = *p.Hidden
	}
	cfg.UpdatedAt = now
}

// IsEmpty reports whether the patch changes nothing.
func (p GameConfigPatch) IsEmpty() bool {
	return p.GameFolder == nil && p.LauncherAPI == nil && p.Executable == nil &&
		p.Languages == nil && p.Region == nil && p.PresetID == nil &&
		p.InstallerPath == nil && p.InstallerVersion == nil && p.Hidden == nil
}

// GameSummary is one entry of the host's game catalogue.
type GameSummary struct {
	GameID      string `json:"game_id"`
	DisplayName string `json:"display_name"`
	Hidden      bool   `json:"hidden"`
}

// Preset is a named installer/launch preset offered for a game.
type Preset struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// StringPtr returns a pointer to s, for building patches.
func StringPtr(s string) *string {
	return &s
}
