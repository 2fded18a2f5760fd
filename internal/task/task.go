package task

import (
	"context"

	"github.com/phrazzld/launchpad/internal/domain"
)

// DownloadRequest parameterizes a full download or an incremental update.
type DownloadRequest struct {
	Endpoint  string   `json:"endpoint"`
	Folder    string   `json:"folder"`
	Languages []string `json:"languages,omitempty"`
	Region    string   `json:"region,omitempty"`
}

// VerifyRequest parameterizes an integrity check.
type VerifyRequest struct {
	Endpoint string `json:"endpoint"`
	Folder   string `json:"folder"`
	Region   string `json:"region,omitempty"`
}

// RepairRequest parameterizes a selective repair.
type RepairRequest struct {
	Endpoint string   `json:"endpoint"`
	Folder   string   `json:"folder"`
	Files    []string `json:"files"`
	Region   string   `json:"region,omitempty"`
}

// InstallerRequest parameterizes an installer acquisition or update.
type InstallerRequest struct {
	Endpoint string `json:"endpoint"`
	Folder   string `json:"folder"`
	PresetID string `json:"preset_id,omitempty"`
	// Update refreshes an existing installer instead of acquiring one.
	Update bool `json:"update"`
}

// Executor is the host-side surface that actually moves bytes.
// Every call blocks until the host finishes, fails, or aborts the operation.
// Version: 1.0
type Executor interface {
	// StartDownload performs a full download into the folder.
	StartDownload(ctx context.Context, req DownloadRequest) error

	// StartUpdate performs an incremental update of the folder.
	StartUpdate(ctx context.Context, req DownloadRequest) error

	// Verify checks every file in the folder against the remote manifest.
	Verify(ctx context.Context, req VerifyRequest) (domain.VerifyResult, error)

	// Repair re-fetches the given files.
	Repair(ctx context.Context, req RepairRequest) (domain.RepairResult, error)

	// FetchInstaller downloads or refreshes the game installer.
	FetchInstaller(ctx context.Context, req InstallerRequest) (domain.InstallerResult, error)

	// Cancel asks the host to abort whatever runs against folder. It is
	// best-effort; the aborted call above fails with a cancellation error.
	Cancel(ctx context.Context, folder string) error
}

// ConfigSaver persists changes to a game's saved configuration.
type ConfigSaver interface {
	SaveGameConfig(ctx context.Context, gameID string, patch domain.GameConfigPatch) (domain.GameConfig, error)
}

// Classifier decides whether a failure is cooperative cancellation.
type Classifier interface {
	IsCancellation(v any) bool
}

// RelaySubscriber makes sure progress events reach the run state.
type RelaySubscriber interface {
	EnsureSubscribed(ctx context.Context) error
}
