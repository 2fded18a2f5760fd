package api

import (
	"github.com/phrazzld/launchpad/internal/task"
)

// StartTaskRequest is the body of POST /api/tasks/{kind}. The kind comes
// from the path.
type StartTaskRequest struct {
	GameID      string   `json:"game_id"      validate:"required"`
	GameName    string   `json:"game_name"`
	Endpoint    string   `json:"endpoint"     validate:"required"`
	Folder      string   `json:"folder"       validate:"required"`
	Languages   []string `json:"languages"    validate:"omitempty,dive,required"`
	Region      string   `json:"region"`
	PresetID    string   `json:"preset_id"`
	RepairFiles []string `json:"repair_files" validate:"omitempty,dive,required"`
}

func (r StartTaskRequest) params(kind task.Kind) task.Params {
	return task.Params{
		Kind:        kind,
		GameID:      r.GameID,
		GameName:    r.GameName,
		Endpoint:    r.Endpoint,
		Folder:      r.Folder,
		Languages:   r.Languages,
		Region:      r.Region,
		PresetID:    r.PresetID,
		RepairFiles: r.RepairFiles,
	}
}

// ResumeRequest is the optional body of POST /api/tasks/resume.
type ResumeRequest struct {
	// GameID, when set, must equal the paused task's game ID.
	GameID string `json:"game_id"`
}

// VisibilityRequest is the body of PUT /api/games/{id}/visibility.
type VisibilityRequest struct {
	Hidden *bool `json:"hidden" validate:"required"`
}

// ActionResponse reports whether a control action had any effect.
type ActionResponse struct {
	Applied bool          `json:"applied"`
	State   task.RunState `json:"state"`
}

// RepairableResponse lists the files a repair of the queried scope would fix.
type RepairableResponse struct {
	Files []string `json:"files"`
}

// ExecutableResponse carries the resolved default executable, "" for none.
type ExecutableResponse struct {
	Path string `json:"path"`
}
