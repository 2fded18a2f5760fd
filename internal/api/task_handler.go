package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/launchpad/internal/api/shared"
	"github.com/phrazzld/launchpad/internal/platform/logger"
	"github.com/phrazzld/launchpad/internal/task"
)

// TaskController is the part of the task orchestrator the API drives.
type TaskController interface {
	Snapshot() task.RunState
	Watch(ctx context.Context) <-chan task.RunState
	Start(desc task.Description) bool
	Pause() bool
	Resume(gameID string) bool
	Cancel()
	RepairableFailuresFor(gameID, folder, endpoint, region string) []string
}

// TaskHandler serves the task lifecycle endpoints.
type TaskHandler struct {
	tasks     TaskController
	validator *validator.Validate
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(tasks TaskController) *TaskHandler {
	return &TaskHandler{
		tasks:     tasks,
		validator: validator.New(),
	}
}

// GetState handles GET /api/state.
func (h *TaskHandler) GetState(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, h.tasks.Snapshot())
}

// StreamState handles GET /api/events. It writes the current run state as
// a server-sent "state" event, then one event per change, until the client
// disconnects. The latest notification travels inside each snapshot.
func (h *TaskHandler) StreamState(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	flusher, ok := w.(http.Flusher)
	if !ok {
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Streaming is not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for st := range h.tasks.Watch(r.Context()) {
		data, err := json.Marshal(st)
		if err != nil {
			log.Error("failed to encode run state", "error", err)
			return
		}
		if _, err := fmt.Fprintf(w, "event: state\ndata: %s\n\n", data); err != nil {
			log.Debug("event stream closed", "error", err)
			return
		}
		flusher.Flush()
	}
}

// StartTask handles POST /api/tasks/{kind}. It answers 202 with the new
// state, or 409 when another task is active.
func (h *TaskHandler) StartTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	kind, err := task.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req StartTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	desc, err := task.NewDescription(req.params(kind))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if !h.tasks.Start(desc) {
		log.Info("start rejected, task already active",
			"task_kind", kind,
			"game_id", req.GameID)
		shared.RespondWithError(w, r, http.StatusConflict, "A task is already running")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, h.tasks.Snapshot())
}

// PauseTask handles POST /api/tasks/pause.
func (h *TaskHandler) PauseTask(w http.ResponseWriter, r *http.Request) {
	applied := h.tasks.Pause()
	shared.RespondWithJSON(w, r, http.StatusOK, ActionResponse{Applied: applied, State: h.tasks.Snapshot()})
}

// ResumeTask handles POST /api/tasks/resume. The body is optional; a
// game_id restricts the resume to that game's paused task.
func (h *TaskHandler) ResumeTask(w http.ResponseWriter, r *http.Request) {
	var req ResumeRequest
	if err := shared.DecodeJSON(r, &req); err != nil && !errors.Is(err, shared.ErrEmptyBody) {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	applied := h.tasks.Resume(req.GameID)
	shared.RespondWithJSON(w, r, http.StatusOK, ActionResponse{Applied: applied, State: h.tasks.Snapshot()})
}

// CancelTask handles POST /api/tasks/cancel.
func (h *TaskHandler) CancelTask(w http.ResponseWriter, r *http.Request) {
	h.tasks.Cancel()
	shared.RespondWithJSON(w, r, http.StatusOK, ActionResponse{Applied: true, State: h.tasks.Snapshot()})
}

// GetRepairable handles GET /api/repairable.
func (h *TaskHandler) GetRepairable(w http.ResponseWriter, r *http.Request) {
	values, missing := requireQuery(r, "game_id", "folder", "endpoint")
	if missing != "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Missing query parameter: "+missing)
		return
	}

	files := h.tasks.RepairableFailuresFor(
		values["game_id"],
		values["folder"],
		values["endpoint"],
		r.URL.Query().Get("region"),
	)
	shared.RespondWithJSON(w, r, http.StatusOK, RepairableResponse{Files: files})
}
