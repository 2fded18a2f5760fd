package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/launchpad/internal/api/middleware"
	"github.com/phrazzld/launchpad/internal/service/auth"
)

// RouterDeps are the collaborators the control API is built from.
type RouterDeps struct {
	Tasks    TaskController
	Settings SettingsService
	// JWT guards every /api route when set. A nil JWT leaves the API open,
	// which is only appropriate when it listens on loopback.
	JWT    auth.JWTService
	Logger *slog.Logger
}

// NewRouter builds the control API router.
func NewRouter(deps RouterDeps) http.Handler {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Trace(log))

	tasks := NewTaskHandler(deps.Tasks)
	games := NewGameHandler(deps.Settings)

	r.Route("/api", func(r chi.Router) {
		if deps.JWT != nil {
			r.Use(middleware.NewAuthMiddleware(deps.JWT).Authenticate)
		}

		r.Get("/state", tasks.GetState)
		r.Get("/events", tasks.StreamState)
		r.Get("/repairable", tasks.GetRepairable)

		r.Route("/tasks", func(r chi.Router) {
			r.Post("/pause", tasks.PauseTask)
			r.Post("/resume", tasks.ResumeTask)
			r.Post("/cancel", tasks.CancelTask)
			r.Post("/{kind}", tasks.StartTask)
		})

		r.Get("/games", games.ListGames)
		r.Route("/games/{id}", func(r chi.Router) {
			r.Get("/config", games.GetConfig)
			r.Patch("/config", games.PatchConfig)
			r.Put("/visibility", games.SetVisibility)
			r.Get("/presets", games.ListPresets)
			r.Get("/executable", games.GetExecutable)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			log.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
