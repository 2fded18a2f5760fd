package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/phrazzld/launchpad/internal/api"
	"github.com/phrazzld/launchpad/internal/cache"
	"github.com/phrazzld/launchpad/internal/classify"
	"github.com/phrazzld/launchpad/internal/config"
	"github.com/phrazzld/launchpad/internal/events"
	"github.com/phrazzld/launchpad/internal/platform/hostapi"
	"github.com/phrazzld/launchpad/internal/platform/hostio"
	"github.com/phrazzld/launchpad/internal/progress"
	"github.com/phrazzld/launchpad/internal/service"
	"github.com/phrazzld/launchpad/internal/service/auth"
	"github.com/phrazzld/launchpad/internal/task"
)

// application holds the long-lived dependencies of the daemon so they can
// be released together on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	// db is nil when game configurations are kept on disk.
	db *sql.DB
	// closeEvents is nil when no host events URL is configured.
	closeEvents func()

	emitter      *events.InMemoryEventEmitter
	settings     *service.GameSettings
	orchestrator *task.Orchestrator
	jwtService   auth.JWTService
}

// dialEvents connects the host event bridge. Tests replace it.
var dialEvents = func(ctx context.Context, cfg config.HostConfig, logger *slog.Logger) (events.EventSource, func(), error) {
	b, err := hostio.Dial(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return b, b.Close, nil
}

// newApplication wires every component from cfg. Resources opened before a
// failure are released before it returns.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
	}
	if err := app.init(ctx); err != nil {
		app.cleanup()
		return nil, err
	}
	logger.Info("Application initialized successfully")
	return app, nil
}

func (app *application) init(ctx context.Context) error {
	cfg, logger := app.config, app.logger

	host, err := hostapi.New(cfg.Host, logger)
	if err != nil {
		return fmt.Errorf("failed to create host client: %w", err)
	}

	store, db, err := openConfigStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	app.db = db

	app.settings, err = service.NewGameSettings(
		store,
		host,
		cache.New(cache.WithLogger(logger)),
		cfg.Cache,
		logger,
	)
	if err != nil {
		return fmt.Errorf("failed to create game settings service: %w", err)
	}

	app.emitter = events.NewInMemoryEventEmitter(logger)
	if err := app.emitter.Subscribe(events.ChannelNotification, notificationLogger(logger)); err != nil {
		return fmt.Errorf("failed to subscribe notification log: %w", err)
	}

	app.orchestrator, err = task.NewOrchestrator(task.NewStore(), task.Deps{
		Executor:   host,
		Settings:   app.settings,
		Classifier: classify.NewFromConfig(cfg.Classifier),
		Notifier:   task.NewEventNotifier(app.emitter, logger),
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create task orchestrator: %w", err)
	}

	if cfg.Host.EventsURL != "" {
		source, closeFn, err := dialEvents(ctx, cfg.Host, logger)
		if err != nil {
			return fmt.Errorf("failed to connect host events: %w", err)
		}
		app.closeEvents = closeFn
		app.orchestrator.UseRelay(progress.NewRelay(source, app.orchestrator, logger))
		logger.Info("host event bridge connected", "namespace", cfg.Host.EventsNamespace)
	} else {
		logger.Warn("no host events URL configured; task progress will not be reported")
	}

	if cfg.Auth.JWTSecret != "" {
		app.jwtService, err = auth.NewJWTService(cfg.Auth)
		if err != nil {
			return fmt.Errorf("failed to initialize JWT service: %w", err)
		}
		logger.Info("JWT authentication service initialized",
			"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)
	}
	return nil
}

// notificationLogger writes every task notification to the daemon log so
// headless hosts still surface them.
func notificationLogger(logger *slog.Logger) events.HandlerFunc {
	log := logger.With("component", "notifications")
	return func(_ context.Context, event *events.Event) error {
		var note task.Notification
		if err := event.UnmarshalPayload(&note); err != nil {
			return err
		}
		log.Info(note.Title,
			"level", note.Level,
			"run_id", note.RunID,
			"task_kind", note.Kind,
			"game_id", note.GameID,
			"message", note.Message)
		return nil
	}
}

// router builds the control API handler.
func (app *application) router() http.Handler {
	return api.NewRouter(api.RouterDeps{
		Tasks:    app.orchestrator,
		Settings: app.settings,
		JWT:      app.jwtService,
		Logger:   app.logger,
	})
}

// cleanup releases the event bridge and the database.
func (app *application) cleanup() {
	if app.closeEvents != nil {
		app.closeEvents()
		app.closeEvents = nil
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
		app.db = nil
	}
	app.logger.Info("Application shutdown completed")
}
