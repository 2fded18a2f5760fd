package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/launchpad/internal/domain"
	"github.com/phrazzld/launchpad/internal/platform/logger"
)

// strategy runs one task kind to completion. A returned error goes through
// the classifier; a nil return means the strategy already recorded its
// terminal state.
type strategy func(ctx context.Context, runID uuid.UUID, desc Description) error

// Deps are the collaborators of an Orchestrator. Settings, Notifier and
// Logger are optional.
type Deps struct {
	Executor   Executor
	Settings   ConfigSaver
	Classifier Classifier
	Notifier   Notifier
	Logger     *slog.Logger
}

// Orchestrator runs at most one task at a time and owns every transition
// of the run state.
type Orchestrator struct {
	// mu serializes transitions. The Active flag of the store is the
	// single-flight guard and is only checked and set while mu is held.
	mu          sync.Mutex
	store       *Store
	pauseIntent *Identity

	exec       Executor
	settings   ConfigSaver
	classifier Classifier
	notifier   Notifier
	relay      RelaySubscriber
	strategies map[Kind]strategy
	logger     *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates an Orchestrator driving store. Executor and
// Classifier are required.
func NewOrchestrator(store *Store, deps Deps) (*Orchestrator, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: store cannot be nil", ErrMissingDependency)
	}
	if deps.Executor == nil {
		return nil, fmt.Errorf("%w: executor cannot be nil", ErrMissingDependency)
	}
	if deps.Classifier == nil {
		return nil, fmt.Errorf("%w: classifier cannot be nil", ErrMissingDependency)
	}
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	notifier := deps.Notifier
	if notifier == nil {
		notifier = nopNotifier{}
	}
	ctx, cancel := context.WithCancel(context.Background())

	o := &Orchestrator{
		store:      store,
		exec:       deps.Executor,
		settings:   deps.Settings,
		classifier: deps.Classifier,
		notifier:   notifier,
		logger:     log.With("component", "task_orchestrator"),
		ctx:        ctx,
		cancel:     cancel,
	}
	o.strategies = map[Kind]strategy{
		KindDownload:         o.runDownload,
		KindUpdate:           o.runDownload,
		KindVerify:           o.runVerify,
		KindRepair:           o.runRepair,
		KindInstallerAcquire: o.runInstaller,
		KindInstallerUpdate:  o.runInstaller,
	}
	return o, nil
}

// UseRelay sets the progress relay that Start subscribes before running.
// It must be called before the first Start.
func (o *Orchestrator) UseRelay(r RelaySubscriber) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.relay = r
}

// Snapshot returns a copy of the current run state.
func (o *Orchestrator) Snapshot() RunState {
	return o.store.Snapshot()
}

// Watch streams run state snapshots until ctx is done.
func (o *Orchestrator) Watch(ctx context.Context) <-chan RunState {
	return o.store.Watch(ctx)
}

// Start begins desc unless a task is already active, in which case it
// returns false and leaves the run state untouched. When it returns true
// the progress relay has been subscribed, or the attempt has failed and
// been logged.
func (o *Orchestrator) Start(desc Description) bool {
	if desc.IsZero() {
		return false
	}

	o.mu.Lock()
	if o.store.Snapshot().Active {
		o.mu.Unlock()
		o.logger.Debug("start rejected, a task is already active",
			"task_kind", desc.Kind(),
			"game_id", desc.GameID())
		return false
	}

	runID := uuid.New()
	phase := PhaseDownloading
	if desc.Kind().checksFiles() {
		phase = PhaseVerifying
	}
	o.pauseIntent = nil
	task := desc
	o.store.update(func(st *RunState) {
		st.Active = true
		st.RunID = runID
		st.GameID = desc.GameID()
		st.GameName = desc.GameName()
		st.Folder = desc.Folder()
		st.Phase = phase
		st.Progress = nil
		st.Error = ""
		st.Task = &task
		st.PausedTask = nil
	})
	o.wg.Add(1)
	relay := o.relay
	o.mu.Unlock()

	log := o.logger.With(
		"run_id", runID,
		"task_kind", desc.Kind(),
		"game_id", desc.GameID())
	log.Info("task started", "phase", phase)
	ctx := logger.WithLogger(o.ctx, log)

	if relay != nil {
		if err := relay.EnsureSubscribed(ctx); err != nil {
			log.Warn("progress relay unavailable", "error", err)
		}
	}

	go o.run(ctx, runID, desc)
	return true
}

// StartDownload starts a full download described by p.
func (o *Orchestrator) StartDownload(p Params) (bool, error) {
	return o.startKind(KindDownload, p)
}

// StartUpdate starts an incremental update described by p.
func (o *Orchestrator) StartUpdate(p Params) (bool, error) {
	return o.startKind(KindUpdate, p)
}

// StartVerify starts a standalone verification described by p.
func (o *Orchestrator) StartVerify(p Params) (bool, error) {
	return o.startKind(KindVerify, p)
}

// StartRepair starts a repair described by p.
func (o *Orchestrator) StartRepair(p Params) (bool, error) {
	return o.startKind(KindRepair, p)
}

// StartInstaller acquires the installer, or updates it when update is set.
func (o *Orchestrator) StartInstaller(p Params, update bool) (bool, error) {
	if update {
		return o.startKind(KindInstallerUpdate, p)
	}
	return o.startKind(KindInstallerAcquire, p)
}

func (o *Orchestrator) startKind(kind Kind, p Params) (bool, error) {
	p.Kind = kind
	desc, err := NewDescription(p)
	if err != nil {
		return false, err
	}
	return o.Start(desc), nil
}

// Pause asks the host to stop the active task and remembers that the stop
// was a pause for this exact task. It returns false when nothing is active.
func (o *Orchestrator) Pause() bool {
	o.mu.Lock()
	st := o.store.Snapshot()
	if !st.Active || st.Task == nil {
		o.mu.Unlock()
		return false
	}
	id := st.Task.Identity()
	o.pauseIntent = &id
	o.mu.Unlock()

	o.logger.Info("pause requested", "run_id", st.RunID, "game_id", st.GameID)
	o.forwardCancel(st.Folder)
	return true
}

// Resume restarts the paused task. A non-empty gameID is compared with the
// paused task's game ID, not its display name, and must match.
func (o *Orchestrator) Resume(gameID string) bool {
	o.mu.Lock()
	st := o.store.Snapshot()
	if st.Active || st.Phase != PhasePaused || st.PausedTask == nil {
		o.mu.Unlock()
		return false
	}
	if gameID != "" && gameID != st.PausedTask.GameID() {
		o.mu.Unlock()
		return false
	}
	desc := *st.PausedTask
	o.mu.Unlock()

	return o.Start(desc)
}

// Cancel drops any pause intent and paused task, and asks the host to stop
// the active task. With nothing active a paused state returns to idle.
func (o *Orchestrator) Cancel() {
	o.mu.Lock()
	o.pauseIntent = nil
	before := o.store.Snapshot()
	if before.PausedTask != nil || (!before.Active && before.Phase == PhasePaused) {
		o.store.update(func(st *RunState) {
			st.PausedTask = nil
			if !st.Active && st.Phase == PhasePaused {
				st.Phase = PhaseIdle
			}
		})
	}
	o.mu.Unlock()

	if before.Active {
		o.logger.Info("cancel requested", "run_id", before.RunID, "game_id", before.GameID)
		o.forwardCancel(before.Folder)
	}
}

// RepairableFailuresFor returns the failed files of the latest verify or
// repair when it was recorded for exactly this scope, and an empty list
// otherwise.
func (o *Orchestrator) RepairableFailuresFor(gameID, folder, endpoint, region string) []string {
	st := o.store.Snapshot()
	if st.LastVerify == nil || !st.LastVerify.Matches(gameID, folder, endpoint, region) {
		return []string{}
	}
	if st.LastVerify.Failed == nil {
		return []string{}
	}
	return st.LastVerify.Failed
}

// ApplyProgress stores p as the latest progress snapshot while a task is
// active. It reports whether p was applied.
func (o *Orchestrator) ApplyProgress(p domain.Progress) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.store.Snapshot().Active {
		return false
	}
	o.store.update(func(st *RunState) {
		st.Progress = &p
	})
	return true
}

// Wait blocks until no strategy is running.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// Shutdown cancels the active task, stops every strategy context and waits
// for the strategies to return or ctx to end.
func (o *Orchestrator) Shutdown(ctx context.Context) error {
	st := o.store.Snapshot()
	if st.Active {
		o.forwardCancel(st.Folder)
	}
	o.cancel()

	done := make(chan struct{})
	go func() {
		o.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for running task: %w", ctx.Err())
	}
}

func (o *Orchestrator) forwardCancel(folder string) {
	// The base context may already be done during shutdown.
	ctx := context.WithoutCancel(o.ctx)
	if err := o.exec.Cancel(ctx, folder); err != nil {
		o.logger.Warn("host cancel failed", "error", err, "folder", folder)
	}
}

func (o *Orchestrator) run(ctx context.Context, runID uuid.UUID, desc Description) {
	defer o.wg.Done()

	run, ok := o.strategies[desc.Kind()]
	if !ok {
		o.fail(ctx, runID, desc, fmt.Errorf("%w: %s", ErrUnknownKind, desc.Kind()))
		return
	}
	if err := run(ctx, runID, desc); err != nil {
		o.fail(ctx, runID, desc, err)
	}
}

// transition applies fn if runID is still the active run.
func (o *Orchestrator) transition(ctx context.Context, runID uuid.UUID, fn func(st *RunState)) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	current := o.store.Snapshot()
	if !current.Active || current.RunID != runID {
		return false
	}
	st := o.store.update(fn)
	if !st.Active {
		o.pauseIntent = nil
	}
	logger.FromContext(ctx).Info("task state changed",
		"phase", st.Phase,
		"active", st.Active)
	return true
}

// fail resolves a strategy error into paused, idle or error.
func (o *Orchestrator) fail(ctx context.Context, runID uuid.UUID, desc Description, err error) {
	log := logger.FromContext(ctx)

	if o.classifier.IsCancellation(err) {
		var paused bool
		task := desc
		o.transition(ctx, runID, func(st *RunState) {
			// transition holds mu, so the intent cannot change under us.
			paused = o.pauseIntent != nil && *o.pauseIntent == desc.Identity()
			st.Active = false
			st.Task = nil
			st.Error = ""
			if paused {
				st.Phase = PhasePaused
				st.PausedTask = &task
			} else {
				st.Phase = PhaseIdle
				st.PausedTask = nil
			}
		})
		log.Info("task stopped by request", "paused", paused, "reason", err)
		return
	}

	log.Error("task failed", "error", err)
	o.transition(ctx, runID, func(st *RunState) {
		st.Active = false
		st.Task = nil
		st.PausedTask = nil
		st.Phase = PhaseError
		st.Error = err.Error()
	})
	o.notify(ctx, Notification{
		Level:    LevelError,
		Kind:     desc.Kind(),
		RunID:    runID,
		GameID:   desc.GameID(),
		GameName: desc.GameName(),
		Title:    failureTitle(desc.Kind()),
		Message:  fmt.Sprintf("%s: %v", displayName(desc), err),
	})
}

// notify records n as the latest notification of the run state and hands it
// to the notifier.
func (o *Orchestrator) notify(ctx context.Context, n Notification) {
	o.mu.Lock()
	o.store.update(func(st *RunState) {
		note := n
		st.Notification = &note
	})
	o.mu.Unlock()
	o.notifier.Notify(ctx, n)
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, Notification) {}
