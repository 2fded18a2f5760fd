package task

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/launchpad/internal/domain"
)

// Phase is the coarse lifecycle position of the run state.
type Phase string

// Possible phases.
const (
	PhaseIdle        Phase = "idle"
	PhaseDownloading Phase = "downloading"
	PhaseVerifying   Phase = "verifying"
	PhasePaused      Phase = "paused"
	PhaseDone        Phase = "done"
	PhaseError       Phase = "error"
)

// VerifyOutcome records the scope and residual failures of the most recent
// verify or repair. Later repairs are scoped by it.
type VerifyOutcome struct {
	GameID   string   `json:"game_id"`
	Folder   string   `json:"folder"`
	Endpoint string   `json:"endpoint"`
	Region   string   `json:"region,omitempty"`
	Failed   []string `json:"failed"`
}

// Matches reports whether the outcome was recorded for exactly this scope.
func (v VerifyOutcome) Matches(gameID, folder, endpoint, region string) bool {
	return v.GameID == gameID && v.Folder == folder && v.Endpoint == endpoint && v.Region == region
}

// RunState is the process-wide view of what the launcher is doing.
//
// Task is non-nil iff Active. PausedTask is non-nil iff Phase is PhasePaused.
type RunState struct {
	Active     bool             `json:"active"`
	RunID      uuid.UUID        `json:"run_id"`
	GameID     string           `json:"game_id,omitempty"`
	GameName   string           `json:"game_name,omitempty"`
	Folder     string           `json:"folder,omitempty"`
	Phase      Phase            `json:"phase"`
	Progress   *domain.Progress `json:"progress"`
	Error      string           `json:"error,omitempty"`
	Task       *Description     `json:"task"`
	PausedTask *Description     `json:"paused_task"`
	LastVerify *VerifyOutcome   `json:"last_verify"`
	// Notification is the latest user-facing message, kept after the run ends.
	Notification *Notification `json:"notification"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// clone returns a copy that shares nothing mutable with s.
func (s RunState) clone() RunState {
	c := s
	if s.Progress != nil {
		p := *s.Progress
		c.Progress = &p
	}
	if s.LastVerify != nil {
		v := *s.LastVerify
		v.Failed = slices.Clone(s.LastVerify.Failed)
		c.LastVerify = &v
	}
	if s.Notification != nil {
		n := *s.Notification
		c.Notification = &n
	}
	// Descriptions are immutable and can be shared.
	return c
}

// Store holds the single RunState of the process. Only the Orchestrator
// mutates it; everyone else reads snapshots.
type Store struct {
	mu       sync.Mutex
	state    RunState
	watchers map[int]chan RunState
	nextID   int
	now      func() time.Time
}

// NewStore creates an idle Store.
func NewStore() *Store {
	return &Store{
		state:    RunState{Phase: PhaseIdle},
		watchers: make(map[int]chan RunState),
		now:      time.Now,
	}
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() RunState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Watch returns a channel that first receives the current state and then a
// snapshot after every change. Slow readers only ever see the latest
// snapshot. The channel is closed when ctx is done.
func (s *Store) Watch(ctx context.Context) <-chan RunState {
	ch := make(chan RunState, 1)

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.watchers[id] = ch
	ch <- s.state.clone()
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.watchers, id)
		close(ch)
		s.mu.Unlock()
	}()

	return ch
}

// update applies fn to the state and publishes the result.
func (s *Store) update(fn func(st *RunState)) RunState {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(&s.state)
	s.state.UpdatedAt = s.now()
	snap := s.state.clone()

	for _, ch := range s.watchers {
		select {
		case <-ch:
		default:
		}
		ch <- s.state.clone()
	}
	return snap
}
