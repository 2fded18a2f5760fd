package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/launchpad/internal/domain"
	"github.com/phrazzld/launchpad/internal/task"
)

// Executor is a mock implementation of task.Executor. Unset functions
// succeed with zero results. Every call is recorded by method name.
type Executor struct {
	StartDownloadFn  func(ctx context.Context, req task.DownloadRequest) error
	StartUpdateFn    func(ctx context.Context, req task.DownloadRequest) error
	VerifyFn         func(ctx context.Context, req task.VerifyRequest) (domain.VerifyResult, error)
	RepairFn         func(ctx context.Context, req task.RepairRequest) (domain.RepairResult, error)
	FetchInstallerFn func(ctx context.Context, req task.InstallerRequest) (domain.InstallerResult, error)
	CancelFn         func(ctx context.Context, folder string) error

	mu    sync.Mutex
	calls []string
}

func (m *Executor) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
}

// Calls returns the names of the methods invoked so far, in order.
func (m *Executor) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// CallCount returns how many times name was invoked.
func (m *Executor) CallCount(name string) int {
	n := 0
	for _, c := range m.Calls() {
		if c == name {
			n++
		}
	}
	return n
}

// StartDownload implements task.Executor
func (m *Executor) StartDownload(ctx context.Context, req task.DownloadRequest) error {
	m.record("StartDownload")
	if m.StartDownloadFn != nil {
		return m.StartDownloadFn(ctx, req)
	}
	return nil
}

// StartUpdate implements task.Executor
func (m *Executor) StartUpdate(ctx context.Context, req task.DownloadRequest) error {
	m.record("StartUpdate")
	if m.StartUpdateFn != nil {
		return m.StartUpdateFn(ctx, req)
	}
	return nil
}

// Verify implements task.Executor
func (m *Executor) Verify(ctx context.Context, req task.VerifyRequest) (domain.VerifyResult, error) {
	m.record("Verify")
	if m.VerifyFn != nil {
		return m.VerifyFn(ctx, req)
	}
	return domain.VerifyResult{}, nil
}

// Repair implements task.Executor
func (m *Executor) Repair(ctx context.Context, req task.RepairRequest) (domain.RepairResult, error) {
	m.record("Repair")
	if m.RepairFn != nil {
		return m.RepairFn(ctx, req)
	}
	return domain.RepairResult{Requested: len(req.Files), Repaired: len(req.Files)}, nil
}

// FetchInstaller implements task.Executor
func (m *Executor) FetchInstaller(ctx context.Context, req task.InstallerRequest) (domain.InstallerResult, error) {
	m.record("FetchInstaller")
	if m.FetchInstallerFn != nil {
		return m.FetchInstallerFn(ctx, req)
	}
	return domain.InstallerResult{}, nil
}

// Cancel implements task.Executor
func (m *Executor) Cancel(ctx context.Context, folder string) error {
	m.record("Cancel")
	if m.CancelFn != nil {
		return m.CancelFn(ctx, folder)
	}
	return nil
}

var _ task.Executor = (*Executor)(nil)
