package task

import "errors"

var (
	// ErrNoRepairFiles is returned by the repair strategy when neither the
	// description nor a matching verification outcome names any file.
	ErrNoRepairFiles = errors.New("no files to repair")

	// ErrMissingDependency is returned by NewOrchestrator when a required
	// collaborator is nil.
	ErrMissingDependency = errors.New("missing orchestrator dependency")

	// ErrUnknownKind is returned for a task kind that has no strategy.
	ErrUnknownKind = errors.New("unknown task kind")
)
