// Package task coordinates the launcher's long-running host operations.
//
// An Orchestrator runs at most one task at a time against a host Executor,
// keeps the process-wide RunState in a Store, and turns every outcome into a
// state transition: done, error, or, when the host reports cancellation,
// paused or idle depending on whether a pause was requested for the exact
// task that was running. Paused tasks can be resumed as the same logical
// task, identified by Description.Identity.
package task
