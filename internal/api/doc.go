// Package api exposes the launcher's control surface over HTTP: the run
// state, the task lifecycle actions and per-game settings. Handlers decode
// and validate requests, delegate to the orchestrator or the settings
// service, and map their errors to status codes.
package api
