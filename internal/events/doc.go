// Package events provides the in-process event bus used between the host
// bridge, the progress relay and the task notifier.
//
// Events are published on named channels (e.g. "download-progress") and
// delivered synchronously, in publish order, to the handlers subscribed to
// that channel. Publishers never learn which handlers exist, which keeps the
// orchestrator decoupled from both transport and presentation.
//
// The primary components are:
// - Event: a channel name plus a JSON payload
// - EventHandler: interface for components that consume events
// - EventEmitter: interface for components that publish events
// - InMemoryEventEmitter: the channel-keyed implementation of both sides
package events
