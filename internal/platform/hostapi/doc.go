// Package hostapi is the JSON-over-HTTP client for the host process that
// performs downloads, verification and repairs. It implements the task
// executor and the settings service's read-only queries.
//
// Task calls block until the host finishes and carry no client-side
// timeout; only catalogue lookups are bounded by host.request_timeout.
package hostapi
