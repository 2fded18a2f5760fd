// Package config handles configuration loading, parsing, and validation
// from defaults, an optional YAML file, and LAUNCHPAD_* environment variables.
// It provides type-safe access to the settings the daemon's components need
// while keeping configuration details out of the orchestration logic.
package config
