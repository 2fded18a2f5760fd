package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server     ServerConfig     `mapstructure:"server" validate:"required"`
	Host       HostConfig       `mapstructure:"host" validate:"required"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Store      StoreConfig      `mapstructure:"store" validate:"required"`
	Cache      CacheConfig      `mapstructure:"cache" validate:"required"`
	Classifier ClassifierConfig `mapstructure:"classifier" validate:"required"`
}

// ServerConfig contains the control API listener settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// HostConfig describes how to reach the host process that executes
// downloads, verification and repairs, and that emits progress events.
type HostConfig struct {
	APIURL          string        `mapstructure:"api_url" validate:"required,url"`
	EventsURL       string        `mapstructure:"events_url" validate:"omitempty,url"`
	EventsNamespace string        `mapstructure:"events_namespace"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout" validate:"gte=0"`
	// InsecureSkipVerify disables certificate checks on the events socket,
	// for hosts serving a self-signed certificate on loopback.
	InsecureSkipVerify bool `mapstructure:"insecure_skip_verify"`
}

// AuthConfig protects the control API. An empty secret disables
// authentication, which is only sensible when listening on loopback.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret" validate:"omitempty,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"gt=0"`
}

// DatabaseConfig selects the Postgres game configuration store when URL is set.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"omitempty,url"`
}

// StoreConfig configures the YAML game configuration store used when no
// database is configured.
type StoreConfig struct {
	ConfigDir string `mapstructure:"config_dir" validate:"required"`
}

// CacheConfig holds the TTL for each cached host query.
type CacheConfig struct {
	GameConfigTTL time.Duration `mapstructure:"game_config_ttl" validate:"gt=0"`
	ExecutableTTL time.Duration `mapstructure:"executable_ttl" validate:"gt=0"`
	GamesTTL      time.Duration `mapstructure:"games_ttl" validate:"gt=0"`
	PresetsTTL    time.Duration `mapstructure:"presets_ttl" validate:"gt=0"`
}

// ClassifierConfig lists the words that mark a host error as cooperative
// cancellation. English markers are matched case-insensitively, native
// markers verbatim.
type ClassifierConfig struct {
	EnglishMarkers []string `mapstructure:"english_markers" validate:"required,min=1,dive,required"`
	NativeMarkers  []string `mapstructure:"native_markers" validate:"dive,required"`
}
