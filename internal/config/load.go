package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable the loader reads,
// e.g. LAUNCHPAD_SERVER_PORT.
const EnvPrefix = "LAUNCHPAD"

// DefaultEnglishMarkers and DefaultNativeMarkers are the cancellation markers
// used when configuration does not override them.
var (
	DefaultEnglishMarkers = []string{"cancel", "cancelled", "canceled", "abort", "aborted"}
	DefaultNativeMarkers  = []string{"已取消", "取消", "中止", "终止"}
)

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath(filepath.Join("$HOME", ".launchpad"))

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers a default for every key. Keys without a default are
// invisible to AutomaticEnv during Unmarshal, so optional settings get an
// explicit empty value.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 17891)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("host.api_url", "http://127.0.0.1:17890")
	v.SetDefault("host.events_url", "")
	v.SetDefault("host.events_namespace", "/")
	v.SetDefault("host.request_timeout", time.Duration(0))
	v.SetDefault("host.insecure_skip_verify", false)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_lifetime_minutes", 60*24)

	v.SetDefault("database.url", "")

	v.SetDefault("store.config_dir", filepath.Join(".", "games"))

	v.SetDefault("cache.game_config_ttl", 30*time.Second)
	v.SetDefault("cache.executable_ttl", 5*time.Minute)
	v.SetDefault("cache.games_ttl", time.Minute)
	v.SetDefault("cache.presets_ttl", 10*time.Minute)

	v.SetDefault("classifier.english_markers", DefaultEnglishMarkers)
	v.SetDefault("classifier.native_markers", DefaultNativeMarkers)
}
