package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// A config.yaml in the working directory is read when present, but the
	// server runs fine without one.
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix("DOCKET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The conventional DATABASE_URL wins over everything else, so the
	// server runs unmodified on platforms that inject it.
	if err := v.BindEnv("database.url", "DATABASE_URL", "DOCKET_DATABASE_URL"); err != nil {
		return nil, fmt.Errorf("failed to bind database url: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers a default for every known key. Registering the key
// is what lets AutomaticEnv pick the value up during Unmarshal, so even
// empty-by-default keys appear here.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.cors_allowed_origins", []string{"*"})
	v.SetDefault("server.shutdown_timeout_seconds", 5)

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 25)
	v.SetDefault("database.conn_max_lifetime_minutes", 5)
	v.SetDefault("database.migrations_dir", "migrations")

	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("auth.password_min_length", 1)
	v.SetDefault("auth.session_ttl_minutes", 1440)
	v.SetDefault("auth.rate_limit_per_minute", 30)
	v.SetDefault("auth.rate_limit_burst", 10)

	v.SetDefault("maintenance.session_reaper_enabled", true)
	v.SetDefault("maintenance.session_reaper_interval_minutes", 60)
}
