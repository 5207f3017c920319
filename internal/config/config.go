package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"      validate:"required"`
	Database    DatabaseConfig    `mapstructure:"database"    validate:"required"`
	Auth        AuthConfig        `mapstructure:"auth"        validate:"required"`
	Maintenance MaintenanceConfig `mapstructure:"maintenance" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`

	// CORSAllowedOrigins lists the origins the browser may call the API
	// from. The default allows all origins, which suits local development.
	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins"`

	// ShutdownTimeoutSeconds bounds how long a graceful shutdown waits for
	// in-flight requests before the server is torn down.
	ShutdownTimeoutSeconds int `mapstructure:"shutdown_timeout_seconds" validate:"required,gte=1,lte=300"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL                    string `mapstructure:"url"                       validate:"required,url"`
	MaxOpenConns           int    `mapstructure:"max_open_conns"            validate:"required,gte=1"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns"            validate:"gte=0"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes" validate:"required,gte=1"`

	// MigrationsDir is where goose looks for SQL migration files.
	MigrationsDir string `mapstructure:"migrations_dir" validate:"required"`
}

// ConnMaxLifetime returns the connection lifetime as a duration.
func (d DatabaseConfig) ConnMaxLifetime() time.Duration {
	return time.Duration(d.ConnMaxLifetimeMinutes) * time.Minute
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	// BcryptCost controls the work factor for password hashing. Higher is
	// slower and stronger; bcrypt's valid range is 4 to 31.
	BcryptCost int `mapstructure:"bcrypt_cost" validate:"required,gte=4,lte=31"`

	// PasswordMinLength is the minimum accepted password length at
	// registration. The upper bound is bcrypt's 72-byte input limit.
	PasswordMinLength int `mapstructure:"password_min_length" validate:"required,gte=1,lte=72"`

	// SessionTTLMinutes is how long an issued session stays valid.
	SessionTTLMinutes int `mapstructure:"session_ttl_minutes" validate:"required,gt=0"`

	// RateLimitPerMinute and RateLimitBurst throttle the unauthenticated
	// register and login endpoints per client address.
	RateLimitPerMinute int `mapstructure:"rate_limit_per_minute" validate:"required,gte=1"`
	RateLimitBurst     int `mapstructure:"rate_limit_burst"      validate:"required,gte=1"`
}

// SessionTTL returns the session lifetime as a duration.
func (a AuthConfig) SessionTTL() time.Duration {
	return time.Duration(a.SessionTTLMinutes) * time.Minute
}

// MaintenanceConfig controls the background maintenance work the server
// runs alongside request handling.
type MaintenanceConfig struct {
	// SessionReaperEnabled turns the periodic deletion of expired and
	// revoked sessions on or off.
	SessionReaperEnabled bool `mapstructure:"session_reaper_enabled"`

	// SessionReaperIntervalMinutes is how often the reaper runs.
	SessionReaperIntervalMinutes int `mapstructure:"session_reaper_interval_minutes" validate:"required,gte=1"`
}

// SessionReaperInterval returns the reaper cadence as a duration.
func (m MaintenanceConfig) SessionReaperInterval() time.Duration {
	return time.Duration(m.SessionReaperIntervalMinutes) * time.Minute
}
