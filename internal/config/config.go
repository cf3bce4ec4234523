// Package config defines and loads the application configuration.
package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Query    QueryConfig    `mapstructure:"query"    validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// QueryConfig bounds the list-query interpretation layer.
// MaxLimit caps the page size a client may request; DefaultLimit is used
// when the limit parameter is absent or unparseable.
type QueryConfig struct {
	DefaultLimit int `mapstructure:"default_limit" validate:"required,gt=0"`
	MaxLimit     int `mapstructure:"max_limit"     validate:"required,gtefield=DefaultLimit"`
}
