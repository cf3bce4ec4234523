package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// envPrefix is the prefix for all configuration environment variables,
// e.g. ROSTER_SERVER_PORT or ROSTER_DATABASE_URL.
const envPrefix = "ROSTER"

// Load reads configuration from an optional YAML file and from environment
// variables. Environment variables take precedence over file values, which
// take precedence over defaults. configPath may be empty, in which case only
// defaults and environment variables apply.
// Returns a populated Config or an error if loading or validation fails.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("query.default_limit", 10)
	v.SetDefault("query.max_limit", 100)

	// Optional config file
	v.SetConfigType("yaml")
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("failed to read config file %q: %w", configPath, err)
			}
		}
	}

	// Environment variables: ROSTER_ prefix, dots become underscores.
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv alone does not surface env-only keys through Unmarshal,
	// so bind the known keys explicitly.
	for _, key := range []string{
		"server.port",
		"server.log_level",
		"database.url",
		"query.default_limit",
		"query.max_limit",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind environment variable for %q: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}
