package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Load reads and parses a TOML config file, applies defaults for unset
// fields, and validates the result.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault reads a TOML config file if it exists, otherwise returns a
// Config populated with all default values. Supports the zero-config
// first-run experience; setup will complain about the missing OAuth client
// registration when it is actually needed.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}

	return Load(path)
}

// Resolve loads configuration applying the override chain:
// defaults -> config file -> environment variables.
// cliConfigPath, when non-empty, takes precedence over the env and default
// config file locations.
func Resolve(cliConfigPath string) (*Config, error) {
	env := ReadEnvOverrides()

	path := DefaultConfigPath()
	if env.ConfigPath != "" {
		path = env.ConfigPath
	}

	if cliConfigPath != "" {
		path = cliConfigPath
	}

	cfg, err := LoadOrDefault(path)
	if err != nil {
		return nil, err
	}

	env.Apply(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validLogLevels enumerates the accepted log_level values.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validLogFormats enumerates the accepted log_format values.
var validLogFormats = map[string]bool{
	"auto": true,
	"text": true,
	"json": true,
}

// Validate checks a Config for values that would misbehave at runtime.
// Credential fields are not required here — commands that need them check
// at the point of use so read-only commands work without a registration.
func Validate(cfg *Config) error {
	if !validLogLevels[cfg.Logging.LogLevel] {
		return fmt.Errorf("invalid log_level %q (want debug, info, warn, or error)", cfg.Logging.LogLevel)
	}

	if !validLogFormats[cfg.Logging.LogFormat] {
		return fmt.Errorf("invalid log_format %q (want auto, text, or json)", cfg.Logging.LogFormat)
	}

	if cfg.Network.Timeout != "" {
		d, err := time.ParseDuration(cfg.Network.Timeout)
		if err != nil {
			return fmt.Errorf("invalid network timeout %q: %w", cfg.Network.Timeout, err)
		}

		if d <= 0 {
			return fmt.Errorf("network timeout must be positive, got %q", cfg.Network.Timeout)
		}
	}

	if cfg.Storage.DatabasePath == "" {
		return errors.New("storage database_path must not be empty")
	}

	if cfg.Storage.LocalDir == "" {
		return errors.New("storage local_dir must not be empty")
	}

	return nil
}
