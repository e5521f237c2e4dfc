package config

import (
	"os"
	"path/filepath"
	"time"
)

// defaultHTTPTimeout bounds every Drive and token endpoint request. A stuck
// remote call blocks the calling request for at most this long.
const defaultHTTPTimeout = 30 * time.Second

// appDirName is the subdirectory used under the user config and data dirs.
const appDirName = "drivestore"

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			DatabasePath: DefaultDatabasePath(),
			LocalDir:     "storage",
			LocalBaseURL: "/storage",
		},
		Logging: LoggingConfig{
			LogLevel:  "info",
			LogFormat: "auto",
		},
		Network: NetworkConfig{
			Timeout: defaultHTTPTimeout.String(),
		},
	}
}

// DefaultConfigPath returns the platform config file location,
// e.g. ~/.config/drivestore/config.toml on Linux.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", appDirName, "config.toml")
	}

	return filepath.Join(dir, appDirName, "config.toml")
}

// DefaultDatabasePath returns the platform location for the credential
// database, e.g. ~/.local/share/drivestore/credentials.db on Linux.
func DefaultDatabasePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", appDirName, "credentials.db")
	}

	return filepath.Join(dir, appDirName, "credentials.db")
}
