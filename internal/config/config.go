// Package config implements TOML configuration loading, validation, and
// platform path resolution for drivestore. Layering is defaults -> config
// file -> environment variables, with environment winning so deployments can
// inject the OAuth client secret without writing it to disk.
package config

import "time"

// Config is the top-level structure parsed from a TOML file.
type Config struct {
	Google  GoogleConfig  `toml:"google"`
	Storage StorageConfig `toml:"storage"`
	Logging LoggingConfig `toml:"logging"`
	Network NetworkConfig `toml:"network"`
}

// GoogleConfig holds the OAuth client registration and the Drive folder all
// managed folders are created under. An empty RootFolderID means folders are
// created at the Drive root.
type GoogleConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RootFolderID string `toml:"root_folder_id"`
}

// StorageConfig controls the credential database and the local fallback
// store that absorbs uploads when Drive is unreachable.
type StorageConfig struct {
	// DatabasePath is the SQLite file holding the credential record.
	DatabasePath string `toml:"database_path"`
	// LocalDir is the directory fallback uploads are written under.
	LocalDir string `toml:"local_dir"`
	// LocalBaseURL is the public URL prefix that maps onto LocalDir,
	// e.g. "/storage". Persisted URLs for fallback assets start with it.
	LocalBaseURL string `toml:"local_base_url"`
}

// LoggingConfig controls log output level and format.
// Format "auto" picks text on a terminal and JSON otherwise.
type LoggingConfig struct {
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
}

// NetworkConfig controls the HTTP client used for Drive and token requests.
type NetworkConfig struct {
	Timeout string `toml:"timeout"`
}

// HTTPTimeout parses the configured network timeout. Validate has already
// checked the value, so a parse failure here falls back to the default.
func (c *Config) HTTPTimeout() time.Duration {
	d, err := time.ParseDuration(c.Network.Timeout)
	if err != nil || d <= 0 {
		return defaultHTTPTimeout
	}

	return d
}
