package config

import "os"

// Environment variable names recognized by ReadEnvOverrides.
const (
	envConfigPath   = "DRIVESTORE_CONFIG"
	envClientID     = "DRIVESTORE_CLIENT_ID"
	envClientSecret = "DRIVESTORE_CLIENT_SECRET" //nolint:gosec // env var name, not a credential
	envRootFolder   = "DRIVESTORE_ROOT_FOLDER_ID"
	envDatabasePath = "DRIVESTORE_DATABASE_PATH"
	envLogLevel     = "DRIVESTORE_LOG_LEVEL"
)

// EnvOverrides holds values read from the environment. Empty fields mean
// the variable was unset and the config file value stands.
type EnvOverrides struct {
	ConfigPath   string
	ClientID     string
	ClientSecret string
	RootFolderID string
	DatabasePath string
	LogLevel     string
}

// ReadEnvOverrides reads all recognized DRIVESTORE_* variables.
func ReadEnvOverrides() EnvOverrides {
	return EnvOverrides{
		ConfigPath:   os.Getenv(envConfigPath),
		ClientID:     os.Getenv(envClientID),
		ClientSecret: os.Getenv(envClientSecret),
		RootFolderID: os.Getenv(envRootFolder),
		DatabasePath: os.Getenv(envDatabasePath),
		LogLevel:     os.Getenv(envLogLevel),
	}
}

// Apply overlays non-empty override values onto cfg.
func (e EnvOverrides) Apply(cfg *Config) {
	if e.ClientID != "" {
		cfg.Google.ClientID = e.ClientID
	}

	if e.ClientSecret != "" {
		cfg.Google.ClientSecret = e.ClientSecret
	}

	if e.RootFolderID != "" {
		cfg.Google.RootFolderID = e.RootFolderID
	}

	if e.DatabasePath != "" {
		cfg.Storage.DatabasePath = e.DatabasePath
	}

	if e.LogLevel != "" {
		cfg.Logging.LogLevel = e.LogLevel
	}
}
