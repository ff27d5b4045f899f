// Package config loads and validates application configuration.
package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Workspace WorkspaceConfig `mapstructure:"workspace" validate:"required"`
	Remote    RemoteConfig    `mapstructure:"remote"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
}

// DatabaseConfig contains the local store settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// WorkspaceConfig contains workspace-wide settings.
type WorkspaceConfig struct {
	// Timezone is the single local timezone all period intervals are
	// computed in, e.g. "Europe/Bucharest".
	Timezone string `mapstructure:"timezone" validate:"required"`
}

// RemoteConfig contains the remote mirror workspace settings. An empty
// base URL disables sync and gc's remote confirmation.
type RemoteConfig struct {
	BaseURL string `mapstructure:"base_url" validate:"omitempty,url"`
	Token   string `mapstructure:"token"`
	// TimeoutSeconds bounds each remote API call.
	TimeoutSeconds int `mapstructure:"timeout_seconds" validate:"gte=0"`
}
