package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Autosave AutosaveConfig `mapstructure:"autosave" validate:"required"`
	Client   ClientConfig   `mapstructure:"client"   validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	// AllowedOrigins lists the web and app origins that may call the API with credentials.
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL         string `mapstructure:"url"          validate:"required,url"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

// AuthConfig contains the settings used to validate session tokens.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	SessionCookie        string `mapstructure:"session_cookie"         validate:"required"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
}

// AutosaveConfig controls how editor sessions coalesce and report saves.
type AutosaveConfig struct {
	// Debounce is the quiet period after the last edit before a save fires.
	Debounce time.Duration `mapstructure:"debounce"     validate:"required,gt=0"`
	// SettleAfter is how long the "saved" status is shown before returning to idle.
	SettleAfter time.Duration `mapstructure:"settle_after" validate:"gte=0"`
}

// ClientConfig configures the SDK client used by authoring tools.
type ClientConfig struct {
	BaseURL    string        `mapstructure:"base_url"    validate:"omitempty,url"`
	Timeout    time.Duration `mapstructure:"timeout"     validate:"gte=0"`
	Retries    int           `mapstructure:"retries"     validate:"gte=0,lte=10"`
	MinTimeout time.Duration `mapstructure:"min_timeout" validate:"gt=0"`
	MaxTimeout time.Duration `mapstructure:"max_timeout" validate:"gtefield=MinTimeout"`
	Factor     float64       `mapstructure:"factor"      validate:"gte=1"`
}
