/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package types

// AppConfig represents the complete application configuration
type AppConfig struct {
	Verbose   bool            `mapstructure:"verbose"`
	Config    string          `mapstructure:"config"`
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Data      DataConfig      `mapstructure:"data" validate:"required"`
	Rewards   RewardsConfig   `mapstructure:"rewards" validate:"required"`
	Images    ImagesConfig    `mapstructure:"images"`
	Watch     WatchConfig     `mapstructure:"watch"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Port           int      `mapstructure:"port" validate:"required,min=1,max=65535"`
	Host           string   `mapstructure:"host"`
	StaticDir      string   `mapstructure:"staticDir"`
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
	MaxBodyBytes   int64    `mapstructure:"maxBodyBytes" validate:"min=0"`
	// ShutdownTimeoutSeconds bounds graceful shutdown on SIGINT/SIGTERM
	ShutdownTimeoutSeconds int `mapstructure:"shutdownTimeoutSeconds" validate:"omitempty,min=1,max=300"`
}

// DataConfig holds data storage configuration
type DataConfig struct {
	File       string `mapstructure:"file" validate:"required"`
	Format     string `mapstructure:"format" validate:"required,oneof=json yaml toml"`
	Backend    string `mapstructure:"backend" validate:"required,oneof=file sqlite"`
	UploadsDir string `mapstructure:"uploadsDir" validate:"required"`
	Seed       bool   `mapstructure:"seed"`
}

// StoreConfig returns the map passed to TaskStore.Initialize.
func (d DataConfig) StoreConfig() map[string]string {
	return map[string]string{
		"dataFile":       d.File,
		"dataFileFormat": d.Format,
	}
}

// RewardsConfig holds the money settings
type RewardsConfig struct {
	Pool         float64 `mapstructure:"pool" validate:"gt=0"`
	Bonus        float64 `mapstructure:"bonus" validate:"min=0"`
	RequireProof bool    `mapstructure:"requireProof"`
}

// ImagesConfig holds proof upload limits
type ImagesConfig struct {
	MaxBytes int `mapstructure:"maxBytes" validate:"omitempty,min=1"`
}

// WatchConfig toggles the data file watcher
type WatchConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// TelemetryConfig holds opt-in usage telemetry settings
type TelemetryConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	APIKey   string `mapstructure:"apiKey"`
	Endpoint string `mapstructure:"endpoint" validate:"omitempty,url"`
}

// LogConfig selects the log handler
type LogConfig struct {
	Format string `mapstructure:"format" validate:"omitempty,oneof=text json"`
}
