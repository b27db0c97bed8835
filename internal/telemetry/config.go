// Package telemetry sends opt-in anonymous usage events.
// Nothing leaves the machine unless telemetry is enabled and an API key is set.
package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// ConfigFileName is the name of the file holding the anonymous install id.
const ConfigFileName = "telemetry.json"

// Config holds the telemetry state for one installation.
type Config struct {
	// Enabled mirrors the telemetry.enabled setting.
	Enabled bool `json:"-"`

	// AnonymousID is a random UUID generated once per data directory.
	AnonymousID string `json:"anonymous_id"`
}

// IsEnabled returns true if telemetry is currently enabled.
func (c *Config) IsEnabled() bool {
	return c != nil && c.Enabled
}

// LoadConfig reads the install id from dir, creating it on first use.
func LoadConfig(dir string, enabled bool) (*Config, error) {
	cfg := &Config{Enabled: enabled}
	path := filepath.Join(dir, ConfigFileName)

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse telemetry file: %w", err)
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("read telemetry file: %w", err)
	}

	if cfg.AnonymousID != "" {
		return cfg, nil
	}
	cfg.AnonymousID = uuid.New().String()
	if !enabled {
		return cfg, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create telemetry directory: %w", err)
	}
	out, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal telemetry file: %w", err)
	}
	if err := os.WriteFile(path, out, 0o600); err != nil {
		return nil, fmt.Errorf("write telemetry file: %w", err)
	}
	return cfg, nil
}
