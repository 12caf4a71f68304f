// Package project persists projects, preferences and custom sheet presets.
package project

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/piwi3910/PrintSheet/internal/model"
)

// DefaultConfigDir returns the default directory for application configuration.
// On all platforms this is ~/.printsheet/
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".printsheet")
}

// DefaultConfigPath returns the default path for the application config file.
func DefaultConfigPath() string {
	return ConfigPath(DefaultConfigDir())
}

// ConfigPath returns the config file inside dir.
func ConfigPath(dir string) string {
	return filepath.Join(dir, "config.json")
}

// SaveAppConfig persists an AppConfig to the given path as JSON.
// It creates any missing parent directories automatically.
func SaveAppConfig(path string, config model.AppConfig) error {
	return writeJSON(path, config)
}

// LoadAppConfig reads an AppConfig from the given path.
// If the file does not exist, it returns DefaultAppConfig with no error.
// Fields missing from the file keep their default values.
func LoadAppConfig(path string) (model.AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.DefaultAppConfig(), nil
		}
		return model.AppConfig{}, err
	}
	config := model.DefaultAppConfig()
	if err := json.Unmarshal(data, &config); err != nil {
		return model.AppConfig{}, err
	}
	normalizeConfig(&config)
	return config, nil
}

func normalizeConfig(c *model.AppConfig) {
	defaults := model.DefaultAppConfig()
	if c.RecentProjects == nil {
		c.RecentProjects = []string{}
	}
	if c.MaxHistory <= 0 {
		c.MaxHistory = defaults.MaxHistory
	}
	if c.DebounceMillis <= 0 {
		c.DebounceMillis = defaults.DebounceMillis
	}
	if c.DefaultDPI <= 0 {
		c.DefaultDPI = defaults.DefaultDPI
	}
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
