package app

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"trk-cli/internal/api"
)

// Config is the client configuration, loaded from a yaml file in the user
// config directory. Everything has a working default so a first run needs no
// file at all.
type Config struct {
	BaseURL   string `yaml:"base_url"`
	AccountID string `yaml:"account_id"`
	LogFile   string `yaml:"log_file"`
}

func DefaultConfig() Config {
	return Config{
		BaseURL: api.DefaultBaseURL,
	}
}

// LoadConfig reads the config file at path. A missing file yields the
// defaults; a present but malformed file is an error the caller reports.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = api.DefaultBaseURL
	}
	return cfg, nil
}

// SaveConfig writes cfg back to path, creating the directory if needed.
func SaveConfig(cfg Config, path string) error {
	if path == "" {
		return errors.New("no path provided for config")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// DefaultConfigPath is <user config dir>/trk/config.yml.
func DefaultConfigPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, "trk", "config.yml")
}
