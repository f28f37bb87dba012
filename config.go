package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const appDirName = "jobtracker"

type uiConfig struct {
	Theme     string `yaml:"theme,omitempty"`
	LastTable string `yaml:"last_table,omitempty"`
	LastData  string `yaml:"last_data,omitempty"`
	ShowLogs  *bool  `yaml:"show_logs,omitempty"`
}

// loadUIConfig reads ui.yaml from dir. A missing or unreadable file yields an
// empty config; the returned path is where saveUIConfig should write.
func loadUIConfig(dir string) (*uiConfig, string) {
	path := filepath.Join(dir, "ui.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		return &uiConfig{}, path
	}
	var cfg uiConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return &uiConfig{}, path
	}
	cfg.Theme = strings.TrimSpace(cfg.Theme)
	cfg.LastTable = strings.TrimSpace(cfg.LastTable)
	cfg.LastData = strings.TrimSpace(cfg.LastData)
	return &cfg, path
}

func saveUIConfig(cfg *uiConfig, path string) error {
	if cfg == nil || strings.TrimSpace(path) == "" {
		return errors.New("ui config path is empty")
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

func (c *uiConfig) logsVisible() bool {
	if c == nil || c.ShowLogs == nil {
		return true
	}
	return *c.ShowLogs
}

// resolveConfigDir returns override when set, else the per-user config
// directory for jobtracker.
func resolveConfigDir(override string) string {
	if dir := strings.TrimSpace(override); dir != "" {
		return dir
	}
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		home, _ := os.UserHomeDir()
		if home == "" {
			return filepath.Join(".", "."+appDirName)
		}
		return filepath.Join(home, ".config", appDirName)
	}
	return filepath.Join(dir, appDirName)
}
