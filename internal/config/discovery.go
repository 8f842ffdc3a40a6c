package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnvConfigDir overrides config directory discovery.
const EnvConfigDir = "FFGRAPH_CONFIG_DIR"

// DiscoverConfigDir finds the config directory by checking standard locations.
// Priority order: $FFGRAPH_CONFIG_DIR, ~/.config/ffgraph, /etc/ffgraph,
// ./config.yaml.
func DiscoverConfigDir() (string, error) {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		if _, err := os.Stat(dir); err == nil {
			return dir, nil
		}
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		userConfigDir := filepath.Join(homeDir, ".config", "ffgraph")
		if _, err := os.Stat(userConfigDir); err == nil {
			return userConfigDir, nil
		}
	}

	systemConfigDir := "/etc/ffgraph"
	if _, err := os.Stat(systemConfigDir); err == nil {
		return systemConfigDir, nil
	}

	if _, err := os.Stat("./config.yaml"); err == nil {
		return ".", nil
	}

	return "", fmt.Errorf("no config found (checked: $%s, ~/.config/ffgraph, /etc/ffgraph, ./config.yaml)", EnvConfigDir)
}

// LoadDiscovered loads the config at path, or discovers one when path is
// empty. When nothing is found it returns Defaults rooted at the working
// directory.
func LoadDiscovered(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}
	dir, err := DiscoverConfigDir()
	if err != nil {
		cfg := Defaults()
		wd, wdErr := os.Getwd()
		if wdErr != nil {
			return nil, fmt.Errorf("resolve working directory: %w", wdErr)
		}
		cfg.Dir = wd
		return cfg, nil
	}
	if !fileExists(filepath.Join(dir, "config.yaml")) {
		cfg := Defaults()
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve config dir %q: %w", dir, err)
		}
		cfg.Dir = abs
		return cfg, nil
	}
	return Load(dir)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
