package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Load reads configuration from a config.yaml file, or from config.yaml
// inside a directory. Unset fields keep their Defaults values and ${VAR}
// references are replaced from the environment.
func Load(configPath string) (*Config, error) {
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path %q: %w", configPath, err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("config file not found: %s\n"+
			"Hint: Check the path or run with --config flag", absPath)
	}
	if info.IsDir() {
		absPath = filepath.Join(absPath, "config.yaml")
		if _, err := os.Stat(absPath); err != nil {
			return nil, fmt.Errorf("directory provided but config.yaml not found: %s", absPath)
		}
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", absPath, err)
	}
	cfg.Dir = filepath.Dir(absPath)
	return cfg, nil
}

// Parse decodes configuration bytes over Defaults and validates them.
func Parse(data []byte) (*Config, error) {
	cfg := Defaults()
	if err := yaml.Unmarshal([]byte(interpolateEnv(string(data))), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Resolve returns path made absolute against the config directory.
func (c *Config) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || c.Dir == "" {
		return path
	}
	return filepath.Join(c.Dir, path)
}

// PipelinesRoot is the directory whose pipelines/ subdirectory holds
// pipeline files.
func (c *Config) PipelinesRoot() string {
	if c.PipelinesDir == "" {
		return c.Dir
	}
	return c.Resolve(c.PipelinesDir)
}

func interpolateEnv(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if value, exists := os.LookupEnv(varName); exists {
			return value
		}
		// Left in place so validation can report it.
		return match
	})
}

func validate(cfg *Config) error {
	switch strings.ToLower(cfg.Service.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("service.log_level %q must be one of debug, info, warn, error", cfg.Service.LogLevel)
	}
	switch strings.ToLower(cfg.Service.LogFormat) {
	case "json", "text":
	default:
		return fmt.Errorf("service.log_format %q must be json or text", cfg.Service.LogFormat)
	}
	if strings.TrimSpace(cfg.FFmpeg.Binary) == "" {
		return fmt.Errorf("ffmpeg.binary is required")
	}
	if cfg.Cache.Enabled && strings.TrimSpace(cfg.Cache.Path) == "" {
		return fmt.Errorf("cache.path is required when the cache is enabled")
	}
	if strings.TrimSpace(cfg.API.Listen) == "" {
		return fmt.Errorf("api.listen is required")
	}
	if cfg.API.ReadTimeout < 0 || cfg.API.WriteTimeout < 0 {
		return fmt.Errorf("api timeouts must not be negative")
	}
	if envVarPattern.MatchString(cfg.API.APIKey) {
		return fmt.Errorf("api.api_key references an unset environment variable")
	}
	return nil
}
