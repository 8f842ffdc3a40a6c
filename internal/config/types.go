package config

import "time"

// Config represents the complete ffgraph configuration.
type Config struct {
	Service ServiceConfig `yaml:"service"`
	FFmpeg  FFmpegConfig  `yaml:"ffmpeg"`
	Cache   CacheConfig   `yaml:"cache"`
	API     APIConfig     `yaml:"api"`
	// PipelinesDir holds the pipelines/ directory; relative paths resolve
	// against Dir. Empty means Dir.
	PipelinesDir string `yaml:"pipelines_dir,omitempty"`

	// Dir is the directory the configuration was loaded from.
	Dir string `yaml:"-"`
}

// ServiceConfig defines logging and naming.
type ServiceConfig struct {
	Name      string `yaml:"name"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// FFmpegConfig names the binary compiled command lines start with.
type FFmpegConfig struct {
	Binary string `yaml:"binary"`
}

// CacheConfig defines the compile cache database.
type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// APIConfig defines HTTP compile service settings.
type APIConfig struct {
	Listen       string        `yaml:"listen"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	// APIKey, when set, is required as a bearer token on POST requests.
	APIKey string `yaml:"api_key,omitempty"`
}

// ChecksumManifest is the .checksums file written by Lock.
type ChecksumManifest struct {
	Version     int               `yaml:"version"`
	GeneratedAt string            `yaml:"generated_at"`
	Hashes      map[string]string `yaml:"hashes"`
}

// Defaults returns a Config with default values.
func Defaults() *Config {
	return &Config{
		Service: ServiceConfig{
			Name:      "ffgraph",
			LogLevel:  "info",
			LogFormat: "json",
		},
		FFmpeg: FFmpegConfig{
			Binary: "ffmpeg",
		},
		Cache: CacheConfig{
			Enabled: true,
			Path:    "./data/cache.db",
		},
		API: APIConfig{
			Listen:       "127.0.0.1:8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
	}
}
