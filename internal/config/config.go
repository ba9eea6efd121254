package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Audit     AuditConfig     `yaml:"audit"`
	Execution ExecutionConfig `yaml:"execution"`
	App       AppConfig       `yaml:"app"`
	Dialog    DialogConfig    `yaml:"dialog"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig controls the HTTP listener. AllowedOrigins lists the browser
// origins that may call the API; "*" allows any origin.
type ServerConfig struct {
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	PathPrefix     string   `yaml:"path_prefix"`
	MaxBodyBytes   int64    `yaml:"max_body_bytes"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// AuthConfig holds the shared secret the UI process presents. An empty token
// disables authentication, which is only sensible on a loopback listener.
type AuthConfig struct {
	Token string `yaml:"token"`
}

// AuditConfig controls the invocation log. Rows older than RetentionDays are
// pruned; zero or negative keeps them forever. Unset means 30.
type AuditConfig struct {
	Enabled       *bool `yaml:"enabled"`
	RetentionDays *int  `yaml:"retention_days"`
}

type ExecutionConfig struct {
	// Timeout in seconds for allow-listed commands. Zero means no timeout.
	Timeout       int `yaml:"timeout"`
	MaxOutputSize int `yaml:"max_output_size"`
}

type AppConfig struct {
	Identifier string `yaml:"identifier"`
	DataDir    string `yaml:"data_dir"`
}

type DialogConfig struct {
	Enabled *bool  `yaml:"enabled"`
	Title   string `yaml:"title"`
}

type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute"`
	Burst             int `yaml:"burst"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// GetTimeout returns the command timeout as a duration.
func (c *ExecutionConfig) GetTimeout() time.Duration {
	if c.Timeout <= 0 {
		return 0
	}
	return time.Duration(c.Timeout) * time.Second
}

// IsEnabled reports whether invocations are recorded.
func (c *AuditConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// GetRetention returns how long invocations are kept. Zero means forever.
func (c *AuditConfig) GetRetention() time.Duration {
	if c.RetentionDays == nil || *c.RetentionDays <= 0 {
		return 0
	}
	return time.Duration(*c.RetentionDays) * 24 * time.Hour
}

// IsEnabled reports whether the native save dialog should be used.
func (c *DialogConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path) // #nosec G304 - config path comes from the operator
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	}

	setDefaults(&cfg)

	return &cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var cfg Config
	setDefaults(&cfg)
	return &cfg
}

func setDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "127.0.0.1"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 7381
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = 16 << 20
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"tauri://localhost", "http://tauri.localhost", "https://tauri.localhost"}
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "./data/hostbridge.db"
	}
	if cfg.Audit.RetentionDays == nil {
		days := 30
		cfg.Audit.RetentionDays = &days
	}
	if cfg.Execution.MaxOutputSize == 0 {
		cfg.Execution.MaxOutputSize = 10485760
	}
	if cfg.App.Identifier == "" {
		cfg.App.Identifier = "com.hostbridge.app"
	}
	if cfg.Dialog.Title == "" {
		cfg.Dialog.Title = "Save File"
	}
	if cfg.RateLimit.RequestsPerMinute == 0 {
		cfg.RateLimit.RequestsPerMinute = 600
	}
	if cfg.RateLimit.Burst == 0 {
		cfg.RateLimit.Burst = 60
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
}
