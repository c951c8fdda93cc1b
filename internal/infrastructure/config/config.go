// Package config provides centralized configuration management.
//
// Configuration can be loaded from:
//  1. YAML file (config.yaml)
//  2. Environment variables (fallback)
//
// Example usage:
//
//	cfg := config.LoadOrEnv()
//	client := agriapi.NewClient(cfg.Collaborator.BaseURL, cfg.Collaborator.Timeout())
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the entire application configuration
type Config struct {
	Collaborator  CollaboratorConfig  `yaml:"collaborator"`
	API           APIConfig           `yaml:"api"`
	Exports       ExportsConfig       `yaml:"exports"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// CollaboratorConfig points at the agricultural data service
type CollaboratorConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	// Offline skips the optimizer and splits land evenly.
	Offline bool `yaml:"offline"`
}

// Timeout returns the per-call timeout.
func (c CollaboratorConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return DefaultTimeoutSeconds * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// APIConfig holds HTTP API settings
type APIConfig struct {
	Port                 int      `yaml:"port"`
	AllowedOrigins       []string `yaml:"allowed_origins"`
	SessionIdleMinutes   int      `yaml:"session_idle_minutes"`
	SettleTimeoutSeconds int      `yaml:"settle_timeout_seconds"`
}

// SessionIdle is how long an untouched session is kept.
func (c APIConfig) SessionIdle() time.Duration {
	if c.SessionIdleMinutes <= 0 {
		return DefaultSessionIdleMinutes * time.Minute
	}
	return time.Duration(c.SessionIdleMinutes) * time.Minute
}

// SettleTimeout bounds how long a report request waits for pending quotes.
func (c APIConfig) SettleTimeout() time.Duration {
	if c.SettleTimeoutSeconds <= 0 {
		return DefaultSettleTimeoutSeconds * time.Second
	}
	return time.Duration(c.SettleTimeoutSeconds) * time.Second
}

// ExportsConfig selects where exported reports are written
type ExportsConfig struct {
	Driver string   `yaml:"driver"` // fs, s3 or memory
	Dir    string   `yaml:"dir"`
	S3     S3Config `yaml:"s3"`
}

// S3Config holds S3 export settings
type S3Config struct {
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Prefix    string `yaml:"prefix"`
	Endpoint  string `yaml:"endpoint"`
	PathStyle bool   `yaml:"path_style"`
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Defaults
const (
	DefaultBaseURL              = "http://localhost:5000"
	DefaultTimeoutSeconds       = 30
	DefaultPort                 = 8085
	DefaultSessionIdleMinutes   = 30
	DefaultSettleTimeoutSeconds = 30
	DefaultExportDriver         = "fs"
	DefaultExportDir            = "./exports"
)

// Load reads and parses the config file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables (e.g., ${CROPPLAN_S3_BUCKET})
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// LoadFromEnv loads configuration from environment variables only
func LoadFromEnv() *Config {
	cfg := &Config{
		Collaborator: CollaboratorConfig{
			BaseURL:        getEnv("CROPPLAN_API_URL", DefaultBaseURL),
			TimeoutSeconds: getEnvInt("CROPPLAN_API_TIMEOUT_SECONDS", DefaultTimeoutSeconds),
			Offline:        getEnvBool("CROPPLAN_OFFLINE", false),
		},
		API: APIConfig{
			Port:                 getEnvInt("CROPPLAN_PORT", DefaultPort),
			AllowedOrigins:       getEnvList("CROPPLAN_ALLOWED_ORIGINS"),
			SessionIdleMinutes:   getEnvInt("CROPPLAN_SESSION_IDLE_MINUTES", DefaultSessionIdleMinutes),
			SettleTimeoutSeconds: getEnvInt("CROPPLAN_SETTLE_TIMEOUT_SECONDS", DefaultSettleTimeoutSeconds),
		},
		Exports: ExportsConfig{
			Driver: getEnv("CROPPLAN_EXPORT_DRIVER", DefaultExportDriver),
			Dir:    getEnv("CROPPLAN_EXPORT_DIR", DefaultExportDir),
			S3: S3Config{
				Bucket:    os.Getenv("CROPPLAN_S3_BUCKET"),
				Region:    os.Getenv("CROPPLAN_S3_REGION"),
				Prefix:    os.Getenv("CROPPLAN_S3_PREFIX"),
				Endpoint:  os.Getenv("CROPPLAN_S3_ENDPOINT"),
				PathStyle: getEnvBool("CROPPLAN_S3_PATH_STYLE", false),
			},
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "text"),
			},
		},
	}
	return cfg
}

// LoadOrEnv tries to load from config.yaml, falls back to environment variables
func LoadOrEnv() *Config {
	return LoadOrEnvWithPath("config.yaml")
}

// LoadOrEnvWithPath tries to load from specified path, falls back to environment variables
func LoadOrEnvWithPath(path string) *Config {
	if cfg, err := Load(path); err == nil {
		return cfg
	}
	return LoadFromEnv()
}

func (c *Config) applyDefaults() {
	if c.Collaborator.BaseURL == "" {
		c.Collaborator.BaseURL = DefaultBaseURL
	}
	if c.API.Port == 0 {
		c.API.Port = DefaultPort
	}
	if c.Exports.Driver == "" {
		c.Exports.Driver = DefaultExportDriver
	}
	if c.Exports.Dir == "" {
		c.Exports.Dir = DefaultExportDir
	}
	if c.Observability.Logging.Level == "" {
		c.Observability.Logging.Level = "info"
	}
	if c.Observability.Logging.Format == "" {
		c.Observability.Logging.Format = "text"
	}
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getEnvInt retrieves an integer environment variable with a fallback default
func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var result int
		if _, err := fmt.Sscanf(val, "%d", &result); err == nil {
			return result
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes":
		return true
	case "0", "false", "no":
		return false
	}
	return fallback
}

// getEnvList splits a comma-separated variable
func getEnvList(key string) []string {
	val := os.Getenv(key)
	if val == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
