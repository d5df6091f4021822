// Package config provides centralized configuration management.
//
// Configuration can be loaded from:
//  1. YAML file (config.yaml)
//  2. Environment variables (fallback)
//
// Example usage:
//
//	cfg := config.LoadOrEnv()
//	baseURL := cfg.Firefly.BaseURL
//	window := cfg.Matcher.MaxBusinessDays
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the entire application configuration
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Firefly       FireflyConfig       `yaml:"firefly"`
	Matcher       MatcherConfig       `yaml:"matcher"`
	Jobs          JobsConfig          `yaml:"jobs"`
	Storage       StorageConfig       `yaml:"storage"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// FireflyConfig holds Firefly III API settings
type FireflyConfig struct {
	BaseURL        string `yaml:"base_url"`
	Token          string `yaml:"token"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	RetryMax       int    `yaml:"retry_max"`
}

// Timeout returns the per-request timeout as a duration.
func (f FireflyConfig) Timeout() time.Duration {
	if f.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(f.TimeoutSeconds) * time.Second
}

// MatcherConfig holds default matching parameters. The business-day
// window is a search-time parameter; this is only the default when a
// request doesn't specify one.
type MatcherConfig struct {
	MaxBusinessDays int `yaml:"max_business_days"`
	MaxAlternatives int `yaml:"max_alternatives"`
}

// JobsConfig holds merge job tracking settings
type JobsConfig struct {
	CleanupIntervalMinutes int `yaml:"cleanup_interval_minutes"`
	RetentionMinutes       int `yaml:"retention_minutes"`
	MaxConcurrent          int `yaml:"max_concurrent"`
}

// CleanupInterval returns the eviction scan interval as a duration.
func (j JobsConfig) CleanupInterval() time.Duration {
	if j.CleanupIntervalMinutes <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(j.CleanupIntervalMinutes) * time.Minute
}

// Retention returns how long finished jobs stay pollable.
func (j JobsConfig) Retention() time.Duration {
	if j.RetentionMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(j.RetentionMinutes) * time.Minute
}

// StorageConfig holds database configuration
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
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

// Load reads and parses the config file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables (e.g., ${FIREFLY_TOKEN})
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// LoadFromEnv loads configuration from environment variables only
func LoadFromEnv() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Port: getEnvInt("PORT", 8080),
		},
		Firefly: FireflyConfig{
			BaseURL:        os.Getenv("FIREFLY_BASE_URL"),
			Token:          os.Getenv("FIREFLY_TOKEN"),
			TimeoutSeconds: getEnvInt("FIREFLY_TIMEOUT_SECONDS", 30),
			RetryMax:       getEnvInt("FIREFLY_RETRY_MAX", 2),
		},
		Matcher: MatcherConfig{
			MaxBusinessDays: getEnvInt("MATCH_MAX_BUSINESS_DAYS", 5),
			MaxAlternatives: getEnvInt("MATCH_MAX_ALTERNATIVES", 5),
		},
		Jobs: JobsConfig{
			CleanupIntervalMinutes: getEnvInt("JOB_CLEANUP_INTERVAL_MINUTES", 5),
			RetentionMinutes:       getEnvInt("JOB_RETENTION_MINUTES", 60),
			MaxConcurrent:          getEnvInt("JOB_MAX_CONCURRENT", 4),
		},
		Storage: StorageConfig{
			DatabasePath: getEnv("MERGE_DB_PATH", "merge_history.db"),
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "text"),
			},
		},
	}

	cfg.applyDefaults()
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

// applyDefaults fills zero values with working defaults.
func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	if c.Matcher.MaxBusinessDays == 0 {
		c.Matcher.MaxBusinessDays = 5
	}
	if c.Matcher.MaxAlternatives == 0 {
		c.Matcher.MaxAlternatives = 5
	}
	if c.Observability.Logging.Level == "" {
		c.Observability.Logging.Level = "info"
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
