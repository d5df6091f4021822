package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
  allowed_origins:
    - https://merge.example.com
firefly:
  base_url: https://firefly.example.com
  token: secret-token
  timeout_seconds: 10
  retry_max: 3
matcher:
  max_business_days: 3
  max_alternatives: 2
jobs:
  cleanup_interval_minutes: 1
  retention_minutes: 30
  max_concurrent: 2
storage:
  database_path: /tmp/merge.db
observability:
  logging:
    level: debug
    format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"https://merge.example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "https://firefly.example.com", cfg.Firefly.BaseURL)
	assert.Equal(t, "secret-token", cfg.Firefly.Token)
	assert.Equal(t, 10*time.Second, cfg.Firefly.Timeout())
	assert.Equal(t, 3, cfg.Firefly.RetryMax)
	assert.Equal(t, 3, cfg.Matcher.MaxBusinessDays)
	assert.Equal(t, 2, cfg.Matcher.MaxAlternatives)
	assert.Equal(t, time.Minute, cfg.Jobs.CleanupInterval())
	assert.Equal(t, 30*time.Minute, cfg.Jobs.Retention())
	assert.Equal(t, 2, cfg.Jobs.MaxConcurrent)
	assert.Equal(t, "/tmp/merge.db", cfg.Storage.DatabasePath)
	assert.Equal(t, "debug", cfg.Observability.Logging.Level)
	assert.Equal(t, "json", cfg.Observability.Logging.Format)
}

func TestLoad_ExpandsEnvironmentVariables(t *testing.T) {
	t.Setenv("FIREFLY_TOKEN", "expanded-token")

	path := writeConfig(t, `
firefly:
  base_url: https://firefly.example.com
  token: ${FIREFLY_TOKEN}
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "expanded-token", cfg.Firefly.Token)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
firefly:
  base_url: https://firefly.example.com
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.NotEmpty(t, cfg.Server.AllowedOrigins)
	assert.Equal(t, 5, cfg.Matcher.MaxBusinessDays)
	assert.Equal(t, 5, cfg.Matcher.MaxAlternatives)
	assert.Equal(t, "info", cfg.Observability.Logging.Level)
	assert.Equal(t, 30*time.Second, cfg.Firefly.Timeout())
	assert.Equal(t, time.Hour, cfg.Jobs.Retention())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9191")
	t.Setenv("FIREFLY_BASE_URL", "https://env.example.com")
	t.Setenv("FIREFLY_TOKEN", "env-token")
	t.Setenv("MATCH_MAX_BUSINESS_DAYS", "7")
	t.Setenv("JOB_RETENTION_MINUTES", "15")
	t.Setenv("MERGE_DB_PATH", "/tmp/env-merge.db")

	cfg := LoadFromEnv()

	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, "https://env.example.com", cfg.Firefly.BaseURL)
	assert.Equal(t, "env-token", cfg.Firefly.Token)
	assert.Equal(t, 7, cfg.Matcher.MaxBusinessDays)
	assert.Equal(t, 15*time.Minute, cfg.Jobs.Retention())
	assert.Equal(t, "/tmp/env-merge.db", cfg.Storage.DatabasePath)
}

func TestLoadOrEnvWithPath_FallsBackToEnv(t *testing.T) {
	t.Setenv("FIREFLY_BASE_URL", "https://fallback.example.com")

	cfg := LoadOrEnvWithPath(filepath.Join(t.TempDir(), "missing.yaml"))

	assert.Equal(t, "https://fallback.example.com", cfg.Firefly.BaseURL)
}
