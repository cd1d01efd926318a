package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PAGEHUB_CONFIG_PATH", "LOG_MODE", "PAGEHUB_HTTP_ADDR", "CORS_ORIGINS", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
		"JWT_SECRET_KEY", "JWT_ISSUER", "JWT_AUDIENCE", "AI_ENGINE", "AI_MODEL", "AI_BASE_URL", "AI_API_KEY",
		"OPENAI_API_KEY", "GEMINI_API_KEY", "DB_DRIVER", "DB_DSN", "REDIS_ADDR", "REDIS_PASSWORD",
		"PUBLISH_MODE", "PUBLISH_DIR", "PUBLISH_BUCKET", "PUBLISH_BASE_URL",
	} {
		t.Setenv(k, "")
	}
	t.Chdir(t.TempDir())
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "mock", cfg.AI.Engine.Type)
	assert.Equal(t, "mock-1", cfg.AI.Model)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "local", cfg.Publish.Mode)
	assert.Equal(t, "published", cfg.Publish.Dir)
	assert.Equal(t, "pagehub:", cfg.Redis.Prefix)
	assert.Equal(t, 5, cfg.Edit.MinSelectionChars)
	assert.Equal(t, 30*time.Minute, cfg.Edit.SelectionTTL.Duration)
	assert.Equal(t, "defaultsecret", cfg.Auth.JWTSecret)
}

func TestLoad_YAMLFile(t *testing.T) {
	clearEnv(t)
	p := writeFile(t, "config.yaml", `
env: production
http:
  addr: ":9090"
  shutdown_timeout: 3s
  idle_timeout: 1000000000
auth:
  jwt_secret: s3cret
ai:
  model: gpt-test
  engine:
    type: openai
    base_url: http://upstream/
    json_schema:
      mode: prompt
database:
  driver: postgres
  dsn: postgres://x
publish:
  mode: gcs
  bucket: sites
  base_url: https://cdn.example.com/
`)
	t.Setenv("PAGEHUB_CONFIG_PATH", p)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, 3*time.Second, cfg.HTTP.ShutdownTimeout.Duration)
	assert.Equal(t, time.Second, cfg.HTTP.IdleTimeout.Duration)
	assert.Equal(t, "oai_http", cfg.AI.Engine.Type)
	assert.Equal(t, "http://upstream", cfg.AI.Engine.BaseURL)
	assert.Equal(t, "/v1/chat/completions", cfg.AI.Engine.ChatCompletionsPath)
	assert.Equal(t, "prompt", cfg.AI.Engine.JSONSchema.Mode)
	assert.Equal(t, 2, cfg.AI.Engine.JSONSchema.MaxRetries)
	assert.Equal(t, "gpt-test", cfg.AI.Model)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "https://cdn.example.com", cfg.Publish.BaseURL)
	// keys absent from the file keep their defaults
	assert.Equal(t, 5*time.Second, cfg.HTTP.ReadHeaderTimeout.Duration)
}

func TestLoad_JSONFileAndEnvOverrides(t *testing.T) {
	clearEnv(t)
	p := writeFile(t, "config.json", `{"http":{"addr":":7000","shutdown_timeout":"2s"},"ai":{"engine":{"type":"gemini"}}}`)
	t.Setenv("PAGEHUB_CONFIG_PATH", p)
	t.Setenv("PAGEHUB_HTTP_ADDR", ":7001")
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":7001", cfg.HTTP.Addr)
	assert.Equal(t, 2*time.Second, cfg.HTTP.ShutdownTimeout.Duration)
	assert.Equal(t, "gemini", cfg.AI.Engine.Type)
	assert.Equal(t, "g-key", cfg.AI.Engine.APIKey)
	assert.Equal(t, "gemini-2.0-flash", cfg.AI.Model)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.CORSOrigins)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown engine":        {"AI_ENGINE": "claude-local"},
		"gemini without key":    {"AI_ENGINE": "gemini"},
		"production no secret":  {"LOG_MODE": "production"},
		"postgres without dsn":  {"DB_DRIVER": "postgres", "DB_DSN": ""},
		"gcs without bucket":    {"PUBLISH_MODE": "gcs"},
		"unknown publish mode":  {"PUBLISH_MODE": "ftp"},
		"unknown database type": {"DB_DRIVER": "mysql"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
		})
	}
}
