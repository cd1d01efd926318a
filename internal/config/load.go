package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/yungbote/pagehub-backend/internal/platform/envutil"
)

func (d *Duration) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "" || s == "null" {
		d.Duration = 0
		return nil
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		u, err := strconv.Unquote(s)
		if err != nil {
			return err
		}
		return d.parse(u)
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("duration must be a JSON string like \"5s\" or an int nanoseconds: %w", err)
	}
	d.Duration = time.Duration(n)
	return nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("duration must be a scalar, got %v", node.Tag)
	}
	if node.Tag == "!!int" {
		n, err := strconv.ParseInt(node.Value, 10, 64)
		if err != nil {
			return err
		}
		d.Duration = time.Duration(n)
		return nil
	}
	return d.parse(node.Value)
}

func (d *Duration) parse(s string) error {
	if strings.TrimSpace(s) == "" {
		d.Duration = 0
		return nil
	}
	dd, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return err
	}
	d.Duration = dd
	return nil
}

func Default() *Config {
	return &Config{
		Env: "development",
		HTTP: HTTPConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: Duration{Duration: 5 * time.Second},
			IdleTimeout:       Duration{Duration: 2 * time.Minute},
			ShutdownTimeout:   Duration{Duration: 15 * time.Second},
			MaxRequestBytes:   1 << 20,
			MaxUploadBytes:    2 << 20,
			CORSOrigins: []string{
				"http://localhost:3000",
				"http://localhost:9002",
				"http://127.0.0.1:3000",
				"http://127.0.0.1:9002",
			},
			RateLimit: RateLimitConfig{RPS: 1, Burst: 5},
		},
		AI: AIConfig{
			Temperature: 0.7,
			Engine:      EngineConfig{Type: "mock"},
		},
		Database: DatabaseConfig{Driver: "sqlite"},
		Publish:  PublishConfig{Mode: "local", Dir: "published"},
		Edit: EditConfig{
			SelectionTTL:      Duration{Duration: 30 * time.Minute},
			MinSelectionChars: 5,
			RewriteTimeout:    Duration{Duration: 2 * time.Minute},
		},
	}
}

// Load reads .env (if present), then the config file (PAGEHUB_CONFIG_PATH or ./config/config.{yaml,yml,json}),
// then environment overrides, and finally fills defaults and validates.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	cfgPath := strings.TrimSpace(os.Getenv("PAGEHUB_CONFIG_PATH"))
	if cfgPath == "" {
		cfgPath = findConfigFile()
	}
	if cfgPath != "" {
		if err := readFile(cfgPath, cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgPath, err)
		}
	}

	applyEnv(cfg)

	if err := normalize(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func findConfigFile() string {
	wd, err := os.Getwd()
	if err != nil {
		return ""
	}
	for _, name := range []string{"config.yaml", "config.yml", "config.json"} {
		p := filepath.Join(wd, "config", name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// readFile decodes over cfg so that keys missing from the file keep their defaults.
func readFile(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return json.Unmarshal(b, cfg)
	}
	return yaml.Unmarshal(b, cfg)
}

func applyEnv(cfg *Config) {
	cfg.Env = envutil.String("LOG_MODE", cfg.Env)
	cfg.HTTP.Addr = envutil.String("PAGEHUB_HTTP_ADDR", cfg.HTTP.Addr)
	if origins := envutil.List("CORS_ORIGINS"); len(origins) > 0 {
		cfg.HTTP.CORSOrigins = origins
	}
	cfg.HTTP.RateLimit.RPS = envutil.Float("RATE_LIMIT_RPS", cfg.HTTP.RateLimit.RPS)
	cfg.HTTP.RateLimit.Burst = envutil.Int("RATE_LIMIT_BURST", cfg.HTTP.RateLimit.Burst)

	cfg.Auth.JWTSecret = envutil.String("JWT_SECRET_KEY", cfg.Auth.JWTSecret)
	cfg.Auth.Issuer = envutil.String("JWT_ISSUER", cfg.Auth.Issuer)
	cfg.Auth.Audience = envutil.String("JWT_AUDIENCE", cfg.Auth.Audience)

	cfg.AI.Engine.Type = envutil.String("AI_ENGINE", cfg.AI.Engine.Type)
	cfg.AI.Model = envutil.String("AI_MODEL", cfg.AI.Model)
	cfg.AI.Engine.BaseURL = envutil.String("AI_BASE_URL", cfg.AI.Engine.BaseURL)
	if v := envutil.First("AI_API_KEY", engineKeyEnv(cfg.AI.Engine.Type)); v != "" {
		cfg.AI.Engine.APIKey = v
	}

	cfg.Database.Driver = envutil.String("DB_DRIVER", cfg.Database.Driver)
	cfg.Database.DSN = envutil.String("DB_DSN", cfg.Database.DSN)

	cfg.Redis.Addr = envutil.String("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = envutil.String("REDIS_PASSWORD", cfg.Redis.Password)

	cfg.Publish.Mode = envutil.String("PUBLISH_MODE", cfg.Publish.Mode)
	cfg.Publish.Dir = envutil.String("PUBLISH_DIR", cfg.Publish.Dir)
	cfg.Publish.Bucket = envutil.String("PUBLISH_BUCKET", cfg.Publish.Bucket)
	cfg.Publish.BaseURL = envutil.String("PUBLISH_BASE_URL", cfg.Publish.BaseURL)
}

func engineKeyEnv(engineType string) string {
	switch normalizeEngineType(engineType) {
	case "gemini":
		return "GEMINI_API_KEY"
	case "oai_http":
		return "OPENAI_API_KEY"
	default:
		return "AI_API_KEY"
	}
}

func normalizeEngineType(t string) string {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case "openai", "openai_http", "oai_http":
		return "oai_http"
	case "gemini", "genai", "googleai":
		return "gemini"
	case "", "mock":
		return "mock"
	default:
		return strings.ToLower(strings.TrimSpace(t))
	}
}

func normalize(cfg *Config) error {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "development"
	}
	if strings.TrimSpace(cfg.HTTP.Addr) == "" {
		cfg.HTTP.Addr = ":8080"
	}
	if cfg.HTTP.MaxRequestBytes <= 0 {
		cfg.HTTP.MaxRequestBytes = 1 << 20
	}
	if cfg.HTTP.MaxUploadBytes <= 0 {
		cfg.HTTP.MaxUploadBytes = 2 << 20
	}
	if cfg.HTTP.ShutdownTimeout.Duration <= 0 {
		cfg.HTTP.ShutdownTimeout = Duration{Duration: 15 * time.Second}
	}
	if cfg.HTTP.RateLimit.RPS < 0 {
		return errors.New("http.rate_limit.rps must be >= 0")
	}
	if cfg.HTTP.RateLimit.RPS > 0 && cfg.HTTP.RateLimit.Burst <= 0 {
		cfg.HTTP.RateLimit.Burst = 1
	}

	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		if isProduction(cfg.Env) {
			return errors.New("auth.jwt_secret (JWT_SECRET_KEY) is required in production")
		}
		cfg.Auth.JWTSecret = "defaultsecret"
	}

	if err := normalizeEngine(&cfg.AI); err != nil {
		return err
	}

	cfg.Database.Driver = strings.ToLower(strings.TrimSpace(cfg.Database.Driver))
	switch cfg.Database.Driver {
	case "", "sqlite":
		cfg.Database.Driver = "sqlite"
		if strings.TrimSpace(cfg.Database.DSN) == "" {
			cfg.Database.DSN = "file:pagehub.db?_foreign_keys=on"
		}
	case "postgres", "postgresql":
		cfg.Database.Driver = "postgres"
		if strings.TrimSpace(cfg.Database.DSN) == "" {
			return errors.New("database.dsn is required for postgres")
		}
	default:
		return fmt.Errorf("unsupported database.driver %q", cfg.Database.Driver)
	}

	if strings.TrimSpace(cfg.Redis.Prefix) == "" {
		cfg.Redis.Prefix = "pagehub:"
	}

	cfg.Publish.Mode = strings.ToLower(strings.TrimSpace(cfg.Publish.Mode))
	switch cfg.Publish.Mode {
	case "", "local":
		cfg.Publish.Mode = "local"
		if strings.TrimSpace(cfg.Publish.Dir) == "" {
			cfg.Publish.Dir = "published"
		}
	case "gcs":
		if strings.TrimSpace(cfg.Publish.Bucket) == "" {
			return errors.New("publish.bucket is required for gcs mode")
		}
	default:
		return fmt.Errorf("unsupported publish.mode %q", cfg.Publish.Mode)
	}
	cfg.Publish.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.Publish.BaseURL), "/")

	if cfg.Edit.SelectionTTL.Duration <= 0 {
		cfg.Edit.SelectionTTL = Duration{Duration: 30 * time.Minute}
	}
	if cfg.Edit.MinSelectionChars <= 0 {
		cfg.Edit.MinSelectionChars = 5
	}
	if cfg.Edit.RewriteTimeout.Duration <= 0 {
		cfg.Edit.RewriteTimeout = Duration{Duration: 2 * time.Minute}
	}
	return nil
}

func normalizeEngine(ai *AIConfig) error {
	e := &ai.Engine
	e.Type = normalizeEngineType(e.Type)
	e.BaseURL = strings.TrimRight(strings.TrimSpace(e.BaseURL), "/")
	e.APIKey = strings.TrimSpace(e.APIKey)
	if e.MaxRetries < 0 {
		return errors.New("ai.engine.max_retries must be >= 0")
	}
	if e.Timeout.Duration <= 0 {
		e.Timeout = Duration{Duration: 60 * time.Second}
	}

	switch e.Type {
	case "mock":
		if ai.Model == "" {
			ai.Model = "mock-1"
		}
	case "oai_http":
		if e.BaseURL == "" {
			e.BaseURL = "https://api.openai.com"
		}
		if e.ChatCompletionsPath == "" {
			e.ChatCompletionsPath = "/v1/chat/completions"
		}
		if ai.Model == "" {
			ai.Model = "gpt-4o-mini"
		}
		if e.MaxRetries == 0 {
			e.MaxRetries = 2
		}
		e.JSONSchema.Mode = strings.ToLower(strings.TrimSpace(e.JSONSchema.Mode))
		switch e.JSONSchema.Mode {
		case "", "auto":
			e.JSONSchema.Mode = "auto"
		case "none", "guided_json", "prompt":
		default:
			return fmt.Errorf("invalid ai.engine.json_schema.mode=%q", e.JSONSchema.Mode)
		}
		if e.JSONSchema.MaxRetries < 0 {
			return errors.New("ai.engine.json_schema.max_retries must be >= 0")
		}
		if e.JSONSchema.MaxRetries == 0 {
			e.JSONSchema.MaxRetries = 2
		}
		if e.JSONSchema.MaxPromptBytes <= 0 {
			e.JSONSchema.MaxPromptBytes = 64 << 10
		}
	case "gemini":
		if e.APIKey == "" {
			return errors.New("ai.engine.api_key (GEMINI_API_KEY) is required for gemini")
		}
		if ai.Model == "" {
			ai.Model = "gemini-2.0-flash"
		}
	default:
		return fmt.Errorf("unsupported ai.engine.type %q", e.Type)
	}
	return nil
}

func isProduction(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "prod", "production":
		return true
	}
	return false
}
