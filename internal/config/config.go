package config

import "time"

type Duration struct {
	Duration time.Duration
}

type RateLimitConfig struct {
	// RPS is the sustained per-client rate for AI-backed endpoints; 0 disables limiting.
	RPS   float64 `json:"rps" yaml:"rps"`
	Burst int     `json:"burst" yaml:"burst"`
}

type HTTPConfig struct {
	Addr              string          `json:"addr" yaml:"addr"`
	ReadHeaderTimeout Duration        `json:"read_header_timeout" yaml:"read_header_timeout"`
	IdleTimeout       Duration        `json:"idle_timeout" yaml:"idle_timeout"`
	ShutdownTimeout   Duration        `json:"shutdown_timeout" yaml:"shutdown_timeout"`
	MaxRequestBytes   int64           `json:"max_request_bytes" yaml:"max_request_bytes"`
	MaxUploadBytes    int64           `json:"max_upload_bytes" yaml:"max_upload_bytes"`
	CORSOrigins       []string        `json:"cors_origins" yaml:"cors_origins"`
	RateLimit         RateLimitConfig `json:"rate_limit" yaml:"rate_limit"`
}

type AuthConfig struct {
	// JWTSecret verifies HS256 tokens minted by the identity provider.
	JWTSecret string `json:"jwt_secret" yaml:"jwt_secret"`
	Issuer    string `json:"issuer,omitempty" yaml:"issuer,omitempty"`
	Audience  string `json:"audience,omitempty" yaml:"audience,omitempty"`
}

type JSONSchemaConfig struct {
	// Mode controls how structured outputs are requested from OpenAI-compatible engines.
	// - "none": ignore schema hints (best-effort)
	// - "guided_json": send response_format/guided_json fields
	// - "prompt": append a system instruction with the schema text and re-ask on invalid JSON
	// - "auto": guided_json first, then prompt
	Mode           string `json:"mode,omitempty" yaml:"mode,omitempty"`
	MaxRetries     int    `json:"max_retries,omitempty" yaml:"max_retries,omitempty"`
	MaxPromptBytes int    `json:"max_prompt_bytes,omitempty" yaml:"max_prompt_bytes,omitempty"`
}

type EngineConfig struct {
	// Type is one of "mock", "oai_http", "gemini".
	Type string `json:"type" yaml:"type"`

	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	APIKey  string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	ChatCompletionsPath string `json:"chat_completions_path,omitempty" yaml:"chat_completions_path,omitempty"`

	Timeout Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	// MaxRetries bounds transport-level retries of retryable upstream failures.
	MaxRetries int `json:"max_retries,omitempty" yaml:"max_retries,omitempty"`

	JSONSchema JSONSchemaConfig `json:"json_schema,omitempty" yaml:"json_schema,omitempty"`
}

type AIConfig struct {
	Model       string       `json:"model" yaml:"model"`
	Temperature float64      `json:"temperature" yaml:"temperature"`
	Engine      EngineConfig `json:"engine" yaml:"engine"`
}

type DatabaseConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver string `json:"driver" yaml:"driver"`
	DSN    string `json:"dsn" yaml:"dsn"`
}

type RedisConfig struct {
	// Addr enables the redis session store; empty keeps sessions in process memory.
	Addr     string `json:"addr,omitempty" yaml:"addr,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
	DB       int    `json:"db,omitempty" yaml:"db,omitempty"`
	Prefix   string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
}

type PublishConfig struct {
	// Mode is "local" (write under Dir) or "gcs" (upload to Bucket).
	Mode    string `json:"mode" yaml:"mode"`
	Dir     string `json:"dir,omitempty" yaml:"dir,omitempty"`
	Bucket  string `json:"bucket,omitempty" yaml:"bucket,omitempty"`
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
}

type EditConfig struct {
	SelectionTTL      Duration `json:"selection_ttl" yaml:"selection_ttl"`
	MinSelectionChars int      `json:"min_selection_chars" yaml:"min_selection_chars"`
	// RewriteTimeout bounds one confirmed rewrite; the in-flight claim expires shortly after it.
	RewriteTimeout Duration `json:"rewrite_timeout" yaml:"rewrite_timeout"`
}

type Config struct {
	Env      string         `json:"env" yaml:"env"`
	HTTP     HTTPConfig     `json:"http" yaml:"http"`
	Auth     AuthConfig     `json:"auth" yaml:"auth"`
	AI       AIConfig       `json:"ai" yaml:"ai"`
	Database DatabaseConfig `json:"database" yaml:"database"`
	Redis    RedisConfig    `json:"redis" yaml:"redis"`
	Publish  PublishConfig  `json:"publish" yaml:"publish"`
	Edit     EditConfig     `json:"edit" yaml:"edit"`
}
