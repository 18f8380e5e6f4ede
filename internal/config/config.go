package config

import "time"

type Duration struct {
	Duration time.Duration
}

type HTTPConfig struct {
	Addr              string   `yaml:"addr"`
	ReadHeaderTimeout Duration `yaml:"read_header_timeout"`
	IdleTimeout       Duration `yaml:"idle_timeout"`
	ShutdownTimeout   Duration `yaml:"shutdown_timeout"`
	MaxRequestBytes   int64    `yaml:"max_request_bytes"`

	// AllowedOrigins feeds the CORS middleware. The planner UI runs on :3000 in development.
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type JSONSchemaConfig struct {
	// Mode controls how schema hints reach the upstream engine.
	// - "none": ignore schema hints
	// - "guided_json": send guided decoding fields (vLLM-style)
	// - "prompt": append a system instruction carrying the schema
	// - "auto": guided_json plus the prompt instruction
	Mode string `yaml:"mode"`

	// MaxPromptBytes caps how much schema JSON can be injected into a prompt.
	MaxPromptBytes int `yaml:"max_prompt_bytes"`
}

type EngineConfig struct {
	// Type is "mock" or "oai_http".
	Type string `yaml:"type"`

	BaseURL string `yaml:"base_url"`

	// APIKey is optional; when set, requests carry `Authorization: Bearer <api_key>`.
	APIKey string `yaml:"api_key"`

	// Model is the upstream model name used for intake parsing.
	Model string `yaml:"model"`

	ChatCompletionsPath string   `yaml:"chat_completions_path"`
	Timeout             Duration `yaml:"timeout"`

	JSONSchema JSONSchemaConfig `yaml:"json_schema"`
}

type CacheConfig struct {
	// RedisAddr enables the intake cache when non-empty.
	RedisAddr     string   `yaml:"redis_addr"`
	RedisPassword string   `yaml:"redis_password"`
	RedisDB       int      `yaml:"redis_db"`
	KeyPrefix     string   `yaml:"key_prefix"`
	TTL           Duration `yaml:"ttl"`
}

type OtelConfig struct {
	Enabled     bool    `yaml:"enabled"`
	ServiceName string  `yaml:"service_name"`
	Version     string  `yaml:"version"`
	SampleRatio float64 `yaml:"sample_ratio"`

	// Endpoint selects the OTLP/HTTP exporter; empty falls back to stdout.
	Endpoint string            `yaml:"endpoint"`
	Headers  map[string]string `yaml:"headers"`
	Insecure bool              `yaml:"insecure"`
}

type MetricsConfig struct {
	// Enabled mounts GET /metrics on the API router.
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	Env     string        `yaml:"env"`
	HTTP    HTTPConfig    `yaml:"http"`
	Engine  EngineConfig  `yaml:"engine"`
	Cache   CacheConfig   `yaml:"cache"`
	Otel    OtelConfig    `yaml:"otel"`
	Metrics MetricsConfig `yaml:"metrics"`
}
