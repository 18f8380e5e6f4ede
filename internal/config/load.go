package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/optima-backend/internal/platform/envutil"
)

// UnmarshalYAML accepts Go duration strings ("5s") or an integer number of seconds.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	s := strings.TrimSpace(value.Value)
	if s == "" || s == "null" || s == "~" {
		d.Duration = 0
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		d.Duration = time.Duration(n) * time.Second
		return nil
	}
	dd, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("duration must be a string like \"5s\" or an integer number of seconds: %w", err)
	}
	d.Duration = dd
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

var defaultOrigins = []string{
	"http://localhost:3000",
	"http://127.0.0.1:3000",
}

func defaultConfig() *Config {
	return &Config{
		Env: "development",
		HTTP: HTTPConfig{
			Addr:              ":8000",
			ReadHeaderTimeout: Duration{Duration: 5 * time.Second},
			IdleTimeout:       Duration{Duration: 2 * time.Minute},
			ShutdownTimeout:   Duration{Duration: 15 * time.Second},
			MaxRequestBytes:   1 << 20,
			AllowedOrigins:    append([]string(nil), defaultOrigins...),
		},
		Engine: EngineConfig{
			Type:  "mock",
			Model: "gpt-4o-mini",
		},
		Cache: CacheConfig{
			KeyPrefix: "optima:intake:",
			TTL:       Duration{Duration: 24 * time.Hour},
		},
		Otel: OtelConfig{
			ServiceName: "optima-backend",
			SampleRatio: 0.1,
		},
	}
}

// Load resolves configuration from defaults, an optional YAML file and the environment.
// The file is OPTIMA_CONFIG_PATH, else ./config/config.yaml when present.
func Load() (*Config, error) {
	cfgPath := strings.TrimSpace(os.Getenv("OPTIMA_CONFIG_PATH"))
	if cfgPath == "" {
		if wd, err := os.Getwd(); err == nil {
			p := filepath.Join(wd, "config", "config.yaml")
			if _, err := os.Stat(p); err == nil {
				cfgPath = p
			}
		}
	}
	return LoadFrom(cfgPath)
}

func LoadFrom(path string) (*Config, error) {
	cfg := defaultConfig()

	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if err := normalize(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Env = envutil.String("LOG_MODE", cfg.Env)
	if port := envutil.String("PORT", ""); port != "" {
		cfg.HTTP.Addr = ":" + strings.TrimPrefix(port, ":")
	}
	cfg.HTTP.Addr = envutil.String("OPTIMA_HTTP_ADDR", cfg.HTTP.Addr)
	if origins := envutil.List("CORS_ALLOWED_ORIGINS"); len(origins) > 0 {
		cfg.HTTP.AllowedOrigins = origins
	}

	cfg.Engine.BaseURL = envutil.String("LLM_BASE_URL", cfg.Engine.BaseURL)
	if cfg.Engine.BaseURL != "" && os.Getenv("LLM_ENGINE") == "" && strings.EqualFold(cfg.Engine.Type, "mock") {
		cfg.Engine.Type = "oai_http"
	}
	cfg.Engine.Type = envutil.String("LLM_ENGINE", cfg.Engine.Type)
	cfg.Engine.APIKey = envutil.String("LLM_API_KEY", envutil.String("OPENAI_API_KEY", cfg.Engine.APIKey))
	cfg.Engine.Model = envutil.String("LLM_MODEL", cfg.Engine.Model)
	cfg.Engine.Timeout.Duration = envutil.Duration("LLM_TIMEOUT", cfg.Engine.Timeout.Duration)

	cfg.Cache.RedisAddr = envutil.String("REDIS_ADDR", cfg.Cache.RedisAddr)
	cfg.Cache.RedisPassword = envutil.String("REDIS_PASSWORD", cfg.Cache.RedisPassword)
	cfg.Cache.RedisDB = envutil.Int("REDIS_DB", cfg.Cache.RedisDB)
	cfg.Cache.TTL.Duration = envutil.Duration("INTAKE_CACHE_TTL", cfg.Cache.TTL.Duration)

	cfg.Otel.ServiceName = envutil.String("OTEL_SERVICE_NAME", cfg.Otel.ServiceName)
	cfg.Otel.Version = envutil.String("SERVICE_VERSION", cfg.Otel.Version)
	cfg.Otel.Enabled = envutil.Bool("OTEL_ENABLED", cfg.Otel.Enabled)
	cfg.Otel.Endpoint = envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Otel.Endpoint)
	cfg.Otel.Insecure = envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", cfg.Otel.Insecure)
	if raw := envutil.String("OTEL_SAMPLER_RATIO", ""); raw != "" {
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			cfg.Otel.SampleRatio = f
		}
	}
	if headers := parseHeaders(envutil.List("OTEL_EXPORTER_OTLP_HEADERS")); len(headers) > 0 {
		cfg.Otel.Headers = headers
	}

	cfg.Metrics.Enabled = envutil.Bool("METRICS_ENABLED", cfg.Metrics.Enabled)
}

// parseHeaders reads key=value pairs, skipping malformed ones.
func parseHeaders(pairs []string) map[string]string {
	out := map[string]string{}
	for _, part := range pairs {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}
		key, val := strings.TrimSpace(kv[0]), strings.TrimSpace(kv[1])
		if key == "" || val == "" {
			continue
		}
		out[key] = val
	}
	return out
}

func normalize(cfg *Config) error {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "development"
	}
	if strings.TrimSpace(cfg.HTTP.Addr) == "" {
		cfg.HTTP.Addr = ":8000"
	}
	if cfg.HTTP.MaxRequestBytes <= 0 {
		cfg.HTTP.MaxRequestBytes = 1 << 20
	}
	if len(cfg.HTTP.AllowedOrigins) == 0 {
		cfg.HTTP.AllowedOrigins = append([]string(nil), defaultOrigins...)
	}
	if cfg.HTTP.ShutdownTimeout.Duration <= 0 {
		cfg.HTTP.ShutdownTimeout = Duration{Duration: 15 * time.Second}
	}

	e := &cfg.Engine
	e.Type = strings.ToLower(strings.TrimSpace(e.Type))
	e.BaseURL = strings.TrimRight(strings.TrimSpace(e.BaseURL), "/")
	e.ChatCompletionsPath = strings.TrimSpace(e.ChatCompletionsPath)
	e.Model = strings.TrimSpace(e.Model)

	switch e.Type {
	case "", "mock":
		e.Type = "mock"
	case "openai_http", "oai_http":
		e.Type = "oai_http"
		if e.BaseURL == "" {
			return errors.New("engine (oai_http) missing base_url")
		}
		if e.Model == "" {
			return errors.New("engine (oai_http) missing model")
		}
		if e.ChatCompletionsPath == "" {
			e.ChatCompletionsPath = "/v1/chat/completions"
		}
		if e.Timeout.Duration <= 0 {
			e.Timeout = Duration{Duration: 60 * time.Second}
		}
	default:
		return fmt.Errorf("unsupported engine type %q", e.Type)
	}

	e.JSONSchema.Mode = strings.ToLower(strings.TrimSpace(e.JSONSchema.Mode))
	switch e.JSONSchema.Mode {
	case "":
		e.JSONSchema.Mode = "auto"
	case "auto", "none", "guided_json", "prompt":
	default:
		return fmt.Errorf("invalid engine.json_schema.mode=%q", e.JSONSchema.Mode)
	}
	if e.JSONSchema.MaxPromptBytes < 0 {
		return errors.New("invalid engine.json_schema.max_prompt_bytes")
	}
	if e.JSONSchema.MaxPromptBytes == 0 {
		e.JSONSchema.MaxPromptBytes = 16 << 10
	}

	cfg.Cache.RedisAddr = strings.TrimSpace(cfg.Cache.RedisAddr)
	if cfg.Cache.TTL.Duration < 0 {
		return errors.New("invalid cache.ttl")
	}
	if strings.TrimSpace(cfg.Cache.KeyPrefix) == "" {
		cfg.Cache.KeyPrefix = "optima:intake:"
	}

	if cfg.Otel.SampleRatio < 0 {
		cfg.Otel.SampleRatio = 0
	}
	if cfg.Otel.SampleRatio > 1 {
		cfg.Otel.SampleRatio = 1
	}
	if strings.TrimSpace(cfg.Otel.ServiceName) == "" {
		cfg.Otel.ServiceName = "optima-backend"
	}
	return nil
}
