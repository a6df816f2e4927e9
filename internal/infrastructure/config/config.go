package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/kelseyhightower/envconfig"
)

// Backend names understood by BackendsConfig.Enabled.
const (
	BackendONNX       = "onnx"
	BackendWhisperCPP = "whispercpp"
	BackendLlamaCPP   = "llamacpp"
	BackendLlamaVLM   = "llamacpp_vlm"
	BackendSDCPP      = "sdcpp"
	BackendMemory     = "memory"
	BackendWhisperKit = "whisperkit"
	BackendPlatform   = "platform"
)

// KnownBackends lists every backend in default registration order.
var KnownBackends = []string{
	BackendONNX,
	BackendWhisperCPP,
	BackendLlamaCPP,
	BackendLlamaVLM,
	BackendSDCPP,
	BackendMemory,
	BackendWhisperKit,
	BackendPlatform,
}

// Memory index metrics.
const (
	MetricCosine       = "cosine"
	MetricL2           = "l2"
	MetricInnerProduct = "inner_product"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Logging   LogConfig       `yaml:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Backends  BackendsConfig  `yaml:"backends"`
}

// ServerConfig holds introspection HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000" yaml:"port"`
	Host string `envconfig:"HOST" default:"127.0.0.1" yaml:"host"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info" yaml:"level"`
	Development bool   `envconfig:"LOG_DEV" default:"false" yaml:"development"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100" yaml:"requests_per_second"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200" yaml:"burst"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true" yaml:"enabled"`
}

// BackendsConfig selects which backends the SDK registers on Init and in
// which order.
type BackendsConfig struct {
	Enabled         []string `envconfig:"BACKENDS" default:"onnx,whispercpp,llamacpp,llamacpp_vlm,sdcpp,memory,whisperkit,platform" yaml:"enabled"`
	MemoryMetric    string   `envconfig:"MEMORY_METRIC" default:"cosine" yaml:"memory_metric"`
	MemoryDimension int      `envconfig:"MEMORY_DIMENSION" default:"384" yaml:"memory_dimension"`
	// ModulesDir holds *.module.yaml manifests seeded on Init. Empty disables seeding.
	ModulesDir string `envconfig:"MODULES_DIR" yaml:"modules_dir"`
	// ModelsDir is scanned for downloaded model files. Empty disables discovery.
	ModelsDir string `envconfig:"MODELS_DIR" yaml:"models_dir"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadFile loads configuration from a YAML file. Values missing from the
// file keep their defaults and environment variables that are set override
// the file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	env, err := Load()
	if err != nil {
		return nil, err
	}
	overlayEnv(reflect.ValueOf(cfg).Elem(), reflect.ValueOf(env).Elem())

	return cfg, nil
}

// overlayEnv copies every field whose environment variable is set from src
// into dst.
func overlayEnv(dst, src reflect.Value) {
	t := dst.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Type.Kind() == reflect.Struct {
			overlayEnv(dst.Field(i), src.Field(i))
			continue
		}
		key := field.Tag.Get("envconfig")
		if key == "" {
			continue
		}
		if _, ok := os.LookupEnv(key); ok {
			dst.Field(i).Set(src.Field(i))
		}
	}
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8000",
			Host: "127.0.0.1",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		Backends: BackendsConfig{
			Enabled:         append([]string(nil), KnownBackends...),
			MemoryMetric:    MetricCosine,
			MemoryDimension: 384,
		},
	}
}

// Validate checks the configuration for values the SDK cannot start with.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Logging.Level)
	}

	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit requires positive rps and burst, got %d/%d",
			c.RateLimit.RequestsPerSecond, c.RateLimit.Burst)
	}

	seen := make(map[string]bool, len(c.Backends.Enabled))
	for _, name := range c.Backends.Enabled {
		if !isKnownBackend(name) {
			return fmt.Errorf("unknown backend %q", name)
		}
		if seen[name] {
			return fmt.Errorf("backend %q listed twice", name)
		}
		seen[name] = true
	}

	switch c.Backends.MemoryMetric {
	case MetricCosine, MetricL2, MetricInnerProduct:
	default:
		return fmt.Errorf("invalid memory metric %q", c.Backends.MemoryMetric)
	}

	if c.Backends.MemoryDimension <= 0 {
		return fmt.Errorf("memory dimension must be positive, got %d", c.Backends.MemoryDimension)
	}

	return nil
}

func isKnownBackend(name string) bool {
	for _, known := range KnownBackends {
		if known == name {
			return true
		}
	}
	return false
}
