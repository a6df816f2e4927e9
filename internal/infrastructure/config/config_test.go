package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"PORT", "HOST", "LOG_LEVEL", "LOG_DEV",
	"RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "RATE_LIMIT_ENABLED",
	"BACKENDS", "MEMORY_METRIC", "MEMORY_DIMENSION", "MODULES_DIR", "MODELS_DIR",
}

// clearEnv unsets every config variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		if prev, ok := os.LookupEnv(key); ok {
			require.NoError(t, os.Unsetenv(key))
			t.Cleanup(func() { os.Setenv(key, prev) })
		}
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	// Server config
	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)

	// Logging config
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)

	// Rate limit config
	assert.Equal(t, 100, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 200, cfg.RateLimit.Burst)
	assert.True(t, cfg.RateLimit.Enabled)

	// Backends config
	assert.Equal(t, KnownBackends, cfg.Backends.Enabled)
	assert.Equal(t, MetricCosine, cfg.Backends.MemoryMetric)
	assert.Equal(t, 384, cfg.Backends.MemoryDimension)

	assert.NoError(t, cfg.Validate())
}

func TestLoadMatchesDefault(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	clearEnv(t)
	envVars := map[string]string{
		"PORT":               "9000",
		"HOST":               "0.0.0.0",
		"LOG_LEVEL":          "debug",
		"LOG_DEV":            "true",
		"RATE_LIMIT_RPS":     "500",
		"RATE_LIMIT_BURST":   "1000",
		"RATE_LIMIT_ENABLED": "false",
		"BACKENDS":           "memory,onnx",
		"MEMORY_METRIC":      "l2",
		"MEMORY_DIMENSION":   "768",
		"MODULES_DIR":        "/etc/commons/modules",
		"MODELS_DIR":         "/var/lib/models",
	}

	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
	assert.Equal(t, 500, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 1000, cfg.RateLimit.Burst)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, []string{"memory", "onnx"}, cfg.Backends.Enabled)
	assert.Equal(t, MetricL2, cfg.Backends.MemoryMetric)
	assert.Equal(t, 768, cfg.Backends.MemoryDimension)
	assert.Equal(t, "/etc/commons/modules", cfg.Backends.ModulesDir)
	assert.Equal(t, "/var/lib/models", cfg.Backends.ModelsDir)
}

func TestLoadInvalidEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("MEMORY_DIMENSION", "lots")

	_, err := Load()
	assert.Error(t, err)

	cfg := LoadOrDefault()
	assert.Equal(t, 384, cfg.Backends.MemoryDimension)
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "commons.yaml")
	content := `
server:
  port: "7000"
logging:
  level: warn
backends:
  enabled: [llamacpp, memory]
  memory_metric: inner_product
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	// From file
	assert.Equal(t, "7000", cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, []string{"llamacpp", "memory"}, cfg.Backends.Enabled)
	assert.Equal(t, MetricInnerProduct, cfg.Backends.MemoryMetric)

	// Defaults for keys the file omits
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 384, cfg.Backends.MemoryDimension)
	assert.True(t, cfg.RateLimit.Enabled)
}

func TestLoadFileEnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "commons.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: \"7000\"\n  host: 10.0.0.1\n"), 0o600))

	t.Setenv("PORT", "7100")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "7100", cfg.Server.Port)
	assert.Equal(t, "10.0.0.1", cfg.Server.Host)
}

func TestLoadFileErrors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unterminated"), 0o600))
	_, err = LoadFile(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default", func(*Config) {}, false},
		{"bad log level", func(c *Config) { c.Logging.Level = "chatty" }, true},
		{"zero rps when enabled", func(c *Config) { c.RateLimit.RequestsPerSecond = 0 }, true},
		{"zero rps when disabled", func(c *Config) {
			c.RateLimit.RequestsPerSecond = 0
			c.RateLimit.Enabled = false
		}, false},
		{"unknown backend", func(c *Config) { c.Backends.Enabled = []string{"tensorrt"} }, true},
		{"duplicate backend", func(c *Config) { c.Backends.Enabled = []string{"onnx", "onnx"} }, true},
		{"no backends", func(c *Config) { c.Backends.Enabled = nil }, false},
		{"bad metric", func(c *Config) { c.Backends.MemoryMetric = "manhattan" }, true},
		{"zero dimension", func(c *Config) { c.Backends.MemoryDimension = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
