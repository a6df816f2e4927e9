// Package config provides 12-factor configuration for the SDK and its
// introspection server.
//
// Configuration is loaded from environment variables with defaults, or from
// a YAML file with environment variables taking precedence.
//
// Configuration Sections:
//   - Server: Introspection HTTP server settings (port, host)
//   - Logging: Log level and output format
//   - RateLimit: Per-IP rate limiting configuration
//   - Backends: Enabled backends, registration order, memory index settings
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//
// Environment Variables:
//   - PORT, HOST
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
//   - BACKENDS, MEMORY_METRIC, MEMORY_DIMENSION
package config
