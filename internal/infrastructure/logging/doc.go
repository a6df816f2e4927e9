// Package logging provides structured logging using uber/zap.
//
// Two modes are available:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Registries and backends accept a *Logger and fall back to a no-op logger
// when none is given, so library callers that do not care about logs pay
// nothing.
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	reg := registry.NewManager(logger.Named("modules"), nil)
//	logger.Info("Module registered", zap.String("module", "onnx"))
package logging
