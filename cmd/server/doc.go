// Command server runs the read-only introspection API of the runanywhere
// commons SDK.
//
// It registers the configured backends, optionally seeds modules from
// manifest files and serves the registry state, error catalogue, device
// metrics and Prometheus metrics over HTTP.
//
// Configuration comes from environment variables (PORT, HOST, LOG_LEVEL,
// BACKENDS, MODULES_DIR, MODELS_DIR, ...) or a YAML file given with -config,
// in which case set environment variables still win. Flags override both.
//
// Usage:
//
//	./server -config commons.yaml
//	./server -port 8000 -dev
//
// SIGINT and SIGTERM trigger a graceful shutdown.
package main
