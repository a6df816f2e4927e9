// Package server assembles the introspection HTTP server: it builds the SDK
// context from configuration, initializes it and serves the read-only API
// with tracing, metrics, CORS and rate limiting middleware.
package server
