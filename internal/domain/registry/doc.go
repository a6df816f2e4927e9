// Package registry provides the module registry.
//
// A module is a named backend package ("onnx", "whispercpp", ...) that
// declares the capabilities it supports. The registry answers "is capability
// X available" and lists modules deterministically in registration order.
//
// Components:
//   - Manager: Module registration, lookup and capability queries
//   - Seeder: Registers modules declared by YAML or TOML manifest files
//
// Features:
//   - Unique module names; duplicates are rejected, never overwritten
//   - Stored descriptors are deep copies and immutable after insertion
//   - Optional semantic version validation
//   - Registration-ordered listing and per-capability filtering
//   - Prometheus counters and structured logging
//
// Example Usage:
//
//	manager := registry.NewManager(logger, metrics)
//	err := manager.Register(types.Module{
//	    Name:         "onnx",
//	    Capabilities: types.NewCapabilitySet(types.CapabilitySTT, types.CapabilityTTS),
//	})
//	manager.HasCapability(types.CapabilitySTT) // true
package registry
