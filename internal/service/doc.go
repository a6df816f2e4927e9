// Package service provides the capability-based service registry.
//
// Backends register providers against a capability. At request time the
// registry walks the capability's providers in selection order, asks each
// whether it can handle the request, and instantiates a service from the
// first that accepts.
//
// Components:
//   - Registry: Provider registration, lookup and service creation
//   - Provider: Named, prioritized factory registration
//   - Factory: CanHandle predicate plus CreateService constructor
//   - FactoryError: Classifies backend failures without masking them
//
// Selection Order:
//   - Higher Priority first
//   - Equal priority: earlier registration first
//   - CanHandle called at most once per provider per lookup
//   - No registry lock is held while backend code runs
//
// Policies:
//   - Duplicate provider names within a capability are rejected
//   - CreateService never falls back; a factory failure is returned as is
//   - CreateServiceWithFallback tries each matching provider in order
//   - FindProvider accepts names to exclude for caller-driven retries
//
// Example Usage:
//
//	registry := service.NewRegistry(logger, metrics, telemetry)
//	registry.RegisterProvider(service.Provider{
//	    Name:       "ONNXSTTService",
//	    Capability: types.CapabilitySTT,
//	    Priority:   100,
//	    Factory:    onnxSTTFactory,
//	})
//	svc, err := registry.CreateService(types.CapabilitySTT, req)
//	if errors.Is(err, errcode.ErrBackendFactoryFailed) {
//	    code := errcode.CodeOf(err) // backend's own code
//	}
package service
