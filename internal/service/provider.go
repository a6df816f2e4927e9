package service

import (
	"fmt"

	"github.com/runanywhere/commons/internal/errcode"
	"github.com/runanywhere/commons/internal/features"
	"github.com/runanywhere/commons/internal/types"
)

// Factory is the contract a backend implements to be selectable for a
// capability. CanHandle must be free of side effects; it may be called on
// every lookup.
type Factory interface {
	CanHandle(req types.ServiceRequest) bool
	CreateService(req types.ServiceRequest) (features.Service, error)
}

// FactoryFuncs adapts a pair of functions to Factory. A nil CanHandleFunc
// accepts every request.
type FactoryFuncs struct {
	CanHandleFunc func(req types.ServiceRequest) bool
	CreateFunc    func(req types.ServiceRequest) (features.Service, error)
}

func (f FactoryFuncs) CanHandle(req types.ServiceRequest) bool {
	if f.CanHandleFunc == nil {
		return true
	}
	return f.CanHandleFunc(req)
}

func (f FactoryFuncs) CreateService(req types.ServiceRequest) (features.Service, error) {
	if f.CreateFunc == nil {
		return nil, errcode.New(errcode.NullPointer, "no create function")
	}
	return f.CreateFunc(req)
}

// Provider is a capability-scoped factory registration.
type Provider struct {
	Name       string
	Capability types.Capability
	Priority   int
	Factory    Factory
}

// ProviderInfo describes a registered provider.
type ProviderInfo struct {
	Name       string           `json:"name"`
	Capability types.Capability `json:"capability"`
	Priority   int              `json:"priority"`
	// Sequence is the registration order across the registry.
	Sequence uint64 `json:"sequence"`
}

// FactoryError reports a failure that originated inside a provider's
// factory. It unwraps to the backend's error unchanged, so errcode.CodeOf
// yields the backend's own code.
type FactoryError struct {
	Provider   string
	Capability types.Capability
	Err        error
}

func (e *FactoryError) Error() string {
	return fmt.Sprintf("provider %s (%s): %v", e.Provider, e.Capability, e.Err)
}

func (e *FactoryError) Unwrap() error {
	return e.Err
}

// Is classifies every factory failure as errcode.ErrBackendFactoryFailed.
func (e *FactoryError) Is(target error) bool {
	return target == errcode.ErrBackendFactoryFailed
}
