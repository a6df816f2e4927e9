package sdk

import (
	"github.com/runanywhere/commons/internal/errcode"
	"github.com/runanywhere/commons/internal/features"
	"github.com/runanywhere/commons/internal/infrastructure/monitoring"
	"github.com/runanywhere/commons/internal/service"
	"github.com/runanywhere/commons/internal/types"
)

// CanHandleFunc decides whether a provider accepts a request.
type CanHandleFunc func(req types.ServiceRequest) bool

// CreateFunc builds a service for an accepted request.
type CreateFunc func(req types.ServiceRequest) (features.Service, error)

func codeOf(err error) errcode.Code {
	if err == nil {
		return errcode.Success
	}
	return errcode.CodeOf(err)
}

// RegisterModule registers a bare module descriptor.
func (s *SDK) RegisterModule(name string, caps ...types.Capability) errcode.Code {
	return codeOf(s.modules.Register(types.Module{
		Name:         name,
		Capabilities: types.NewCapabilitySet(caps...),
	}))
}

// UnregisterModule removes a module by name.
func (s *SDK) UnregisterModule(name string) errcode.Code {
	return codeOf(s.modules.Unregister(name))
}

// QueryCapability reports whether any registered module declares c.
func (s *SDK) QueryCapability(c types.Capability) bool {
	return s.modules.HasCapability(c)
}

// RegisterServiceProvider adds a provider for c. canHandle may be nil, in
// which case the provider accepts every request.
func (s *SDK) RegisterServiceProvider(c types.Capability, name string, priority int, canHandle CanHandleFunc, create CreateFunc) errcode.Code {
	if create == nil {
		return errcode.NullPointer
	}
	return codeOf(s.services.RegisterProvider(service.Provider{
		Name:       name,
		Capability: c,
		Priority:   priority,
		Factory: service.FactoryFuncs{
			CanHandleFunc: canHandle,
			CreateFunc:    create,
		},
	}))
}

// UnregisterServiceProvider removes the named provider from c.
func (s *SDK) UnregisterServiceProvider(c types.Capability, name string) errcode.Code {
	return codeOf(s.services.UnregisterProvider(c, name))
}

// CreateService creates a service from the highest-priority provider that
// can handle req. A factory failure yields the backend's own code.
func (s *SDK) CreateService(c types.Capability, req types.ServiceRequest) (features.Service, errcode.Code) {
	svc, err := s.services.CreateService(c, req)
	if err != nil {
		return nil, codeOf(err)
	}
	return svc, errcode.Success
}

// ErrorCategory returns the category name of code.
func (s *SDK) ErrorCategory(code errcode.Code) string {
	return errcode.CategoryOf(code)
}

// ErrorMessage returns the canonical message of code.
func (s *SDK) ErrorMessage(code errcode.Code) string {
	return errcode.MessageOf(code)
}

// SetMetricsProvider installs the platform metrics provider. nil clears it.
func (s *SDK) SetMetricsProvider(p monitoring.MetricsProvider) {
	s.benchmark.SetMetricsProvider(p)
}

// CaptureMetrics returns the current device metrics.
func (s *SDK) CaptureMetrics() monitoring.ExtendedMetrics {
	return s.benchmark.CaptureMetrics()
}

// SetErrorTracker installs the telemetry sink for factory failures. nil
// restores logging only.
func (s *SDK) SetErrorTracker(t monitoring.ErrorTracker) {
	if f, ok := t.(monitoring.ErrorTrackerFunc); t == nil || ok && f == nil {
		t = monitoring.NewLogTracker(s.logger.Named("telemetry"))
	}
	s.telemetry.SetErrorTracker(t)
}
