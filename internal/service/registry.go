package service

import (
	"cmp"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/runanywhere/commons/internal/errcode"
	"github.com/runanywhere/commons/internal/features"
	"github.com/runanywhere/commons/internal/infrastructure/logging"
	"github.com/runanywhere/commons/internal/infrastructure/monitoring"
	"github.com/runanywhere/commons/internal/types"
)

type entry struct {
	Provider
	seq uint64
}

func (e *entry) info() ProviderInfo {
	return ProviderInfo{
		Name:       e.Name,
		Capability: e.Capability,
		Priority:   e.Priority,
		Sequence:   e.seq,
	}
}

// Registry maps capabilities to priority-ordered providers.
//
// Each capability's provider slice is sorted by descending priority with ties
// in registration order, and is replaced rather than mutated on every write.
// Readers copy the slice header under the read lock and release it before
// calling into backend code.
type Registry struct {
	mu        sync.RWMutex
	providers map[types.Capability][]*entry
	seq       uint64

	logger    *logging.Logger
	metrics   *monitoring.Metrics
	telemetry *monitoring.Telemetry
}

// Stats summarizes the registry.
type Stats struct {
	TotalProviders int            `json:"total_providers"`
	Capabilities   map[string]int `json:"capabilities"`
}

// NewRegistry creates an empty service registry. All arguments may be nil.
func NewRegistry(logger *logging.Logger, metrics *monitoring.Metrics, telemetry *monitoring.Telemetry) *Registry {
	return &Registry{
		providers: make(map[types.Capability][]*entry),
		logger:    logging.OrNop(logger),
		metrics:   metrics,
		telemetry: telemetry,
	}
}

// RegisterProvider adds a provider to its capability's ordered list. A
// second provider with the same name under the same capability is rejected.
func (r *Registry) RegisterProvider(p Provider) error {
	capName := p.Capability.String()
	if err := validateProvider(p); err != nil {
		r.metrics.RecordProviderOp("register", capName, monitoring.StatusError)
		return err
	}

	r.mu.Lock()
	current := r.providers[p.Capability]
	for _, e := range current {
		if e.Name == p.Name {
			r.mu.Unlock()
			r.metrics.RecordProviderOp("register", capName, monitoring.StatusError)
			return errcode.New(errcode.ProviderAlreadyRegistered, "provider %q for %s", p.Name, p.Capability)
		}
	}

	r.seq++
	next := make([]*entry, len(current), len(current)+1)
	copy(next, current)
	next = append(next, &entry{Provider: p, seq: r.seq})
	slices.SortStableFunc(next, func(a, b *entry) int {
		return cmp.Compare(b.Priority, a.Priority)
	})
	r.providers[p.Capability] = next
	count, total := len(next), r.countLocked()
	r.mu.Unlock()

	r.metrics.RecordProviderOp("register", capName, monitoring.StatusSuccess)
	r.metrics.SetProvidersRegistered(capName, count, total)
	r.logger.Info("Provider registered",
		zap.String("provider", p.Name),
		zap.String("capability", capName),
		zap.Int("priority", p.Priority))
	return nil
}

func validateProvider(p Provider) error {
	if p.Name == "" {
		return errcode.New(errcode.InvalidArgument, "provider name is required")
	}
	if !p.Capability.Valid() {
		return errcode.New(errcode.InvalidArgument, "provider %q: invalid capability %d", p.Name, p.Capability)
	}
	if p.Factory == nil {
		return errcode.New(errcode.NullPointer, "provider %q has no factory", p.Name)
	}
	return nil
}

// UnregisterProvider removes the named provider from a capability.
func (r *Registry) UnregisterProvider(c types.Capability, name string) error {
	capName := c.String()

	r.mu.Lock()
	current := r.providers[c]
	idx := slices.IndexFunc(current, func(e *entry) bool { return e.Name == name })
	if idx < 0 {
		r.mu.Unlock()
		r.metrics.RecordProviderOp("unregister", capName, monitoring.StatusError)
		return errcode.New(errcode.ProviderNotFound, "provider %q for %s", name, c)
	}

	next := make([]*entry, 0, len(current)-1)
	next = append(next, current[:idx]...)
	next = append(next, current[idx+1:]...)
	if len(next) == 0 {
		delete(r.providers, c)
	} else {
		r.providers[c] = next
	}
	count, total := len(next), r.countLocked()
	r.mu.Unlock()

	r.metrics.RecordProviderOp("unregister", capName, monitoring.StatusSuccess)
	r.metrics.SetProvidersRegistered(capName, count, total)
	r.logger.Info("Provider unregistered",
		zap.String("provider", name),
		zap.String("capability", capName))
	return nil
}

// snapshot returns the ordered providers for c. The returned slice is never
// mutated and is safe to iterate without the lock.
func (r *Registry) snapshot(c types.Capability) []*entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.providers[c]
}

// FindProvider returns the highest-priority provider whose CanHandle accepts
// req. Providers named in exclude are skipped without being consulted, which
// lets callers retry after a factory failure.
func (r *Registry) FindProvider(c types.Capability, req types.ServiceRequest, exclude ...string) (ProviderInfo, error) {
	e, err := r.find(c, scoped(c, req), exclude)
	if err != nil {
		return ProviderInfo{}, err
	}
	return e.info(), nil
}

// scoped fills in the request capability when the caller left it unset.
func scoped(c types.Capability, req types.ServiceRequest) types.ServiceRequest {
	if req.Capability == 0 {
		req.Capability = c
	}
	return req
}

func (r *Registry) find(c types.Capability, req types.ServiceRequest, exclude []string) (*entry, error) {
	if !c.Valid() {
		return nil, errcode.New(errcode.InvalidArgument, "invalid capability %d", c)
	}

	for _, e := range r.snapshot(c) {
		if slices.Contains(exclude, e.Name) {
			continue
		}
		if e.Factory.CanHandle(req) {
			r.metrics.RecordLookup(c.String(), "found")
			r.logger.Debug("Provider selected",
				zap.String("capability", c.String()),
				zap.String("provider", e.Name),
				zap.String("path", req.Path()))
			return e, nil
		}
	}

	r.metrics.RecordLookup(c.String(), "none")
	r.logger.Debug("No capable provider",
		zap.String("capability", c.String()),
		zap.String("path", req.Path()))
	return nil, errcode.New(errcode.NoCapableProvider, "%s request %q", c, req.Path())
}

// CreateService instantiates a service from the first provider that can
// handle req. A factory failure is returned as a *FactoryError; the registry
// does not try the next provider.
func (r *Registry) CreateService(c types.Capability, req types.ServiceRequest) (features.Service, error) {
	req = scoped(c, req)
	e, err := r.find(c, req, nil)
	if err != nil {
		return nil, err
	}
	return r.create(e, req)
}

// CreateServiceWithFallback tries every provider that can handle req in
// order until one factory succeeds. If all matching factories fail the last
// failure is returned.
func (r *Registry) CreateServiceWithFallback(c types.Capability, req types.ServiceRequest) (features.Service, error) {
	if !c.Valid() {
		return nil, errcode.New(errcode.InvalidArgument, "invalid capability %d", c)
	}
	req = scoped(c, req)

	var lastErr error
	for _, e := range r.snapshot(c) {
		if !e.Factory.CanHandle(req) {
			continue
		}
		r.metrics.RecordLookup(c.String(), "found")
		svc, err := r.create(e, req)
		if err == nil {
			return svc, nil
		}
		lastErr = err
		r.logger.Debug("Falling back to next provider",
			zap.String("capability", c.String()),
			zap.String("failed", e.Name))
	}

	if lastErr != nil {
		return nil, lastErr
	}
	r.metrics.RecordLookup(c.String(), "none")
	return nil, errcode.New(errcode.NoCapableProvider, "%s request %q", c, req.Path())
}

func (r *Registry) create(e *entry, req types.ServiceRequest) (features.Service, error) {
	capName := e.Capability.String()
	timer := monitoring.NewTimer(r.metrics, capName, e.Name)

	svc, err := e.Factory.CreateService(req)
	if err == nil && svc == nil {
		err = errcode.New(errcode.BackendInitFailed, "provider %q returned no service", e.Name)
	}
	if err != nil {
		duration := timer.Stop(monitoring.StatusError)
		fe := &FactoryError{Provider: e.Name, Capability: e.Capability, Err: err}

		code := errcode.CodeOf(err)
		r.metrics.RecordFactoryFailure(capName, e.Name, errcode.CategoryOf(code))
		r.telemetry.Track(fe, map[string]string{
			"provider":   e.Name,
			"capability": capName,
		})
		r.logger.Warn("Service factory failed",
			zap.String("provider", e.Name),
			zap.String("capability", capName),
			zap.Int32("code", int32(code)),
			zap.Duration("duration", duration),
			zap.Error(err))
		return nil, fe
	}

	duration := timer.Stop(monitoring.StatusSuccess)
	r.logger.Debug("Service created",
		zap.String("provider", e.Name),
		zap.String("capability", capName),
		zap.String("id", svc.Info().ID),
		zap.Duration("duration", duration))
	return svc, nil
}

// Create instantiates a service for c and asserts it to T. The service is
// closed if it does not implement T.
func Create[T features.Service](r *Registry, c types.Capability, req types.ServiceRequest) (T, error) {
	var zero T
	svc, err := r.CreateService(c, req)
	if err != nil {
		return zero, err
	}
	typed, err := features.As[T](svc)
	if err != nil {
		_ = svc.Close()
		return zero, err
	}
	return typed, nil
}

// Providers returns the providers for c in selection order.
func (r *Registry) Providers(c types.Capability) []ProviderInfo {
	snap := r.snapshot(c)
	out := make([]ProviderInfo, len(snap))
	for i, e := range snap {
		out[i] = e.info()
	}
	return out
}

// HasProvider reports whether a provider with name is registered for c.
func (r *Registry) HasProvider(c types.Capability, name string) bool {
	return slices.ContainsFunc(r.snapshot(c), func(e *entry) bool { return e.Name == name })
}

// Capabilities returns the capabilities with at least one provider, in
// ascending order.
func (r *Registry) Capabilities() []types.Capability {
	r.mu.RLock()
	defer r.mu.RUnlock()
	caps := make([]types.Capability, 0, len(r.providers))
	for c := range r.providers {
		caps = append(caps, c)
	}
	slices.Sort(caps)
	return caps
}

// Count returns the total number of registered providers.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.countLocked()
}

func (r *Registry) countLocked() int {
	total := 0
	for _, list := range r.providers {
		total += len(list)
	}
	return total
}

// Stats returns registry statistics.
func (r *Registry) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := Stats{Capabilities: make(map[string]int, len(r.providers))}
	for c, list := range r.providers {
		stats.TotalProviders += len(list)
		stats.Capabilities[c.String()] = len(list)
	}
	return stats
}

// Reset removes every provider. Used at teardown.
func (r *Registry) Reset() {
	r.mu.Lock()
	r.providers = make(map[types.Capability][]*entry)
	r.mu.Unlock()

	r.metrics.ResetProviders()
	r.logger.Debug("Service registry reset")
}
