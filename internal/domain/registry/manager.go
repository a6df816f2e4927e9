package registry

import (
	"sync"
	"time"

	"github.com/Masterminds/semver/v3"
	"go.uber.org/zap"

	"github.com/runanywhere/commons/internal/errcode"
	"github.com/runanywhere/commons/internal/infrastructure/logging"
	"github.com/runanywhere/commons/internal/infrastructure/monitoring"
	"github.com/runanywhere/commons/internal/types"
)

// Manager tracks registered modules and the capabilities they declare. It is
// the single source of truth for capability availability.
type Manager struct {
	mu      sync.RWMutex
	modules map[string]types.Module
	order   []string

	logger  *logging.Logger
	metrics *monitoring.Metrics
	now     func() time.Time
}

// Stats summarizes the registry.
type Stats struct {
	TotalModules   int            `json:"total_modules"`
	Capabilities   map[string]int `json:"capabilities"`
	LastRegistered *time.Time     `json:"last_registered,omitempty"`
}

// NewManager creates an empty module registry. Both arguments may be nil.
func NewManager(logger *logging.Logger, metrics *monitoring.Metrics) *Manager {
	return &Manager{
		modules: make(map[string]types.Module),
		logger:  logging.OrNop(logger),
		metrics: metrics,
		now:     time.Now,
	}
}

// Register inserts a module. A module whose name is already registered is
// rejected and the existing entry is left untouched.
func (m *Manager) Register(mod types.Module) error {
	if err := validate(mod); err != nil {
		m.metrics.RecordModuleOp("register", monitoring.StatusError)
		return err
	}

	mod = mod.Clone()
	mod.RegisteredAt = m.now()

	m.mu.Lock()
	if _, exists := m.modules[mod.Name]; exists {
		m.mu.Unlock()
		m.metrics.RecordModuleOp("register", monitoring.StatusError)
		return errcode.New(errcode.ModuleAlreadyRegistered, "module %q", mod.Name)
	}
	m.modules[mod.Name] = mod
	m.order = append(m.order, mod.Name)
	count := len(m.modules)
	m.mu.Unlock()

	m.metrics.RecordModuleOp("register", monitoring.StatusSuccess)
	m.metrics.SetModulesRegistered(count)
	m.logger.Info("Module registered",
		zap.String("module", mod.Name),
		zap.Stringer("capabilities", mod.Capabilities),
		zap.String("version", mod.Version))
	return nil
}

func validate(mod types.Module) error {
	if mod.Name == "" {
		return errcode.New(errcode.InvalidArgument, "module name is required")
	}
	if mod.Capabilities.Empty() {
		return errcode.New(errcode.InvalidArgument, "module %q declares no capabilities", mod.Name)
	}
	if mod.Version != "" {
		if _, err := semver.NewVersion(mod.Version); err != nil {
			return errcode.Wrap(errcode.ValidationFailed, err, "module %q version %q", mod.Name, mod.Version)
		}
	}
	return nil
}

// Unregister removes a module by name.
func (m *Manager) Unregister(name string) error {
	m.mu.Lock()
	if _, exists := m.modules[name]; !exists {
		m.mu.Unlock()
		m.metrics.RecordModuleOp("unregister", monitoring.StatusError)
		return errcode.New(errcode.ModuleNotFound, "module %q", name)
	}
	delete(m.modules, name)
	for i, n := range m.order {
		if n == name {
			m.order = append(m.order[:i:i], m.order[i+1:]...)
			break
		}
	}
	count := len(m.modules)
	m.mu.Unlock()

	m.metrics.RecordModuleOp("unregister", monitoring.StatusSuccess)
	m.metrics.SetModulesRegistered(count)
	m.logger.Info("Module unregistered", zap.String("module", name))
	return nil
}

// Get returns a copy of the named module.
func (m *Manager) Get(name string) (types.Module, error) {
	m.mu.RLock()
	mod, ok := m.modules[name]
	m.mu.RUnlock()
	if !ok {
		return types.Module{}, errcode.New(errcode.ModuleNotFound, "module %q", name)
	}
	return mod.Clone(), nil
}

// Exists reports whether a module is registered.
func (m *Manager) Exists(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.modules[name]
	return ok
}

// HasCapability reports whether any registered module declares c.
func (m *Manager) HasCapability(c types.Capability) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, mod := range m.modules {
		if mod.Capabilities.Has(c) {
			return true
		}
	}
	return false
}

// Capabilities returns the union of all declared capabilities.
func (m *Manager) Capabilities() types.CapabilitySet {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var all types.CapabilitySet
	for _, mod := range m.modules {
		all = all.Union(mod.Capabilities)
	}
	return all
}

// List returns a snapshot of all modules in registration order.
func (m *Manager) List() []types.Module {
	return m.filter(func(types.Module) bool { return true })
}

// ModulesFor returns the modules declaring c, in registration order.
func (m *Manager) ModulesFor(c types.Capability) []types.Module {
	return m.filter(func(mod types.Module) bool { return mod.Capabilities.Has(c) })
}

func (m *Manager) filter(keep func(types.Module) bool) []types.Module {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]types.Module, 0, len(m.order))
	for _, name := range m.order {
		mod := m.modules[name]
		if keep(mod) {
			out = append(out, mod.Clone())
		}
	}
	return out
}

// Count returns the number of registered modules.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.modules)
}

// Stats returns registry statistics.
func (m *Manager) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := Stats{
		TotalModules: len(m.modules),
		Capabilities: make(map[string]int),
	}
	for _, mod := range m.modules {
		for _, c := range mod.Capabilities.List() {
			stats.Capabilities[c.String()]++
		}
		if stats.LastRegistered == nil || mod.RegisteredAt.After(*stats.LastRegistered) {
			t := mod.RegisteredAt
			stats.LastRegistered = &t
		}
	}
	return stats
}

// Reset removes every module. Used at teardown.
func (m *Manager) Reset() {
	m.mu.Lock()
	m.modules = make(map[string]types.Module)
	m.order = nil
	m.mu.Unlock()

	m.metrics.SetModulesRegistered(0)
	m.logger.Debug("Module registry reset")
}
