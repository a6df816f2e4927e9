package backends

import (
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/runanywhere/commons/internal/domain/registry"
	"github.com/runanywhere/commons/internal/errcode"
	"github.com/runanywhere/commons/internal/infrastructure/logging"
	"github.com/runanywhere/commons/internal/service"
	"github.com/runanywhere/commons/internal/types"
)

// Deps are the registries a backend registers into.
type Deps struct {
	Modules  *registry.Manager
	Services *service.Registry
	Logger   *logging.Logger
}

// Backend is a registration unit: one module plus the providers that serve
// its capabilities.
type Backend interface {
	Name() string
	Register() error
	Unregister() error
	Registered() bool
}

// Unit registers a module and its providers as one step. If any provider is
// rejected, everything registered so far is removed again.
type Unit struct {
	mu         sync.Mutex
	deps       Deps
	module     types.Module
	providers  []service.Provider
	registered bool
	logger     *logging.Logger
}

// NewUnit creates a registration unit for module and providers.
func NewUnit(deps Deps, module types.Module, providers ...service.Provider) *Unit {
	return &Unit{
		deps:      deps,
		module:    module,
		providers: providers,
		logger:    logging.OrNop(deps.Logger).Named(module.Name),
	}
}

// Name returns the module name.
func (u *Unit) Name() string {
	return u.module.Name
}

// Module returns the module descriptor the unit registers.
func (u *Unit) Module() types.Module {
	return u.module.Clone()
}

// Providers returns the provider registrations of the unit.
func (u *Unit) Providers() []service.Provider {
	out := make([]service.Provider, len(u.providers))
	copy(out, u.providers)
	return out
}

// Register adds the module, then each provider. A unit that is already
// registered fails with ModuleAlreadyRegistered from the module registry.
func (u *Unit) Register() error {
	if u.deps.Modules == nil || u.deps.Services == nil {
		return errcode.New(errcode.NullPointer, "backend %q: registries not set", u.module.Name)
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	if err := u.deps.Modules.Register(u.module); err != nil {
		u.logger.Debug("Module registration failed", zap.Error(err))
		return err
	}

	for i, p := range u.providers {
		if err := u.deps.Services.RegisterProvider(p); err != nil {
			u.logger.Error("Provider registration failed, rolling back",
				zap.String("provider", p.Name),
				zap.Error(err))
			u.rollback(u.providers[:i])
			return err
		}
	}

	u.registered = true
	u.logger.Info("Backend registered", zap.Int("providers", len(u.providers)))
	return nil
}

func (u *Unit) rollback(done []service.Provider) {
	for i := len(done) - 1; i >= 0; i-- {
		p := done[i]
		if err := u.deps.Services.UnregisterProvider(p.Capability, p.Name); err != nil {
			u.logger.Warn("Rollback: provider not removed", zap.String("provider", p.Name), zap.Error(err))
		}
	}
	if err := u.deps.Modules.Unregister(u.module.Name); err != nil {
		u.logger.Warn("Rollback: module not removed", zap.Error(err))
	}
}

// Unregister removes the providers and then the module. Removing a unit that
// is not registered fails with ModuleNotFound.
func (u *Unit) Unregister() error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if !u.registered {
		return errcode.New(errcode.ModuleNotFound, "backend %q is not registered", u.module.Name)
	}

	for i := len(u.providers) - 1; i >= 0; i-- {
		p := u.providers[i]
		if err := u.deps.Services.UnregisterProvider(p.Capability, p.Name); err != nil {
			// The registry may have been reset underneath us.
			u.logger.Debug("Provider already gone", zap.String("provider", p.Name), zap.Error(err))
		}
	}
	err := u.deps.Modules.Unregister(u.module.Name)
	u.registered = false
	if err != nil && !errors.Is(err, errcode.ErrModuleNotFound) {
		return err
	}

	u.logger.Info("Backend unregistered")
	return nil
}

// Registered reports whether the unit currently holds its registrations.
func (u *Unit) Registered() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.registered
}
