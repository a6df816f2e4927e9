package sdk

import (
	"context"
	"errors"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/runanywhere/commons/internal/backends"
	"github.com/runanywhere/commons/internal/backends/llamacpp"
	"github.com/runanywhere/commons/internal/backends/memory"
	"github.com/runanywhere/commons/internal/backends/onnx"
	"github.com/runanywhere/commons/internal/backends/platform"
	"github.com/runanywhere/commons/internal/backends/sdcpp"
	"github.com/runanywhere/commons/internal/backends/whispercpp"
	"github.com/runanywhere/commons/internal/backends/whisperkit"
	"github.com/runanywhere/commons/internal/domain/discovery"
	"github.com/runanywhere/commons/internal/domain/registry"
	"github.com/runanywhere/commons/internal/errcode"
	"github.com/runanywhere/commons/internal/infrastructure/config"
	"github.com/runanywhere/commons/internal/infrastructure/logging"
	"github.com/runanywhere/commons/internal/infrastructure/monitoring"
	"github.com/runanywhere/commons/internal/service"
)

// Engines are the native bindings and host callbacks handed to the
// backends. Nil fields leave the matching backend registered but unable to
// load models.
type Engines struct {
	ONNX       onnx.Engine
	WhisperCPP whispercpp.Engine
	LlamaCPP   llamacpp.Engine
	SDCPP      sdcpp.Engine
	WhisperKit whisperkit.Engine
	Platform   platform.Engine
}

// Options configures New. Every field is optional.
type Options struct {
	Engines Engines
	Logger  *logging.Logger
	Metrics *monitoring.Metrics
}

// SDK owns one module registry, one service registry and the backends
// registered into them.
type SDK struct {
	cfg       *config.Config
	logger    *logging.Logger
	metrics   *monitoring.Metrics
	telemetry *monitoring.Telemetry
	benchmark *monitoring.Benchmark

	modules  *registry.Manager
	services *service.Registry
	engines  Engines

	mu          sync.RWMutex
	initialized bool
	registered  []backends.Backend
}

// New creates an SDK context. A nil cfg uses config.Default().
func New(cfg *config.Config, opts Options) (*SDK, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, errcode.Wrap(errcode.InvalidConfiguration, err, "")
	}

	logger := logging.OrNop(opts.Logger)
	telemetry := monitoring.NewTelemetry()
	telemetry.SetErrorTracker(monitoring.NewLogTracker(logger.Named("telemetry")))

	return &SDK{
		cfg:       cfg,
		logger:    logger,
		metrics:   opts.Metrics,
		telemetry: telemetry,
		benchmark: monitoring.NewBenchmark(),
		modules:   registry.NewManager(logger.Named("modules"), opts.Metrics),
		services:  service.NewRegistry(logger.Named("services"), opts.Metrics, telemetry),
		engines:   opts.Engines,
	}, nil
}

func (s *SDK) deps() backends.Deps {
	return backends.Deps{
		Modules:  s.modules,
		Services: s.services,
		Logger:   s.logger.Named("backends"),
	}
}

func (s *SDK) newBackend(name string) (backends.Backend, error) {
	deps := s.deps()
	switch name {
	case config.BackendONNX:
		return onnx.New(deps, s.engines.ONNX), nil
	case config.BackendWhisperCPP:
		return whispercpp.New(deps, s.engines.WhisperCPP), nil
	case config.BackendLlamaCPP:
		return llamacpp.NewLLM(deps, s.engines.LlamaCPP), nil
	case config.BackendLlamaVLM:
		return llamacpp.NewVLM(deps, s.engines.LlamaCPP), nil
	case config.BackendSDCPP:
		return sdcpp.New(deps, s.engines.SDCPP), nil
	case config.BackendWhisperKit:
		return whisperkit.New(deps, s.engines.WhisperKit), nil
	case config.BackendPlatform:
		return platform.New(deps, s.engines.Platform), nil
	case config.BackendMemory:
		metric, err := memory.ParseMetric(s.cfg.Backends.MemoryMetric)
		if err != nil {
			return nil, err
		}
		return memory.New(deps, memory.Config{Dimension: s.cfg.Backends.MemoryDimension, Metric: metric}), nil
	default:
		return nil, errcode.New(errcode.BackendNotFound, "backend %q", name)
	}
}

// Init registers the configured backends in configured order, then seeds
// modules from manifest files when a modules directory is set. If any
// backend fails to register, those already registered are removed again.
func (s *SDK) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return errcode.New(errcode.AlreadyInitialized, "")
	}

	var done []backends.Backend
	rollback := func() {
		for i := len(done) - 1; i >= 0; i-- {
			if err := done[i].Unregister(); err != nil {
				s.logger.Warn("Rollback failed", zap.String("backend", done[i].Name()), zap.Error(err))
			}
		}
	}

	for _, name := range s.cfg.Backends.Enabled {
		b, err := s.newBackend(name)
		if err != nil {
			rollback()
			return errcode.Wrap(errcode.InitializationFailed, err, "backend %q", name)
		}
		if err := b.Register(); err != nil {
			rollback()
			return errcode.Wrap(errcode.InitializationFailed, err, "backend %q", name)
		}
		done = append(done, b)
	}

	if dir := s.cfg.Backends.ModulesDir; dir != "" {
		result, err := registry.NewSeeder(s.modules, dir, s.logger.Named("seeder")).Seed()
		if err != nil {
			rollback()
			return errcode.Wrap(errcode.InitializationFailed, err, "seed modules")
		}
		for p, ferr := range result.Failed {
			s.telemetry.Track(ferr, map[string]string{"manifest": p})
		}
	}

	s.registered = done
	s.initialized = true
	s.logger.Info("SDK initialized",
		zap.Int("backends", len(done)),
		zap.Int("modules", s.modules.Count()),
		zap.Int("providers", s.services.Count()))
	return nil
}

// Shutdown unregisters the backends in reverse order and resets both
// registries, including anything registered directly by callers.
func (s *SDK) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errcode.New(errcode.NotInitialized, "")
	}

	var errs []error
	for i := len(s.registered) - 1; i >= 0; i-- {
		b := s.registered[i]
		if err := b.Unregister(); err != nil {
			s.logger.Warn("Backend unregister failed", zap.String("backend", b.Name()), zap.Error(err))
			errs = append(errs, err)
		}
	}

	s.services.Reset()
	s.modules.Reset()
	s.registered = nil
	s.initialized = false
	s.logger.Info("SDK shut down")
	return errors.Join(errs...)
}

// Initialized reports whether Init has succeeded without a later Shutdown.
func (s *SDK) Initialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initialized
}

// Backend returns a backend registered by Init.
func (s *SDK) Backend(name string) (backends.Backend, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := slices.IndexFunc(s.registered, func(b backends.Backend) bool { return b.Name() == name })
	if i < 0 {
		return nil, false
	}
	return s.registered[i], true
}

// BackendNames lists the backends registered by Init in registration order.
func (s *SDK) BackendNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, len(s.registered))
	for i, b := range s.registered {
		names[i] = b.Name()
	}
	return names
}

// DiscoverModels scans the configured models directory.
func (s *SDK) DiscoverModels(ctx context.Context) ([]discovery.Model, error) {
	dir := s.cfg.Backends.ModelsDir
	if dir == "" {
		return nil, errcode.New(errcode.FeatureNotAvailable, "no models directory configured")
	}
	return discovery.NewScanner(dir, s.services, s.logger.Named("discovery")).Scan(ctx)
}

func (s *SDK) Modules() *registry.Manager { return s.modules }
func (s *SDK) Services() *service.Registry { return s.services }
func (s *SDK) Metrics() *monitoring.Metrics { return s.metrics }
func (s *SDK) Telemetry() *monitoring.Telemetry { return s.telemetry }
func (s *SDK) Benchmark() *monitoring.Benchmark { return s.benchmark }
func (s *SDK) Config() *config.Config { return s.cfg }
func (s *SDK) Logger() *logging.Logger { return s.logger }
