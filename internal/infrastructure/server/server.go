package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apihttp "github.com/runanywhere/commons/internal/api/http"
	"github.com/runanywhere/commons/internal/api/middleware"
	"github.com/runanywhere/commons/internal/infrastructure/config"
	"github.com/runanywhere/commons/internal/infrastructure/logging"
	"github.com/runanywhere/commons/internal/infrastructure/monitoring"
	"github.com/runanywhere/commons/internal/infrastructure/tracing"
	"github.com/runanywhere/commons/internal/sdk"
)

// Options carries what the host supplies beyond configuration.
type Options struct {
	Version string
	Logger  *logging.Logger
	Engines sdk.Engines
}

// Server exposes one initialized SDK context over HTTP.
type Server struct {
	router  *gin.Engine
	http    *http.Server
	sdk     *sdk.SDK
	tracer  *tracing.Tracer
	logger  *logging.Logger
	config  *config.Config
	metrics *monitoring.Metrics
}

// NewServer builds the SDK, runs Init and wires the router.
func NewServer(cfg *config.Config, opts Options) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		var err error
		logger, err = logging.New(logging.Config{
			Level:       cfg.Logging.Level,
			Development: cfg.Logging.Development,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
	}

	logger.Info("Initializing commons introspection server",
		zap.String("host", cfg.Server.Host),
		zap.String("port", cfg.Server.Port),
		zap.Strings("backends", cfg.Backends.Enabled))

	metrics := monitoring.NewMetrics()

	s, err := sdk.New(cfg, sdk.Options{
		Engines: opts.Engines,
		Logger:  logger,
		Metrics: metrics,
	})
	if err != nil {
		return nil, err
	}
	if err := s.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize sdk: %w", err)
	}

	tracer := tracing.New("commons", logger)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst))
		rl := middleware.DefaultRateLimitConfig()
		rl.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		rl.Burst = cfg.RateLimit.Burst
		router.Use(middleware.RateLimit(rl))
	}

	apihttp.NewHandlers(s, opts.Version).Register(router)

	logger.Info("Server initialized successfully")

	return &Server{
		router:  router,
		sdk:     s,
		tracer:  tracer,
		logger:  logger,
		config:  cfg,
		metrics: metrics,
		http: &http.Server{
			Addr:              net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// SDK returns the context the server exposes.
func (s *Server) SDK() *sdk.SDK {
	return s.sdk
}

// Run serves until Close is called. It returns nil after a clean shutdown.
func (s *Server) Run() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Close stops accepting requests, waits for in-flight ones until ctx is
// done and shuts the SDK down.
func (s *Server) Close(ctx context.Context) error {
	s.logger.Info("Shutting down server...")

	var errs []error
	if err := s.http.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP shutdown failed", zap.Error(err))
		errs = append(errs, err)
	}
	s.tracer.Close()
	if err := s.sdk.Shutdown(); err != nil {
		s.logger.Error("SDK shutdown failed", zap.Error(err))
		errs = append(errs, err)
	}

	_ = s.logger.Sync()
	return errors.Join(errs...)
}
