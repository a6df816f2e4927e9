package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/runanywhere/commons/internal/errcode"
	"github.com/runanywhere/commons/internal/sdk"
	"github.com/runanywhere/commons/internal/service"
	"github.com/runanywhere/commons/internal/types"
)

// Handlers serves read-only views of one SDK context.
type Handlers struct {
	sdk     *sdk.SDK
	version string
	started time.Time
}

// NewHandlers creates a new handler set
func NewHandlers(s *sdk.SDK, version string) *Handlers {
	return &Handlers{sdk: s, version: version, started: time.Now()}
}

// Register installs every route on r.
func (h *Handlers) Register(r gin.IRoutes) {
	r.GET("/", h.Root)
	r.GET("/health", h.Health)

	r.GET("/modules", h.ListModules)
	r.GET("/modules/:name", h.GetModule)

	r.GET("/capabilities", h.ListCapabilities)
	r.GET("/capabilities/:capability/providers", h.ListProviders)
	r.GET("/capabilities/:capability/resolve", h.ResolveProvider)

	r.GET("/errors", h.ListErrorCategories)
	r.GET("/errors/:code", h.GetError)

	r.GET("/benchmark/metrics", h.BenchmarkMetrics)
	r.GET("/models/discovered", h.DiscoveredModels)

	r.GET("/metrics", h.PrometheusMetrics)
	r.GET("/metrics/json", h.MetricsJSON)
}

// Root identifies the service.
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "runanywhere-commons",
		"version": h.version,
	})
}

// Health reports registry sizes. It returns 503 until Init has succeeded.
func (h *Handlers) Health(c *gin.Context) {
	status, code := "healthy", http.StatusOK
	if !h.sdk.Initialized() {
		status, code = "initializing", http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":           status,
		"backends":         h.sdk.BackendNames(),
		"module_registry":  h.sdk.Modules().Stats(),
		"service_registry": h.sdk.Services().Stats(),
		"uptime_seconds":   time.Since(h.started).Seconds(),
	})
}

// ListModules lists registered modules, optionally only those declaring
// ?capability=.
func (h *Handlers) ListModules(c *gin.Context) {
	modules := h.sdk.Modules().List()
	if raw := c.Query("capability"); raw != "" {
		capability, err := types.ParseCapability(raw)
		if err != nil {
			respondError(c, errcode.Wrap(errcode.InvalidArgument, err, ""))
			return
		}
		modules = h.sdk.Modules().ModulesFor(capability)
	}

	c.JSON(http.StatusOK, gin.H{
		"modules": modules,
		"count":   len(modules),
	})
}

// GetModule returns one module.
func (h *Handlers) GetModule(c *gin.Context) {
	mod, err := h.sdk.Modules().Get(c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mod)
}

// CapabilityView is one row of the capability listing.
type CapabilityView struct {
	Name      string   `json:"name"`
	Available bool     `json:"available"`
	Modules   []string `json:"modules"`
	Providers int      `json:"providers"`
}

// ListCapabilities lists every capability with the modules declaring it
// and the number of providers serving it.
func (h *Handlers) ListCapabilities(c *gin.Context) {
	all := types.AllCapabilities()
	views := make([]CapabilityView, 0, len(all))
	for _, capability := range all {
		view := CapabilityView{
			Name:      capability.String(),
			Available: h.sdk.QueryCapability(capability),
			Modules:   []string{},
			Providers: len(h.sdk.Services().Providers(capability)),
		}
		for _, mod := range h.sdk.Modules().ModulesFor(capability) {
			view.Modules = append(view.Modules, mod.Name)
		}
		views = append(views, view)
	}

	c.JSON(http.StatusOK, gin.H{
		"available":    h.sdk.Modules().Capabilities(),
		"capabilities": views,
	})
}

// ListProviders lists the providers of a capability in selection order.
func (h *Handlers) ListProviders(c *gin.Context) {
	capability, ok := capabilityParam(c)
	if !ok {
		return
	}
	providers := h.sdk.Services().Providers(capability)
	if providers == nil {
		providers = []service.ProviderInfo{}
	}
	c.JSON(http.StatusOK, gin.H{
		"capability": capability,
		"providers":  providers,
	})
}

// ResolveProvider reports which provider would serve a request, without
// creating a service. Query parameters: model_path, identifier, framework.
func (h *Handlers) ResolveProvider(c *gin.Context) {
	capability, ok := capabilityParam(c)
	if !ok {
		return
	}

	framework, err := types.ParseFramework(c.Query("framework"))
	if err != nil {
		respondError(c, errcode.Wrap(errcode.InvalidArgument, err, ""))
		return
	}
	req := types.ServiceRequest{
		Identifier: c.Query("identifier"),
		ModelPath:  c.Query("model_path"),
		Capability: capability,
		Framework:  framework,
	}

	provider, err := h.sdk.Services().FindProvider(capability, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"request":  req,
		"provider": provider,
	})
}

func capabilityParam(c *gin.Context) (types.Capability, bool) {
	capability, err := types.ParseCapability(c.Param("capability"))
	if err != nil {
		respondError(c, errcode.Wrap(errcode.InvalidArgument, err, ""))
		return 0, false
	}
	return capability, true
}

// ListErrorCategories lists the code bands.
func (h *Handlers) ListErrorCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"bands": errcode.Bands()})
}

// GetError describes a result code.
func (h *Handlers) GetError(c *gin.Context) {
	n, err := strconv.ParseInt(c.Param("code"), 10, 32)
	if err != nil {
		respondError(c, errcode.Wrap(errcode.InvalidArgument, err, "code must be an integer"))
		return
	}
	code := errcode.Code(n)
	c.JSON(http.StatusOK, gin.H{
		"error":          errcode.MakeError(code),
		"commons_error":  errcode.IsCommonsError(code),
		"expected_error": errcode.IsExpected(code),
	})
}

// BenchmarkMetrics captures device metrics from the installed provider.
func (h *Handlers) BenchmarkMetrics(c *gin.Context) {
	m := h.sdk.CaptureMetrics()
	c.JSON(http.StatusOK, gin.H{
		"metrics":      m,
		"available":    !m.Unavailable(),
		"provider_set": h.sdk.Benchmark().HasMetricsProvider(),
	})
}

// DiscoveredModels scans the configured models directory.
func (h *Handlers) DiscoveredModels(c *gin.Context) {
	models, err := h.sdk.DiscoverModels(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"models": models,
		"count":  len(models),
	})
}
