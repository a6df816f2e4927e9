package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics. A nil *Metrics is valid and records
// nothing, so registries can run without instrumentation.
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestSize     *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Module registry metrics
	ModuleOps         *prometheus.CounterVec
	ModulesRegistered prometheus.Gauge

	// Service registry metrics
	ProviderOps         *prometheus.CounterVec
	ProvidersRegistered *prometheus.GaugeVec
	Lookups             *prometheus.CounterVec
	ServiceCreations    *prometheus.CounterVec
	ServiceDuration     *prometheus.HistogramVec
	FactoryFailures     *prometheus.CounterVec

	// System metrics
	Uptime    prometheus.GaugeFunc
	startTime time.Time

	registry *prometheus.Registry

	// Snapshot for JSON API - track current values
	snapshot MetricsSnapshot

	mu sync.RWMutex
}

// MetricsSnapshot holds current metric values for JSON API
type MetricsSnapshot struct {
	TotalRequests       int64   `json:"total_requests"`
	TotalErrors         int64   `json:"total_errors"`
	ModulesRegistered   int64   `json:"modules_registered"`
	ProvidersRegistered int64   `json:"providers_registered"`
	ServicesCreated     int64   `json:"services_created"`
	FactoryFailures     int64   `json:"factory_failures"`
	TotalDuration       float64 `json:"total_duration_seconds"`
	RequestCount        int64   `json:"request_count"`
}

// NewMetrics creates a metrics collector on its own Prometheus registry, so
// several SDK instances in one process never collide.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewMetricsWith(reg)
}

// NewMetricsWith creates a metrics collector registered on reg.
func NewMetricsWith(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)

	m := &Metrics{
		startTime: time.Now(),
		registry:  reg,

		// HTTP metrics
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "commons_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "commons_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		RequestSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "commons_http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000},
			},
			[]string{"method", "path"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "commons_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000},
			},
			[]string{"method", "path"},
		),

		// Module registry metrics
		ModuleOps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "commons_module_operations_total",
				Help: "Module register/unregister operations by result",
			},
			[]string{"op", "result"},
		),
		ModulesRegistered: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "commons_modules_registered",
				Help: "Number of registered modules",
			},
		),

		// Service registry metrics
		ProviderOps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "commons_provider_operations_total",
				Help: "Provider register/unregister operations by result",
			},
			[]string{"op", "capability", "result"},
		),
		ProvidersRegistered: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "commons_providers_registered",
				Help: "Number of registered providers per capability",
			},
			[]string{"capability"},
		),
		Lookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "commons_provider_lookups_total",
				Help: "Provider lookups by capability and result",
			},
			[]string{"capability", "result"},
		),
		ServiceCreations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "commons_service_creations_total",
				Help: "Service creations by capability, provider and status",
			},
			[]string{"capability", "provider", "status"},
		),
		ServiceDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "commons_service_create_duration_seconds",
				Help:    "Service factory duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"capability", "provider"},
		),
		FactoryFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "commons_factory_failures_total",
				Help: "Backend factory failures by capability, provider and error category",
			},
			[]string{"capability", "provider", "category"},
		),
	}

	m.Uptime = factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "commons_uptime_seconds",
			Help: "Uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// Registry returns the Prometheus registry the metrics live on.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, reqSize, respSize int64) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.RequestSize.WithLabelValues(method, path).Observe(float64(reqSize))
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))

	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.snapshot.TotalDuration += duration.Seconds()
	m.snapshot.RequestCount++
	if status != "" && (status[0] == '4' || status[0] == '5') {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordModuleOp records a module register/unregister outcome
func (m *Metrics) RecordModuleOp(op, result string) {
	if m == nil {
		return
	}
	m.ModuleOps.WithLabelValues(op, result).Inc()
}

// SetModulesRegistered sets the number of registered modules
func (m *Metrics) SetModulesRegistered(count int) {
	if m == nil {
		return
	}
	m.ModulesRegistered.Set(float64(count))
	m.mu.Lock()
	m.snapshot.ModulesRegistered = int64(count)
	m.mu.Unlock()
}

// RecordProviderOp records a provider register/unregister outcome
func (m *Metrics) RecordProviderOp(op, capability, result string) {
	if m == nil {
		return
	}
	m.ProviderOps.WithLabelValues(op, capability, result).Inc()
}

// SetProvidersRegistered sets the provider count for a capability
func (m *Metrics) SetProvidersRegistered(capability string, count, total int) {
	if m == nil {
		return
	}
	m.ProvidersRegistered.WithLabelValues(capability).Set(float64(count))
	m.mu.Lock()
	m.snapshot.ProvidersRegistered = int64(total)
	m.mu.Unlock()
}

// ResetProviders clears the per-capability provider gauges
func (m *Metrics) ResetProviders() {
	if m == nil {
		return
	}
	m.ProvidersRegistered.Reset()
	m.mu.Lock()
	m.snapshot.ProvidersRegistered = 0
	m.mu.Unlock()
}

// RecordLookup records a provider lookup
func (m *Metrics) RecordLookup(capability, result string) {
	if m == nil {
		return
	}
	m.Lookups.WithLabelValues(capability, result).Inc()
}

// RecordServiceCreation records a factory call
func (m *Metrics) RecordServiceCreation(capability, provider, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.ServiceCreations.WithLabelValues(capability, provider, status).Inc()
	m.ServiceDuration.WithLabelValues(capability, provider).Observe(duration.Seconds())
	if status == StatusSuccess {
		m.mu.Lock()
		m.snapshot.ServicesCreated++
		m.mu.Unlock()
	}
}

// RecordFactoryFailure records a backend factory failure
func (m *Metrics) RecordFactoryFailure(capability, provider, category string) {
	if m == nil {
		return
	}
	m.FactoryFailures.WithLabelValues(capability, provider, category).Inc()
	m.mu.Lock()
	m.snapshot.FactoryFailures++
	m.mu.Unlock()
}

// Snapshot returns the current values for the JSON API
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}
