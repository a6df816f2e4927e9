package monitoring

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsIsolated(t *testing.T) {
	// Two collectors in one process must not panic on duplicate registration.
	a := NewMetrics()
	b := NewMetrics()
	assert.NotSame(t, a.Registry(), b.Registry())
}

func TestRegistryMetrics(t *testing.T) {
	m := NewMetrics()

	m.RecordModuleOp("register", StatusSuccess)
	m.RecordModuleOp("register", StatusSuccess)
	m.SetModulesRegistered(2)
	m.RecordLookup("stt", "found")
	m.RecordFactoryFailure("stt", "WhisperCPPService", "Backend")
	m.RecordServiceCreation("stt", "ONNXSTTService", StatusSuccess, time.Millisecond)
	m.SetProvidersRegistered("stt", 2, 3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ModuleOps.WithLabelValues("register", StatusSuccess)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ModulesRegistered))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Lookups.WithLabelValues("stt", "found")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ProvidersRegistered.WithLabelValues("stt")))

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.ModulesRegistered)
	assert.Equal(t, int64(3), snap.ProvidersRegistered)
	assert.Equal(t, int64(1), snap.ServicesCreated)
	assert.Equal(t, int64(1), snap.FactoryFailures)

	m.ResetProviders()
	assert.Zero(t, m.Snapshot().ProvidersRegistered)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordModuleOp("register", StatusSuccess)
		m.SetModulesRegistered(1)
		m.RecordProviderOp("register", "stt", StatusSuccess)
		m.SetProvidersRegistered("stt", 1, 1)
		m.RecordLookup("stt", "found")
		m.RecordServiceCreation("stt", "p", StatusError, time.Second)
		m.RecordFactoryFailure("stt", "p", "Backend")
		m.RecordHTTPRequest("GET", "/", "200", time.Second, 0, 0)
		m.ResetProviders()
		NewTimer(m, "stt", "p").Stop(StatusSuccess)
	})
	assert.Equal(t, MetricsSnapshot{}, m.Snapshot())
	assert.Nil(t, m.Registry())
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics()

	router := gin.New()
	router.Use(Middleware(m))
	router.GET("/modules/:name", func(c *gin.Context) { c.String(http.StatusNotFound, "missing") })
	router.GET("/metrics", gin.WrapH(m.Handler()))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/modules/onnx", nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/modules/:name", "404")))
	snap := m.Snapshot()
	assert.Equal(t, int64(1), snap.TotalRequests)
	assert.Equal(t, int64(1), snap.TotalErrors)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "commons_http_requests_total")
	assert.Contains(t, w.Body.String(), "commons_uptime_seconds")
}
