package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// PrometheusMetrics serves the Prometheus exposition of the SDK metrics.
func (h *Handlers) PrometheusMetrics(c *gin.Context) {
	h.sdk.Metrics().Handler().ServeHTTP(c.Writer, c.Request)
}

// MetricsJSON returns the running totals kept alongside the Prometheus
// collectors.
func (h *Handlers) MetricsJSON(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"timestamp": time.Now(),
		"metrics":   h.sdk.Metrics().Snapshot(),
	})
}
