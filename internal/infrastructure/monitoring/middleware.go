package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Result labels shared by the registries.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Middleware creates a Gin middleware for metrics collection
func Middleware(metrics *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method

		reqSize := c.Request.ContentLength
		if reqSize < 0 {
			reqSize = 0
		}

		c.Next()

		// Route template keeps label cardinality bounded
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		duration := time.Since(start)
		status := strconv.Itoa(c.Writer.Status())
		respSize := int64(c.Writer.Size())
		if respSize < 0 {
			respSize = 0
		}

		metrics.RecordHTTPRequest(method, path, status, duration, reqSize, respSize)
	}
}

// Timer measures a service factory call
type Timer struct {
	start      time.Time
	metrics    *Metrics
	capability string
	provider   string
}

// NewTimer creates a new timer
func NewTimer(metrics *Metrics, capability, provider string) *Timer {
	return &Timer{
		start:      time.Now(),
		metrics:    metrics,
		capability: capability,
		provider:   provider,
	}
}

// Stop stops the timer and records the duration
func (t *Timer) Stop(status string) time.Duration {
	duration := time.Since(t.start)
	t.metrics.RecordServiceCreation(t.capability, t.provider, status, duration)
	return duration
}
