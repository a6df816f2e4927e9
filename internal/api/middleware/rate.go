package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/runanywhere/commons/internal/errcode"
)

// RateLimitConfig defines rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int
	Burst             int
	// IdleTTL is how long a client's limiter is kept after its last request.
	IdleTTL time.Duration
}

// DefaultRateLimitConfig returns production-ready rate limit configuration.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 100,
		Burst:             200,
		IdleTTL:           10 * time.Minute,
	}
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type clientTable struct {
	mu      sync.Mutex
	cfg     RateLimitConfig
	clients map[string]*client
	swept   time.Time
	now     func() time.Time
}

func (t *clientTable) limiter(ip string) *rate.Limiter {
	now := t.now()

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cfg.IdleTTL > 0 && now.Sub(t.swept) >= t.cfg.IdleTTL {
		for k, c := range t.clients {
			if now.Sub(c.lastSeen) >= t.cfg.IdleTTL {
				delete(t.clients, k)
			}
		}
		t.swept = now
	}

	c, ok := t.clients[ip]
	if !ok {
		c = &client{limiter: rate.NewLimiter(rate.Limit(t.cfg.RequestsPerSecond), t.cfg.Burst)}
		t.clients[ip] = c
	}
	c.lastSeen = now
	return c.limiter
}

func (t *clientTable) size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.clients)
}

func newClientTable(cfg RateLimitConfig) *clientTable {
	return &clientTable{
		cfg:     cfg,
		clients: make(map[string]*client),
		now:     time.Now,
	}
}

// RateLimit creates a per-IP rate limiting middleware.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	return rateLimit(newClientTable(cfg))
}

func rateLimit(table *clientTable) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !table.limiter(c.ClientIP()).Allow() {
			abortRateLimited(c)
			return
		}
		c.Next()
	}
}

// GlobalRateLimit creates a global rate limiting middleware.
func GlobalRateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	limiter := rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst)

	return func(c *gin.Context) {
		if !limiter.Allow() {
			abortRateLimited(c)
			return
		}
		c.Next()
	}
}

func abortRateLimited(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
		"error": "rate limit exceeded",
		"code":  errcode.ServiceBusy,
	})
}
