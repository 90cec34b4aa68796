package middleware

import (
	"net/http"
	"sync"
	"time"

	"hostsnap/internal/logger"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	// DefaultRequestsPerSecond and DefaultBurst bound each client IP
	DefaultRequestsPerSecond = 100
	DefaultBurst             = 200

	// IP buckets untouched for this long are dropped
	DefaultIdleTTL = 3 * time.Minute
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter implements token bucket rate limiting per IP
type RateLimiter struct {
	visitors  map[string]*visitor
	limit     rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
	mu        sync.Mutex
}

// NewRateLimiter creates a rate limiter allowing perSecond requests per IP
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(perSecond),
		burst:    burst,
		idleTTL:  DefaultIdleTTL,
		now:      time.Now,
	}
}

// GetLimiter gets or creates a limiter for an IP address
func (rl *RateLimiter) GetLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.evictIdle(now)

	if v, exists := rl.visitors[ip]; exists {
		v.lastSeen = now
		return v.limiter
	}

	limiter := rate.NewLimiter(rl.limit, rl.burst)
	rl.visitors[ip] = &visitor{limiter: limiter, lastSeen: now}
	return limiter
}

// evictIdle drops idle buckets, at most once per idleTTL. Caller holds mu.
func (rl *RateLimiter) evictIdle(now time.Time) {
	if now.Sub(rl.lastSweep) < rl.idleTTL {
		return
	}
	rl.lastSweep = now

	for ip, v := range rl.visitors {
		if now.Sub(v.lastSeen) >= rl.idleTTL {
			delete(rl.visitors, ip)
		}
	}
}

// RateLimitMiddleware enforces rate limiting per IP
func RateLimitMiddleware(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !limiter.GetLimiter(ip).Allow() {
			logger.Warn().
				Str("client_ip", ip).
				Str("request_id", c.GetString(RequestIDKey)).
				Msg("rate limit exceeded")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

// SecurityHeadersMiddleware adds security headers to all responses
func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Content-Security-Policy", "default-src 'none'")
		c.Header("Referrer-Policy", "no-referrer")
		c.Header("Cache-Control", "no-store")
		c.Next()
	}
}
