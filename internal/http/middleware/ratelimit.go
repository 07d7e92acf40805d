// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements an in-memory, per-client token-bucket rate limiter for
// the public token kiosk endpoint. State is process-scoped with explicit
// eviction of idle buckets — no package-level singleton — so tests can create
// and discard limiters freely. For horizontally scaled deployments a
// distributed limiter would be required; a single hospital deployment does
// not need one.
package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// keyFunc selects the identity used to key a rate-limit bucket. It should
// return a stable string for the duration of a request, e.g. "user:<id>" or
// "ip:<addr>".
type keyFunc func(*gin.Context) string

// KeyByUserOrIP prefers the resolved staff identity and falls back to the
// client IP (patient kiosks are anonymous). Keys are prefixed so user and IP
// namespaces cannot collide.
func KeyByUserOrIP() keyFunc {
	return func(c *gin.Context) string {
		if v, ok := c.Get(userIDKey); ok {
			if s, ok := v.(string); ok && s != "" {
				return "user:" + s
			}
		}
		return "ip:" + c.ClientIP()
	}
}

// client holds one bucket and the last time it was used, for idle eviction.
type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a per-key token-bucket limiter, safe for concurrent use.
// Buckets are created on demand; idle ones are evicted opportunistically
// during lookups to bound memory.
type RateLimiter struct {
	rps     rate.Limit
	burst   int
	keyFn   keyFunc
	mu      sync.Mutex
	clients map[string]*client

	idleTTL  time.Duration
	lookups  uint64
	gcEveryN uint64
}

// NewRateLimiter constructs a RateLimiter with the given tokens-per-second
// and burst size, keyed by keyFn. A burst <= 0 is coerced to 1.
func NewRateLimiter(rps float64, burst int, keyFn keyFunc) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		rps:      rate.Limit(rps),
		burst:    burst,
		keyFn:    keyFn,
		clients:  make(map[string]*client),
		idleTTL:  10 * time.Minute,
		gcEveryN: 4096,
	}
}

// getLimiter returns (and refreshes) the bucket for key, creating it if
// absent. Eviction runs before the lookup so a stale bucket for the requested
// key is dropped rather than refreshed.
func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	now := time.Now()

	rl.mu.Lock()
	rl.lookups++
	if rl.lookups >= rl.gcEveryN {
		for k, cl := range rl.clients {
			if now.Sub(cl.lastSeen) >= rl.idleTTL {
				delete(rl.clients, k)
			}
		}
		rl.lookups = 0
	}

	if cl, ok := rl.clients[key]; ok {
		cl.lastSeen = now
		lim := cl.limiter
		rl.mu.Unlock()
		return lim
	}

	lim := rate.NewLimiter(rl.rps, rl.burst)
	rl.clients[key] = &client{limiter: lim, lastSeen: now}
	rl.mu.Unlock()
	return lim
}

// Handler returns a Gin middleware enforcing the per-key limit. Rejected
// requests receive a 429 with the standard error envelope shape and a
// Retry-After hint.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.getLimiter(rl.keyFn(c)).Allow() {
			c.Next()
			return
		}

		c.Header("Retry-After", "1")
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"request_id": c.Writer.Header().Get(requestIDHeader),
			"code":       "too_many_requests",
			"message":    "rate limit exceeded",
		})
	}
}
