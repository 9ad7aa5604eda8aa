// Package security holds request-level guards applied in front of the
// scan API.
package security

import (
	"sync"
	"time"

	"github.com/egressguard/egressguard/internal/config"
	"golang.org/x/time/rate"
)

// RateLimiter applies a token-bucket limit per client IP.
type RateLimiter struct {
	config  config.RateLimitConfig
	mu      sync.Mutex
	clients map[string]*clientLimiter
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a new per-client rate limiter.
func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		config:  cfg,
		clients: make(map[string]*clientLimiter),
	}
}

// UpdateConfig applies new limits. Existing per-client buckets are
// discarded so the new rate takes effect immediately.
func (r *RateLimiter) UpdateConfig(cfg config.RateLimitConfig) {
	r.mu.Lock()
	r.config = cfg
	r.clients = make(map[string]*clientLimiter)
	r.mu.Unlock()
}

// Allow reports whether a request from clientIP may proceed.
func (r *RateLimiter) Allow(clientIP string) bool {
	r.mu.Lock()
	if !r.config.Enabled {
		r.mu.Unlock()
		return true
	}

	cl, ok := r.clients[clientIP]
	if !ok {
		cl = &clientLimiter{
			limiter: rate.NewLimiter(rate.Limit(r.config.RequestsPerSec), r.config.Burst),
		}
		r.clients[clientIP] = cl
	}
	cl.lastSeen = time.Now()
	r.mu.Unlock()

	return cl.limiter.Allow()
}

// Cleanup removes limiters idle for longer than maxIdle.
func (r *RateLimiter) Cleanup(maxIdle time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().Add(-maxIdle)
	for ip, cl := range r.clients {
		if cl.lastSeen.Before(cutoff) {
			delete(r.clients, ip)
		}
	}
}

// StartCleanupRoutine evicts idle client buckets in the background.
func (r *RateLimiter) StartCleanupRoutine() {
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			r.Cleanup(time.Hour)
		}
	}()
}
