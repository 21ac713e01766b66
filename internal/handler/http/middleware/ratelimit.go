// Package middleware provides HTTP middleware for the API server.
package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"popstats/internal/handler/http/respond"
)

// IPRateLimiterConfig holds configuration for the per-IP rate limiter.
type IPRateLimiterConfig struct {
	// RequestsPerSecond is the sustained request rate allowed per client IP.
	// Default: 10
	RequestsPerSecond float64

	// Burst is the maximum burst size allowed per client IP.
	// Default: 20
	Burst int

	// Enabled controls whether rate limiting is active.
	Enabled bool
}

// DefaultIPRateLimiterConfig returns the default per-IP rate limiter configuration.
func DefaultIPRateLimiterConfig() IPRateLimiterConfig {
	return IPRateLimiterConfig{
		RequestsPerSecond: 10,
		Burst:             20,
		Enabled:           true,
	}
}

// visitor tracks the limiter and last activity for one client IP.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter enforces a per-IP token bucket on incoming requests.
// Requests over the limit receive 429 with a Retry-After header. When the
// client IP cannot be determined the limiter fails open so availability
// is not hostage to a malformed RemoteAddr.
type IPRateLimiter struct {
	config IPRateLimiterConfig

	mu       sync.Mutex
	visitors map[string]*visitor
}

// NewIPRateLimiter creates a per-IP rate limiter with the given configuration.
func NewIPRateLimiter(config IPRateLimiterConfig) *IPRateLimiter {
	if config.RequestsPerSecond <= 0 {
		config.RequestsPerSecond = 10
	}
	if config.Burst <= 0 {
		config.Burst = 20
	}
	return &IPRateLimiter{
		config:   config,
		visitors: make(map[string]*visitor),
	}
}

// Middleware returns an HTTP middleware that enforces the per-IP limit.
func (rl *IPRateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.config.Enabled {
				next.ServeHTTP(w, r)
				return
			}

			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				slog.Error("rate limiter: failed to extract IP, allowing request",
					slog.String("remote_addr", r.RemoteAddr),
					slog.String("error", err.Error()))
				next.ServeHTTP(w, r)
				return
			}

			if !rl.allow(ip) {
				w.Header().Set("Retry-After", "1")
				w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.config.Burst))
				slog.Warn("rate limit exceeded",
					slog.String("ip", ip),
					slog.String("path", r.URL.Path),
					slog.String("method", r.Method))
				respond.JSON(w, http.StatusTooManyRequests, map[string]string{
					"error": "rate limit exceeded",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// allow reports whether a request from ip may proceed, creating the
// per-IP bucket on first sight.
func (rl *IPRateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	v, ok := rl.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rate.Limit(rl.config.RequestsPerSecond), rl.config.Burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = time.Now()
	rl.mu.Unlock()

	return v.limiter.Allow()
}

// ActiveKeys returns the number of IPs currently tracked.
func (rl *IPRateLimiter) ActiveKeys() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.visitors)
}

// Cleanup removes visitors idle longer than maxIdle. It returns the
// number of entries removed.
func (rl *IPRateLimiter) Cleanup(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	removed := 0
	for ip, v := range rl.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(rl.visitors, ip)
			removed++
		}
	}
	return removed
}
