package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/askdb-labs/askdb-engine/pkg/apperrors"
)

// RateLimiter enforces a per-caller request interval. Callers are keyed by
// remote IP; each key gets its own token bucket allowing one request per
// interval with a burst of one.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*callerLimiter
	interval time.Duration
}

type callerLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a limiter allowing one request per interval per
// caller. Idle callers are forgotten after ten intervals.
func NewRateLimiter(interval time.Duration) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*callerLimiter),
		interval: interval,
	}
}

// Allow reports whether the caller identified by key may proceed now.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	entry, ok := rl.limiters[key]
	if !ok {
		entry = &callerLimiter{
			limiter: rate.NewLimiter(rate.Every(rl.interval), 1),
		}
		rl.limiters[key] = entry
	}
	entry.lastSeen = time.Now()

	rl.evictIdle()
	return entry.limiter.Allow()
}

// evictIdle drops callers not seen for ten intervals. Caller holds the lock.
func (rl *RateLimiter) evictIdle() {
	cutoff := time.Now().Add(-10 * rl.interval)
	for key, entry := range rl.limiters {
		if entry.lastSeen.Before(cutoff) {
			delete(rl.limiters, key)
		}
	}
}

// Middleware wraps a handler, answering 429 when the caller's interval has
// not elapsed.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(CallerKey(r)) {
			w.Header().Set("Retry-After", rl.interval.String())
			http.Error(w, apperrors.ErrRateLimited.Error(), http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// CallerKey identifies the caller for rate-limiting purposes. The remote IP
// without the port keeps one caller on one bucket across connections.
func CallerKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
