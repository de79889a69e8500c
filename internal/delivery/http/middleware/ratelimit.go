package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	h "eventsphere/internal/delivery/http/helpers"
)

// RateLimitConfig configures the per-client token bucket.
type RateLimitConfig struct {
	RPS     float64
	Burst   int
	IdleTTL time.Duration
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client IP in memory.
// Buckets idle for longer than IdleTTL are dropped on the next sweep.
type RateLimiter struct {
	conf      RateLimitConfig
	mu        sync.Mutex
	clients   map[string]*clientLimiter
	lastSweep time.Time
	now       func() time.Time
}

// NewRateLimiter returns a limiter; IdleTTL defaults to three minutes.
func NewRateLimiter(conf RateLimitConfig) *RateLimiter {
	if conf.IdleTTL <= 0 {
		conf.IdleTTL = 3 * time.Minute
	}
	return &RateLimiter{
		conf:    conf,
		clients: make(map[string]*clientLimiter),
		now:     time.Now,
	}
}

func (rl *RateLimiter) limiterFor(key string) *rate.Limiter {
	now := rl.now()
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if now.Sub(rl.lastSweep) > rl.conf.IdleTTL {
		for k, c := range rl.clients {
			if now.Sub(c.lastSeen) > rl.conf.IdleTTL {
				delete(rl.clients, k)
			}
		}
		rl.lastSweep = now
	}

	if c, ok := rl.clients[key]; ok {
		c.lastSeen = now
		return c.limiter
	}
	lim := rate.NewLimiter(rate.Limit(rl.conf.RPS), rl.conf.Burst)
	rl.clients[key] = &clientLimiter{limiter: lim, lastSeen: now}
	return lim
}

// Limit wraps next and answers 429 once the caller's bucket is empty.
func (rl *RateLimiter) Limit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !rl.limiterFor(clientIP(r)).AllowN(rl.now(), 1) {
			w.Header().Set("Retry-After", "1")
			h.WriteJSONError(w, http.StatusTooManyRequests, h.ErrCodeTooManyRequests, "too many requests, please try again later")
			return
		}
		next(w, r)
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
