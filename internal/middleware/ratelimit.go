package middleware

import (
	"net/http"
	"sync"

	"golang.org/x/time/rate"
)

// ipLimiter hands out one token-bucket limiter per client IP.
// The map is pruned whenever it grows past maxTrackedIPs: limiters with a
// full bucket have been idle long enough to be recreated cheaply.
type ipLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

const maxTrackedIPs = 4096

func (l *ipLimiter) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.limiters[ip]
	if !ok {
		if len(l.limiters) >= maxTrackedIPs {
			l.prune()
		}
		lim = rate.NewLimiter(l.rate, l.burst)
		l.limiters[ip] = lim
	}
	return lim
}

// prune drops limiters whose bucket is full. Callers must hold mu.
func (l *ipLimiter) prune() {
	for ip, lim := range l.limiters {
		if lim.Tokens() >= float64(l.burst) {
			delete(l.limiters, ip)
		}
	}
}

// NewRateLimit returns a middleware that limits each client IP to rps
// requests per second with the given burst, responding 429 beyond that.
// Wire it after chimiddleware.RealIP so r.RemoteAddr reflects the true
// client behind a proxy. Intended for the auth endpoints, where unthrottled
// requests would let an attacker grind passwords offline-speed.
func NewRateLimit(rps float64, burst int) func(http.Handler) http.Handler {
	l := &ipLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(rps),
		burst:    burst,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.get(r.RemoteAddr).Allow() {
				writeError(w, http.StatusTooManyRequests, "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
