package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter throttles the mutating local-API endpoints (click, ack,
// mark-all-read, permission request) per caller. A runaway UI render loop
// re-firing clicks must not turn into a mark-read storm against the
// storefront backend.
type RateLimiter struct {
	mu      sync.Mutex
	callers map[string]*callerLimiter
	r       rate.Limit
	burst   int
}

type callerLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a per-caller token bucket: r requests/second,
// bursting up to burst.
func NewRateLimiter(r rate.Limit, burst int) *RateLimiter {
	rl := &RateLimiter{
		callers: make(map[string]*callerLimiter),
		r:       r,
		burst:   burst,
	}
	go rl.cleanup()
	return rl
}

func (rl *RateLimiter) get(caller string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if v, ok := rl.callers[caller]; ok {
		v.lastSeen = time.Now()
		return v.limiter
	}
	l := rate.NewLimiter(rl.r, rl.burst)
	rl.callers[caller] = &callerLimiter{limiter: l, lastSeen: time.Now()}
	return l
}

// cleanup drops entries for callers not seen in a while.
func (rl *RateLimiter) cleanup() {
	for {
		time.Sleep(5 * time.Minute)
		rl.mu.Lock()
		for caller, v := range rl.callers {
			if time.Since(v.lastSeen) > 10*time.Minute {
				delete(rl.callers, caller)
			}
		}
		rl.mu.Unlock()
	}
}

// callerKey identifies a caller by host only: the ephemeral port changes per
// connection and must not reset the bucket.
func callerKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Limit is the middleware handler that enforces the rate limit per remote addr.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.get(callerKey(r)).Allow() {
			writeJSONError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}
