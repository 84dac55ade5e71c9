package server

import (
	"net/http"
	"strconv"
	"sync"
	"time"
)

// Limit is a request budget over a rolling window, applied per client
// address.
type Limit struct {
	Requests int
	Window   time.Duration
}

// Per-scope budgets. Webhooks are lenient to tolerate provider retries;
// the location endpoint is the tightest because it writes the profile.
var (
	LimitGeneral  = Limit{Requests: 100, Window: 15 * time.Minute}
	LimitChat     = Limit{Requests: 20, Window: time.Minute}
	LimitWebhook  = Limit{Requests: 200, Window: 5 * time.Minute}
	LimitLocation = Limit{Requests: 10, Window: 10 * time.Minute}
)

type bucket struct {
	tokens   float64
	lastSeen time.Time
}

// limiter is a token-bucket rate limiter keyed by client address. Each
// scope gets its own limiter so the budgets never interfere.
type limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   Limit
	now     func() time.Time
}

func newLimiter(limit Limit) *limiter {
	return &limiter{
		buckets: make(map[string]*bucket),
		limit:   limit,
		now:     time.Now,
	}
}

// allow refills the caller's bucket proportionally to elapsed time and
// takes one token if available.
func (l *limiter) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok {
		if len(l.buckets) > 10000 {
			l.sweepLocked(now)
		}
		b = &bucket{tokens: float64(l.limit.Requests), lastSeen: now}
		l.buckets[key] = b
	}

	refill := now.Sub(b.lastSeen).Seconds() / l.limit.Window.Seconds() * float64(l.limit.Requests)
	b.tokens += refill
	if b.tokens > float64(l.limit.Requests) {
		b.tokens = float64(l.limit.Requests)
	}
	b.lastSeen = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

func (l *limiter) sweepLocked(now time.Time) {
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) > l.limit.Window {
			delete(l.buckets, key)
		}
	}
}

// retryAfter is the hint returned with a 429, in whole seconds.
func (l *limiter) retryAfter() int {
	secs := int(l.limit.Window.Seconds()) / l.limit.Requests
	if secs < 1 {
		secs = 1
	}
	return secs
}

// RateLimit returns middleware enforcing the given budget per client
// address. Exceeding it yields 429 with a Retry-After hint.
func RateLimit(limit Limit) func(http.Handler) http.Handler {
	l := newLimiter(limit)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.allow(r.RemoteAddr) {
				w.Header().Set("Retry-After", strconv.Itoa(l.retryAfter()))
				writeJSON(w, http.StatusTooManyRequests, map[string]string{
					"error": "rate limit exceeded, slow down",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
