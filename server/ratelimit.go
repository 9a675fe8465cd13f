package server

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/esime/ielec/config"
)

// rateLimiter is an in-memory token bucket per client key. Each key gets
// limit requests per window; whole elapsed windows refill the bucket.
type rateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*tokenBucket
	limit   int
	window  time.Duration
	now     func() time.Time
}

type tokenBucket struct {
	tokens     int
	lastRefill time.Time
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	if limit <= 0 {
		limit = 60
	}
	if window <= 0 {
		window = time.Minute
	}
	return &rateLimiter{
		buckets: make(map[string]*tokenBucket),
		limit:   limit,
		window:  window,
		now:     time.Now,
	}
}

// Allow takes a token for key. When the bucket is empty it returns false
// and how long until the next refill.
func (rl *rateLimiter) Allow(key string) (bool, time.Duration) {
	if rl == nil {
		return true, 0
	}
	if key == "" {
		key = "__global__"
	}
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	bucket, ok := rl.buckets[key]
	if !ok {
		rl.buckets[key] = &tokenBucket{tokens: rl.limit - 1, lastRefill: now}
		return true, 0
	}

	if elapsed := now.Sub(bucket.lastRefill); elapsed >= rl.window {
		bucket.tokens = min(rl.limit, bucket.tokens+int(elapsed/rl.window)*rl.limit)
		bucket.lastRefill = now
	}
	if bucket.tokens <= 0 {
		return false, bucket.lastRefill.Add(rl.window).Sub(now)
	}
	bucket.tokens--
	return true, 0
}

// Sweep drops buckets idle for more than a window, which are full again
// anyway.
func (rl *rateLimiter) Sweep() {
	if rl == nil {
		return
	}
	now := rl.now()
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, b := range rl.buckets {
		if now.Sub(b.lastRefill) > rl.window {
			delete(rl.buckets, key)
		}
	}
}

// limitRequests rejects clients over their budget with 429 and a
// Retry-After header.
func (rl *rateLimiter) limitRequests(next http.Handler, proxy config.ProxyConfig) http.Handler {
	if rl == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, wait := rl.Allow(ClientIP(r, proxy))
		if !ok {
			secs := int(wait.Round(time.Second) / time.Second)
			w.Header().Set("Retry-After", strconv.Itoa(max(1, secs)))
			writeError(w, http.StatusTooManyRequests, "Demasiadas solicitudes, intenta más tarde")
			return
		}
		next.ServeHTTP(w, r)
	})
}
