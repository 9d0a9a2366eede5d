package middleware

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/bookstore/auth/authctx"
	apperrors "github.com/kbukum/bookstore/errors"
)

// RateLimitConfig configures RateLimit.
type RateLimitConfig struct {
	// Requests allowed per key within Window. Defaults to 60.
	Requests int
	// Window defaults to one minute.
	Window time.Duration
	// KeyFunc defaults to IPBasedKey.
	KeyFunc func(*gin.Context) string
	// Now defaults to time.Now.
	Now func() time.Time
}

// RateLimit rejects a key's requests beyond the limit within a sliding
// window with 429 and a Retry-After header in whole seconds.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.Requests <= 0 {
		cfg.Requests = 60
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = IPBasedKey
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	w := &slidingWindow{hits: make(map[string][]time.Time), limit: cfg.Requests, window: cfg.Window}
	return func(c *gin.Context) {
		wait, ok := w.take(cfg.KeyFunc(c), cfg.Now())
		if !ok {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			abort(c, apperrors.RateLimited())
			return
		}
		c.Next()
	}
}

// IPBasedKey keys on the client IP.
func IPBasedKey(c *gin.Context) string {
	return c.ClientIP()
}

// UserBasedKey keys on the authenticated user, falling back to client IP.
func UserBasedKey(c *gin.Context) string {
	if claims, ok := authctx.Get(c.Request.Context()); ok && claims.UserID() != "" {
		return claims.UserID()
	}
	return c.ClientIP()
}

// slidingWindow keeps the hit times of each key inside the window. Keys with
// no recent hits are dropped on a sweep at most once per window.
type slidingWindow struct {
	mu        sync.Mutex
	hits      map[string][]time.Time
	limit     int
	window    time.Duration
	lastSweep time.Time
}

// take records a hit for key, or reports how long until one is allowed.
func (w *slidingWindow) take(key string, now time.Time) (time.Duration, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	cutoff := now.Add(-w.window)
	if now.Sub(w.lastSweep) > w.window {
		for k, times := range w.hits {
			if recent := since(times, cutoff); len(recent) == 0 {
				delete(w.hits, k)
			} else {
				w.hits[k] = recent
			}
		}
		w.lastSweep = now
	}

	recent := since(w.hits[key], cutoff)
	if len(recent) >= w.limit {
		w.hits[key] = recent
		return recent[0].Sub(cutoff), false
	}
	w.hits[key] = append(recent, now)
	return 0, true
}

// since drops the leading times at or before cutoff. times is ascending.
func since(times []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(times) && !times[i].After(cutoff) {
		i++
	}
	return times[i:]
}
