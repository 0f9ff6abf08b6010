// Package ratelimiter limits how often a client may repeat an operation.
package ratelimiter

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type window struct {
	count     int
	lastReset time.Time
}

// RateLimiter is a fixed-window counter per key.
type RateLimiter struct {
	mu       sync.Mutex
	limit    int           // operations allowed per interval
	interval time.Duration // window length
	windows  map[string]*window
	now      func() time.Time
}

// NewRateLimiter creates a limiter allowing limit operations per interval for each key.
func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:    limit,
		interval: interval,
		windows:  make(map[string]*window),
		now:      time.Now,
	}
}

// Allow counts one operation for key and reports whether it is within the limit.
// A non-positive limit disables limiting.
func (rl *RateLimiter) Allow(key string) bool {
	if rl.limit <= 0 {
		return true
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, ok := rl.windows[key]
	// Reset the count once the interval has passed.
	if !ok || now.Sub(w.lastReset) >= rl.interval {
		w = &window{lastReset: now}
		rl.windows[key] = w
	}

	w.count++
	return w.count <= rl.limit
}

// Prune drops windows that have already elapsed.
func (rl *RateLimiter) Prune() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for key, w := range rl.windows {
		if now.Sub(w.lastReset) >= rl.interval {
			delete(rl.windows, key)
		}
	}
}

// RunPruner calls Prune every interval until ctx is done.
func (rl *RateLimiter) RunPruner(ctx context.Context, every time.Duration) {
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.Prune()
		}
	}
}

// Middleware rejects requests with 429 once a client IP exceeds the limit on a route.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	retryAfter := strconv.Itoa(int(math.Ceil(rl.interval.Seconds())))
	return func(c *gin.Context) {
		key := c.ClientIP() + " " + c.FullPath()
		if !rl.Allow(key) {
			slog.Warn("rate limit exceeded", "remote_addr", c.ClientIP(), "path", c.FullPath())
			c.Header("Retry-After", retryAfter)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
