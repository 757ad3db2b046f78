package webserver

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter is a sliding window counter per key. Idle keys are pruned once per window.
type RateLimiter struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	rate     int
	window   time.Duration
	pruned   time.Time
	now      func() time.Time
}

// NewRateLimiter allows rate requests per window and key. rate <= 0 disables limiting.
func NewRateLimiter(rate int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		requests: make(map[string][]time.Time),
		rate:     rate,
		window:   window,
		now:      time.Now,
	}
}

func (rl *RateLimiter) Allow(key string) bool {
	if rl.rate <= 0 {
		return true
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.pruned) >= rl.window {
		rl.prune(now)
	}

	valid := recent(rl.requests[key], now, rl.window)
	if len(valid) >= rl.rate {
		rl.requests[key] = valid
		return false
	}
	rl.requests[key] = append(valid, now)
	return true
}

func (rl *RateLimiter) prune(now time.Time) {
	for key, times := range rl.requests {
		if valid := recent(times, now, rl.window); len(valid) > 0 {
			rl.requests[key] = valid
		} else {
			delete(rl.requests, key)
		}
	}
	rl.pruned = now
}

func recent(times []time.Time, now time.Time, window time.Duration) []time.Time {
	i := 0
	for i < len(times) && now.Sub(times[i]) >= window {
		i++
	}
	return times[i:]
}

// RateLimitMiddleware keys requests by the signed-in address, or the client IP.
func RateLimitMiddleware(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetString(addrKey)
		if key == "" {
			key = c.ClientIP()
		}
		if !limiter.Allow(key) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"err": fmt.Sprintf("rate limit exceeded: %d requests per %v", limiter.rate, limiter.window),
			})
			return
		}
		c.Next()
	}
}
