package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/interfaces/http/dto"
)

// RateLimiter hands out one token bucket per key: limit requests per
// window, refilled evenly. Buckets idle for two windows are evicted.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   int
	window  time.Duration
	refill  rate.Limit

	stop     chan struct{}
	stopOnce sync.Once
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter starts the eviction loop; Stop ends it.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	limit = max(limit, 1)
	if window <= 0 {
		window = time.Minute
	}
	rl := &RateLimiter{
		buckets: make(map[string]*bucket),
		limit:   limit,
		window:  window,
		refill:  rate.Every(window / time.Duration(limit)),
		stop:    make(chan struct{}),
	}
	go rl.evictIdle()
	return rl
}

func (rl *RateLimiter) evictIdle() {
	ticker := time.NewTicker(2 * rl.window)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
		case <-rl.stop:
			return
		}
		cutoff := time.Now().Add(-2 * rl.window)
		rl.mu.Lock()
		for key, b := range rl.buckets {
			if b.lastSeen.Before(cutoff) {
				delete(rl.buckets, key)
			}
		}
		rl.mu.Unlock()
	}
}

// Stop ends the eviction loop. Safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) bucketFor(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rl.refill, rl.limit)}
		rl.buckets[key] = b
	}
	b.lastSeen = time.Now()
	return b.limiter
}

// Allow takes a token from key's bucket.
func (rl *RateLimiter) Allow(key string) bool {
	return rl.bucketFor(key).Allow()
}

// Remaining is the number of whole tokens left for key.
func (rl *RateLimiter) Remaining(key string) int {
	rl.mu.Lock()
	b, ok := rl.buckets[key]
	rl.mu.Unlock()
	if !ok {
		return rl.limit
	}
	return max(int(b.limiter.Tokens()), 0)
}

// retryAfter is the wait for the next token, in whole seconds.
func (rl *RateLimiter) retryAfter() string {
	return strconv.Itoa(max(int(math.Ceil((rl.window / time.Duration(rl.limit)).Seconds())), 1))
}

// RateLimit throttles every request by client IP.
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return throttle(limiter, "", "Trop de requêtes, réessayez plus tard")
}

// AuthRateLimit throttles login and token refresh per client IP. Its keys
// are prefixed so a limiter shared with other routes keeps separate buckets.
func AuthRateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return throttle(limiter, "auth:", "Trop de tentatives de connexion, réessayez plus tard")
}

func throttle(limiter *RateLimiter, prefix, message string) gin.HandlerFunc {
	limit := strconv.Itoa(limiter.limit)
	return func(c *gin.Context) {
		key := prefix + c.ClientIP()
		c.Header("X-RateLimit-Limit", limit)
		if !limiter.Allow(key) {
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", limiter.retryAfter())
			abortWithError(c, http.StatusTooManyRequests, dto.ErrCodeRateLimited, message)
			return
		}
		c.Header("X-RateLimit-Remaining", strconv.Itoa(limiter.Remaining(key)))
		c.Next()
	}
}
