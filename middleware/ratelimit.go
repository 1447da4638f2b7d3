// middleware/ratelimit.go - Per-IP token bucket rate limiting
package middleware

import (
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
)

type tokenBucket struct {
	tokens         float64
	maxTokens      float64
	refillRate     float64 // tokens per second
	lastRefillTime time.Time
	mu             sync.Mutex
}

func newTokenBucket(maxTokens, refillRate float64) *tokenBucket {
	return &tokenBucket{
		tokens:         maxTokens,
		maxTokens:      maxTokens,
		refillRate:     refillRate,
		lastRefillTime: time.Now(),
	}
}

func (tb *tokenBucket) allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(tb.lastRefillTime).Seconds()
	tb.tokens += elapsed * tb.refillRate
	if tb.tokens > tb.maxTokens {
		tb.tokens = tb.maxTokens
	}
	tb.lastRefillTime = now

	if tb.tokens >= 1 {
		tb.tokens--
		return true
	}
	return false
}

type rateLimiter struct {
	buckets map[string]*tokenBucket
	mu      sync.RWMutex

	maxTokens  float64
	refillRate float64
}

func newRateLimiter(maxTokens, refillRate float64) *rateLimiter {
	rl := &rateLimiter{
		buckets:    make(map[string]*tokenBucket),
		maxTokens:  maxTokens,
		refillRate: refillRate,
	}
	go rl.cleanupLoop()
	return rl
}

func (rl *rateLimiter) allow(key string) bool {
	rl.mu.RLock()
	bucket, ok := rl.buckets[key]
	rl.mu.RUnlock()

	if !ok {
		rl.mu.Lock()
		bucket, ok = rl.buckets[key]
		if !ok {
			bucket = newTokenBucket(rl.maxTokens, rl.refillRate)
			rl.buckets[key] = bucket
		}
		rl.mu.Unlock()
	}
	return bucket.allow()
}

// cleanupLoop drops buckets that have refilled completely, so idle
// clients do not accumulate forever.
func (rl *rateLimiter) cleanupLoop() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		for key, bucket := range rl.buckets {
			bucket.mu.Lock()
			full := bucket.tokens >= bucket.maxTokens
			bucket.mu.Unlock()
			if full {
				delete(rl.buckets, key)
			}
		}
		rl.mu.Unlock()
	}
}

func limiterMiddleware(rl *rateLimiter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !rl.allow(c.IP()) {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"message": "Too many requests. Please slow down.",
			})
		}
		return c.Next()
	}
}

// RateLimit limits general API traffic per client IP.
func RateLimit() fiber.Handler {
	max := envFloat("RATE_LIMIT_MAX", 120)
	return limiterMiddleware(newRateLimiter(max, max/60))
}

// AuthRateLimit applies a stricter budget to authentication routes.
func AuthRateLimit() fiber.Handler {
	max := envFloat("AUTH_RATE_LIMIT_MAX", 20)
	return limiterMiddleware(newRateLimiter(max, max/60))
}

func envFloat(key string, fallback float64) float64 {
	if raw := os.Getenv(key); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil && v > 0 {
			return v
		}
	}
	return fallback
}
