package middleware

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"projectdrive/config"
	"projectdrive/utils"

	"github.com/gin-gonic/gin"
)

type RateLimiter struct {
	visitors map[string]*Visitor
	mutex    sync.RWMutex
	rate     time.Duration
	burst    int
}

type Visitor struct {
	limiter  *TokenBucket
	lastSeen time.Time
}

type TokenBucket struct {
	tokens     int
	capacity   int
	refillRate time.Duration
	lastRefill time.Time
	mutex      sync.Mutex
}

// Drive-facing operations get tighter limits than plain reads because
// each one fans out into remote API calls.
var (
	rateLimiters = map[string]*RateLimiter{
		"global":    NewRateLimiter(time.Minute, 120), // 120 requests per minute
		"scan":      NewRateLimiter(time.Minute, 10),  // 10 scans per minute
		"reconcile": NewRateLimiter(time.Minute, 2),   // 2 reconciliation runs per minute
		"bulk":      NewRateLimiter(time.Minute, 6),   // 6 bulk batches per minute
		"content":   NewRateLimiter(time.Minute, 60),  // 60 content transfers per minute
	}
)

func NewRateLimiter(rate time.Duration, burst int) *RateLimiter {
	rl := &RateLimiter{
		visitors: make(map[string]*Visitor),
		rate:     rate,
		burst:    burst,
	}

	// Clean up expired visitors every 10 minutes
	go rl.cleanupVisitors()

	return rl
}

func NewTokenBucket(capacity int, refillRate time.Duration) *TokenBucket {
	return &TokenBucket{
		tokens:     capacity,
		capacity:   capacity,
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

func (tb *TokenBucket) Allow() bool {
	tb.mutex.Lock()
	defer tb.mutex.Unlock()

	now := time.Now()
	elapsed := now.Sub(tb.lastRefill)

	// Refill tokens based on elapsed time
	if elapsed >= tb.refillRate {
		tokensToAdd := int(elapsed / tb.refillRate)
		tb.tokens = min(tb.capacity, tb.tokens+tokensToAdd)
		tb.lastRefill = now
	}

	if tb.tokens > 0 {
		tb.tokens--
		return true
	}

	return false
}

func (rl *RateLimiter) Allow(key string) bool {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	visitor, exists := rl.visitors[key]
	if !exists {
		visitor = &Visitor{
			limiter:  NewTokenBucket(rl.burst, rl.rate),
			lastSeen: time.Now(),
		}
		rl.visitors[key] = visitor
	}

	visitor.lastSeen = time.Now()
	return visitor.limiter.Allow()
}

func (rl *RateLimiter) cleanupVisitors() {
	for {
		time.Sleep(10 * time.Minute)

		rl.mutex.Lock()
		for key, visitor := range rl.visitors {
			if time.Since(visitor.lastSeen) > time.Hour {
				delete(rl.visitors, key)
			}
		}
		rl.mutex.Unlock()
	}
}

// RateLimitMiddleware applies the global rate limit based on client IP
func RateLimitMiddleware() gin.HandlerFunc {
	return RateLimitWithType("global")
}

// RateLimitWithType applies specific rate limiting type
func RateLimitWithType(limitType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if config.AppConfig != nil && !config.AppConfig.RateLimitEnabled {
			c.Next()
			return
		}

		limiter, exists := rateLimiters[limitType]
		if !exists {
			limiter = rateLimiters["global"]
		}

		clientID := getClientID(c)

		if !limiter.Allow(clientID) {
			// Set rate limit headers
			c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.burst))
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(limiter.rate).Unix(), 10))

			utils.TooManyRequestsResponse(c, "Rate limit exceeded")
			c.Abort()
			return
		}

		c.Next()
	}
}

// ScanRateLimitMiddleware applies rate limiting for scan endpoints
func ScanRateLimitMiddleware() gin.HandlerFunc {
	return RateLimitWithType("scan")
}

// ReconcileRateLimitMiddleware applies rate limiting for reconciliation runs
func ReconcileRateLimitMiddleware() gin.HandlerFunc {
	return RateLimitWithType("reconcile")
}

// BulkRateLimitMiddleware applies rate limiting for bulk move batches
func BulkRateLimitMiddleware() gin.HandlerFunc {
	return RateLimitWithType("bulk")
}

// ContentRateLimitMiddleware applies rate limiting for content transfers
func ContentRateLimitMiddleware() gin.HandlerFunc {
	return RateLimitWithType("content")
}

// getClientID returns client identifier for rate limiting
func getClientID(c *gin.Context) string {
	return fmt.Sprintf("ip:%s", c.ClientIP())
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
