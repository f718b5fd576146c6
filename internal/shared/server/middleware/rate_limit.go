package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"diabetes-backend/internal/shared/server/respond"
)

// maxBuckets bounds limiter memory; full buckets are swept when exceeded.
const maxBuckets = 10000

// RateLimitRule is a token bucket: Rate tokens per second up to Burst.
type RateLimitRule struct {
	Rate  float64
	Burst int
}

// RateLimitConfig configures RateLimit. Requests are keyed by client IP.
type RateLimitConfig struct {
	Rule    RateLimitRule
	Limiter *RateLimiter
	// Group separates buckets of different limited routes.
	Group string
	// OnLimit writes the rejection; the default is a 429 error body.
	OnLimit func(c *gin.Context, retryAfter time.Duration)
}

// RateLimiter holds token buckets keyed by caller.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*rateBucket
	now     func() time.Time
}

type rateBucket struct {
	tokens float64
	last   time.Time
}

// NewRateLimiter constructs a limiter; a nil clock uses time.Now.
func NewRateLimiter(now func() time.Time) *RateLimiter {
	if now == nil {
		now = time.Now
	}
	return &RateLimiter{buckets: make(map[string]*rateBucket), now: now}
}

// RateLimit rejects callers that exhaust their bucket.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.Limiter == nil {
		cfg.Limiter = NewRateLimiter(nil)
	}
	if cfg.OnLimit == nil {
		cfg.OnLimit = defaultOnLimit
	}
	return func(c *gin.Context) {
		allowed, retryAfter := cfg.Limiter.Allow(c.ClientIP()+"|"+cfg.Group, cfg.Rule)
		if allowed {
			c.Next()
			return
		}
		c.Header("Retry-After", strconv.Itoa(retryAfterSeconds(retryAfter)))
		cfg.OnLimit(c, retryAfter)
		c.Abort()
	}
}

func defaultOnLimit(c *gin.Context, retryAfter time.Duration) {
	respond.Error(c, http.StatusTooManyRequests, "rate_limited", "Too many requests", gin.H{
		"retryAfterMs": retryAfter.Milliseconds(),
	})
}

func retryAfterSeconds(d time.Duration) int {
	secs := int(math.Ceil(d.Seconds()))
	if secs <= 0 {
		secs = 1
	}
	return secs
}

// Allow takes one token for key. When none is left it reports how long until
// the next token. A non-positive rule disables limiting.
func (l *RateLimiter) Allow(key string, rule RateLimitRule) (bool, time.Duration) {
	if l == nil || rule.Rate <= 0 || rule.Burst <= 0 {
		return true, 0
	}
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	bucket, ok := l.buckets[key]
	if !ok {
		if len(l.buckets) >= maxBuckets {
			l.sweep(now, rule)
		}
		bucket = &rateBucket{tokens: float64(rule.Burst), last: now}
		l.buckets[key] = bucket
	}
	if elapsed := now.Sub(bucket.last).Seconds(); elapsed > 0 {
		bucket.tokens = math.Min(float64(rule.Burst), bucket.tokens+elapsed*rule.Rate)
		bucket.last = now
	}
	if bucket.tokens >= 1 {
		bucket.tokens--
		return true, 0
	}
	wait := (1 - bucket.tokens) / rule.Rate
	return false, time.Duration(math.Ceil(wait*1000)) * time.Millisecond
}

// sweep drops buckets that would be full by now.
func (l *RateLimiter) sweep(now time.Time, rule RateLimitRule) {
	refill := time.Duration(float64(rule.Burst) / rule.Rate * float64(time.Second))
	for key, b := range l.buckets {
		if now.Sub(b.last) >= refill {
			delete(l.buckets, key)
		}
	}
}

// Len reports how many buckets are tracked.
func (l *RateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}
