package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	visitorTTL    = 3 * time.Minute // Idle time after which a client's bucket is forgotten
	sweepInterval = time.Minute     // Minimum gap between two sweeps of the visitor map
)

// RateLimiter implements a per-IP token bucket rate limiter.
// It guards the checkout route, where each request creates a provider session.
type RateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor // Keyed by client IP
	rate      rate.Limit          // Tokens added per second
	burst     int                 // Bucket size
	lastSweep time.Time
	now       func() time.Time // Replaced in tests
}

// visitor is one client's bucket and the last time it was used.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a rate limiter with the given requests per second and burst size.
// Idle visitors are swept on the request path, so no goroutine is started.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		visitors:  make(map[string]*visitor),
		rate:      rate.Limit(rps),
		burst:     burst,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

// Middleware rejects requests over the limit with 429 and a Retry-After header.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Take one token from this client's bucket; an empty bucket rejects the request.
		limiter := rl.limiterFor(c.ClientIP())
		if !limiter.Allow() {
			c.Header("Retry-After", strconv.Itoa(rl.retryAfterSeconds()))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded, try again later",
			})
			return
		}
		c.Next()
	}
}

// limiterFor returns the bucket for ip, creating it on first use.
func (rl *RateLimiter) limiterFor(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	// Drop buckets of clients that have been idle longer than visitorTTL.
	now := rl.now()
	if now.Sub(rl.lastSweep) > sweepInterval {
		for key, v := range rl.visitors {
			if now.Sub(v.lastSeen) > visitorTTL {
				delete(rl.visitors, key)
			}
		}
		rl.lastSweep = now
	}

	v, ok := rl.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter
}

// retryAfterSeconds is the time until one token is refilled, rounded up to a whole second.
func (rl *RateLimiter) retryAfterSeconds() int {
	if rl.rate <= 0 {
		return 60
	}
	return int(math.Max(1, math.Ceil(1/float64(rl.rate))))
}

func (rl *RateLimiter) visitorCount() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.visitors)
}
