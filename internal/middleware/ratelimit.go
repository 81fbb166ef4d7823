package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	appErrors "github.com/noah-isme/study-mission-api/pkg/errors"
	"github.com/noah-isme/study-mission-api/pkg/response"
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per caller.
type RateLimiter struct {
	rps     rate.Limit
	burst   int
	idleTTL time.Duration
	logger  *zap.Logger
	now     func() time.Time

	mu      sync.Mutex
	entries map[string]*limiterEntry
}

// NewRateLimiter builds a limiter allowing rps requests per second with the given burst.
func NewRateLimiter(rps float64, burst int, logger *zap.Logger) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateLimiter{
		rps:     rate.Limit(rps),
		burst:   burst,
		idleTTL: 10 * time.Minute,
		logger:  logger,
		now:     time.Now,
		entries: make(map[string]*limiterEntry),
	}
}

// Middleware throttles per authenticated member, falling back to the client IP.
func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l == nil || l.rps <= 0 {
			c.Next()
			return
		}
		key := "ip:" + c.ClientIP()
		if claims, ok := Claims(c); ok {
			key = "user:" + claims.UserID
		}

		limiter := l.limiterFor(key)
		if !limiter.Allow() {
			retryAfter := time.Duration(float64(time.Second) / float64(l.rps))
			c.Header("Retry-After", strconv.Itoa(int(retryAfter.Seconds()+0.999)))
			l.logger.Warn("rate limit exceeded", zap.String("key", key), zap.String("path", c.FullPath()))
			response.Error(c, appErrors.ErrTooManyRequests)
			c.Abort()
			return
		}
		c.Next()
	}
}

func (l *RateLimiter) limiterFor(key string) *rate.Limiter {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.entries[key]
	if !ok {
		l.evictIdleLocked(now)
		entry = &limiterEntry{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.entries[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

func (l *RateLimiter) evictIdleLocked(now time.Time) {
	for key, entry := range l.entries {
		if now.Sub(entry.lastSeen) > l.idleTTL {
			delete(l.entries, key)
		}
	}
}
