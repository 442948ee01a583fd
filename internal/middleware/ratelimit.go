package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"clinic-scheduling-server/internal/utils"
)

const (
	maxTrackedClients = 10000
	limiterTTL        = 10 * time.Minute
)

// rateLimiterStore holds client IPs and their rate limiters. Entries expire
// limiterTTL after creation and the least recently used are evicted beyond
// maxTrackedClients.
type rateLimiterStore struct {
	limiters *expirable.LRU[string, *rate.Limiter]
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
}

func newRateLimiterStore(limit rate.Limit, burst, size int, ttl time.Duration) *rateLimiterStore {
	return &rateLimiterStore{
		limiters: expirable.NewLRU[string, *rate.Limiter](size, nil, ttl),
		limit:    limit,
		burst:    burst,
	}
}

func (s *rateLimiterStore) getLimiter(ip string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	limiter, exists := s.limiters.Get(ip)
	if !exists {
		limiter = rate.NewLimiter(s.limit, s.burst)
		s.limiters.Add(ip, limiter)
	}
	return limiter
}

// RateLimitMiddleware limits requests per client IP to perMinute, with a
// burst of the same size. A non-positive perMinute disables limiting.
func RateLimitMiddleware(perMinute int, logger *zap.Logger) gin.HandlerFunc {
	if perMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	store := newRateLimiterStore(rate.Every(time.Minute/time.Duration(perMinute)), perMinute, maxTrackedClients, limiterTTL)
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !store.getLimiter(ip).Allow() {
			logger.Warn("Rate limit exceeded", zap.String("ip", ip))
			utils.TooManyRequests(c, "Rate limit exceeded. Try again later.")
			c.Abort()
			return
		}
		c.Next()
	}
}
