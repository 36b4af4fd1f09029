package api

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"

	"github.com/codyseavey/card-checklist/internal/metrics"
)

// maxTrackedClients bounds the per-client limiter table; the least recently
// seen client is forgotten first.
const maxTrackedClients = 4096

type clientLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	limiters *lru.Cache[string, *rate.Limiter]
}

func (l *clientLimiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if limiter, ok := l.limiters.Get(key); ok {
		return limiter
	}
	limiter := rate.NewLimiter(l.limit, l.burst)
	l.limiters.Add(key, limiter)
	return limiter
}

// RateLimit rejects clients exceeding perSecond requests (with burst) with 429.
// perSecond <= 0 disables limiting.
func RateLimit(perSecond float64, burst int) gin.HandlerFunc {
	if perSecond <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if burst < 1 {
		burst = 1
	}

	cache, _ := lru.New[string, *rate.Limiter](maxTrackedClients) // only fails for size <= 0
	limiter := &clientLimiter{limit: rate.Limit(perSecond), burst: burst, limiters: cache}

	return func(c *gin.Context) {
		if !limiter.get(c.ClientIP()).Allow() {
			metrics.RateLimitedTotal.Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
