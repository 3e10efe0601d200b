package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	// Mutating money paths (orders) get the strict tier.
	limitStrict = rate.Limit(2)
	burstStrict = 5

	// Everything else.
	limitGeneral = rate.Limit(10)
	burstGeneral = 20
)

// visitor holds the rate limiter and the last time it was seen.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type limiterPool struct {
	mu       sync.Mutex
	visitors map[string]*visitor
}

func newLimiterPool() *limiterPool {
	p := &limiterPool{visitors: make(map[string]*visitor)}
	go p.cleanup()
	return p
}

func (p *limiterPool) get(key string, r rate.Limit, b int) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()

	v, exists := p.visitors[key]
	if !exists {
		limiter := rate.NewLimiter(r, b)
		p.visitors[key] = &visitor{limiter, time.Now()}
		return limiter
	}

	v.lastSeen = time.Now()
	return v.limiter
}

// cleanup drops idle entries so the visitor map cannot grow unbounded.
func (p *limiterPool) cleanup() {
	for {
		time.Sleep(time.Minute)

		p.mu.Lock()
		for key, v := range p.visitors {
			if time.Since(v.lastSeen) > 3*time.Minute {
				delete(p.visitors, key)
			}
		}
		p.mu.Unlock()
	}
}

// RateLimit throttles per client IP. It sits ahead of authentication in
// the chain, so the IP is the only caller identity available here. Order
// creation is limited harder than browsing. Each middleware instance owns
// its pool, so separate routers do not share buckets.
func RateLimit() gin.HandlerFunc {
	pool := newLimiterPool()

	return func(c *gin.Context) {
		limit, burst, tier := limitGeneral, burstGeneral, "general"
		if c.Request.Method == http.MethodPost && c.FullPath() == "/api/orders" {
			limit, burst, tier = limitStrict, burstStrict, "strict"
		}

		key := "ip:" + c.ClientIP() + ":" + tier

		if !pool.get(key, limit, burst).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": http.StatusText(http.StatusTooManyRequests),
			})
			return
		}

		c.Next()
	}
}
