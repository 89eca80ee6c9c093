package middleware

import (
	"time"

	"github.com/geoforest/billing/internal/config"
	ierr "github.com/geoforest/billing/internal/errors"
	"github.com/geoforest/billing/internal/metrics"
	"github.com/geoforest/billing/internal/types"
	"github.com/gin-gonic/gin"
	goCache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

const limiterIdleExpiration = 10 * time.Minute

// RateLimitMiddleware applies a token bucket per caller account. Anonymous
// requests share the bucket of their client IP. Limiters idle for ten
// minutes are evicted.
func RateLimitMiddleware(cfg *config.Configuration) gin.HandlerFunc {
	if !cfg.RateLimit.Enabled || cfg.RateLimit.PerMinute <= 0 {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	limiters := goCache.New(limiterIdleExpiration, 2*limiterIdleExpiration)
	every := rate.Every(time.Duration(float64(time.Minute) / cfg.RateLimit.PerMinute))
	burst := max(cfg.RateLimit.Burst, 1)

	return func(c *gin.Context) {
		key := types.GetUserID(c.Request.Context())
		if key == "" {
			key = "ip:" + c.ClientIP()
		}

		var limiter *rate.Limiter
		if v, ok := limiters.Get(key); ok {
			limiter = v.(*rate.Limiter)
		} else {
			limiter = rate.NewLimiter(every, burst)
			// Add fails when a concurrent request stored one first
			if err := limiters.Add(key, limiter, goCache.DefaultExpiration); err != nil {
				if v, ok := limiters.Get(key); ok {
					limiter = v.(*rate.Limiter)
				}
			}
		}
		limiters.Set(key, limiter, goCache.DefaultExpiration)

		if !limiter.Allow() {
			metrics.RateLimitedTotal.Inc()
			_ = c.Error(ierr.NewError("rate limit exceeded").
				WithHint("Too many requests, try again later").
				Mark(ierr.ErrRateLimited))
			c.Abort()
			return
		}
		c.Next()
	}
}
