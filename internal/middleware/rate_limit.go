package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimiter implements a fixed-window limiter on Redis. Authenticated
// requests are keyed by user ID, anonymous ones by client IP. Redis being
// down never blocks traffic; the limiter fails open.
type RateLimiter struct {
	client  *redis.Client
	enabled bool
	logger  *zap.Logger
}

func NewRateLimiter(client *redis.Client, enabled bool, logger *zap.Logger) *RateLimiter {
	return &RateLimiter{
		client:  client,
		enabled: enabled,
		logger:  logger.Named("RateLimiter"),
	}
}

// Limit returns a middleware allowing max requests per window for the given
// scope (for example "auth" or "generate").
func (rl *RateLimiter) Limit(scope string, max int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.enabled || rl.client == nil {
			c.Next()
			return
		}

		subject := c.ClientIP()
		if userID, ok := UserIDFromContext(c); ok {
			subject = userID.String()
		}
		key := fmt.Sprintf("ratelimit:%s:%s", scope, subject)

		count, err := rl.client.Incr(c.Request.Context(), key).Result()
		if err != nil {
			rl.logger.Warn("Rate limiter unavailable, allowing request", zap.String("scope", scope), zap.Error(err))
			c.Next()
			return
		}
		if count == 1 {
			if err := rl.client.Expire(c.Request.Context(), key, window).Err(); err != nil {
				rl.logger.Warn("Failed to set rate limit window", zap.String("key", key), zap.Error(err))
			}
		}

		if count > int64(max) {
			rl.logger.Info("Rate limit exceeded",
				zap.String("scope", scope),
				zap.String("subject", subject),
				zap.Int64("count", count),
			)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error_code": "RATE_LIMIT",
				"message":    "too many requests, try again later",
				"retryable":  true,
			})
			return
		}
		c.Next()
	}
}
