package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimiter implements a Redis-backed fixed window rate limit.
// Authenticated requests are keyed per user, the rest per client IP.
type RateLimiter struct {
	redisClient *redis.Client
	requests    int
	window      time.Duration
}

// NewRateLimiter creates a rate limiter allowing requests per window.
func NewRateLimiter(redisClient *redis.Client, requests int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		redisClient: redisClient,
		requests:    requests,
		window:      window,
	}
}

// Middleware returns a Gin middleware enforcing the limit.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		identifier := "ip:" + c.ClientIP()
		if userID, ok := UserID(c); ok {
			identifier = "user:" + userID.String()
		}

		count, err := rl.increment(c.Request.Context(), identifier)
		if err != nil {
			// Fail-open when Redis is unavailable
			c.Next()
			return
		}

		remaining := rl.requests - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.requests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if count > rl.requests {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded",
				"limit": rl.requests,
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

func (rl *RateLimiter) increment(ctx context.Context, identifier string) (int, error) {
	key := fmt.Sprintf("ratelimit:%s", identifier)

	pipe := rl.redisClient.Pipeline()
	countCmd := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, rl.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to increment rate limit: %w", err)
	}

	return int(countCmd.Val()), nil
}
