package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

// RateLimiter 基于Redis的固定窗口限流中间件，limit 为每分钟普通请求数
func RateLimiter(rdb *redis.Client, limit int) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.ClientIP()

		// WebSocket握手每分钟限制5次
		if c.Request.URL.Path == "/api/ws" {
			handleRateLimit(c, rdb, "studysphere:rate_limit:ws:"+clientIP, 5, time.Minute)
			return
		}

		handleRateLimit(c, rdb, "studysphere:rate_limit:api:"+clientIP, limit, time.Minute)
	}
}

// handleRateLimit 处理限流逻辑，Redis 不可用时放行
func handleRateLimit(c *gin.Context, rdb *redis.Client, key string, limit int, window time.Duration) {
	ctx := c.Request.Context()

	count, err := rdb.Incr(ctx, key).Result()
	if err != nil {
		c.Next()
		return
	}
	if count == 1 {
		rdb.Expire(ctx, key, window)
	}

	remaining := int64(limit) - count
	if remaining < 0 {
		remaining = 0
	}
	c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
	c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

	if count > int64(limit) {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error": "请求过于频繁，请稍后再试",
		})
		return
	}

	c.Next()
}
