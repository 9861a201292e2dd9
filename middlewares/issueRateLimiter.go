package middlewares

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// IssueRateLimiter allows each authenticated user limit requests per window.
// The counter lives in Redis under prefix:userID and expires with the window.
func IssueRateLimiter(client *redis.Client, prefix string, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(UserIDKey)
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			c.Abort()
			return
		}

		ctx := c.Request.Context()
		userKey := prefix + ":" + userID

		count, err := client.Incr(ctx, userKey).Result()
		if err != nil {
			log.Printf("Rate limiter INCR %s: %v", userKey, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "redis error incrementing count", "retryable": true})
			c.Abort()
			return
		}

		// First request of the window starts the clock
		if count == 1 {
			if err := client.Expire(ctx, userKey, window).Err(); err != nil {
				log.Printf("Rate limiter EXPIRE %s: %v", userKey, err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "redis error setting TTL", "retryable": true})
				c.Abort()
				return
			}
		}

		if count > int64(limit) {
			retryAfter, _ := client.TTL(ctx, userKey).Result()
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Too many issue submissions, please try again later.",
				"retry_after": retryAfter.Seconds(),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
