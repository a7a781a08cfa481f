package middlewares

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const issueLimitPrefix = "issue_limit"

// IssueRateLimiter caps issue submissions per user per day. Counts live in
// Redis when a client is configured, otherwise in process memory.
func IssueRateLimiter(rdb *redis.Client, limit int) gin.HandlerFunc {
	counter := newMemoryCounter()

	return func(c *gin.Context) {
		userIDVal, _ := c.Get("user_id")
		userID, ok := userIDVal.(int)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			c.Abort()
			return
		}
		userKey := issueLimitPrefix + ":" + strconv.Itoa(userID)

		var count int64
		var retryAfter time.Duration

		if rdb != nil {
			ctx := c.Request.Context()
			n, err := rdb.Incr(ctx, userKey).Result()
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "redis error incrementing count"})
				c.Abort()
				return
			}
			// Set TTL only for the first increment (when count = 1)
			if n == 1 {
				if err := rdb.Expire(ctx, userKey, 24*time.Hour).Err(); err != nil {
					c.JSON(http.StatusInternalServerError, gin.H{"error": "redis error setting TTL"})
					c.Abort()
					return
				}
			}
			count = n
			retryAfter, _ = rdb.TTL(ctx, userKey).Result()
		} else {
			count, retryAfter = counter.incr(userKey)
		}

		if count > int64(limit) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": retryAfter.Seconds(),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

type memoryCounter struct {
	mu     sync.Mutex
	counts map[string]int64
	window time.Time
}

func newMemoryCounter() *memoryCounter {
	return &memoryCounter{counts: make(map[string]int64), window: time.Now()}
}

func (m *memoryCounter) incr(key string) (int64, time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if time.Since(m.window) > 24*time.Hour {
		m.counts = make(map[string]int64)
		m.window = time.Now()
	}
	m.counts[key]++
	return m.counts[key], 24*time.Hour - time.Since(m.window)
}
