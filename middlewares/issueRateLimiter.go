package middlewares

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	issueLimitWindow = 24 * time.Hour
	// IPLimitFactor scales the daily budget shared by every reporter
	// behind one client address.
	IPLimitFactor = 5
)

// IssueRateLimiter caps issue submissions per day. A reporter named by the
// user_email form field gets limit submissions, and the client IP gets
// limit*IPLimitFactor across all reporters using it. Redis errors let the
// request through.
func IssueRateLimiter(client *redis.Client, prefix string, limit int, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		type budget struct {
			key   string
			limit int64
		}
		budgets := []budget{{key: prefix + ":ip:" + c.ClientIP(), limit: int64(limit) * IPLimitFactor}}
		if email := strings.ToLower(strings.TrimSpace(c.PostForm("user_email"))); email != "" {
			budgets = append(budgets, budget{key: prefix + ":" + email, limit: int64(limit)})
		} else {
			budgets[0].limit = int64(limit)
		}

		for _, b := range budgets {
			count, err := hit(ctx, client, b.key, log)
			if err != nil {
				log.Warn("rate limiter unavailable, allowing request", zap.Error(err))
				c.Next()
				return
			}
			if count > b.limit {
				retryAfter, err := client.TTL(ctx, b.key).Result()
				if err != nil || retryAfter < 0 {
					retryAfter = issueLimitWindow
				}
				c.Header("Retry-After", strconv.FormatInt(int64(retryAfter.Seconds()), 10))
				c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
					"error":       "rate limit exceeded",
					"retry_after": int64(retryAfter.Seconds()),
				})
				return
			}
		}

		c.Next()
	}
}

// hit counts one submission against key, opening the window on the first.
func hit(ctx context.Context, client *redis.Client, key string, log *zap.Logger) (int64, error) {
	count, err := client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		if err := client.Expire(ctx, key, issueLimitWindow).Err(); err != nil {
			log.Warn("rate limiter failed to set window", zap.String("key", key), zap.Error(err))
		}
	}
	return count, nil
}
