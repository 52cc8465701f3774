package middleware

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/andrelmts/taskhive/pkg/errors"
	"github.com/andrelmts/taskhive/pkg/metrics"
	"github.com/andrelmts/taskhive/pkg/response"
)

// RateLimit returns a middleware limiting requests per (clientIP,path) within a
// fixed window, backed by an in-memory store. Suitable for single-instance
// deployments and tests.
func RateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	return RateLimitWithStore(NewMemoryRateStore(), maxRequests, window)
}

// RateLimitWithStore returns the same middleware over an injected RateStore,
// allowing shared-cache backends for multi-process deployments.
func RateLimitWithStore(store RateStore, maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if store == nil || maxRequests <= 0 || window <= 0 {
			c.Next()
			return
		}

		key := c.ClientIP() + "|" + c.FullPath()

		count, ttl, err := store.Increment(c.Request.Context(), key, window)
		if err != nil {
			// Rate limiting must not take the API down with it.
			c.Next()
			return
		}

		remaining := maxRequests - count
		if remaining < 0 {
			remaining = 0
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(maxRequests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.Itoa(int(ttl.Seconds())))

		if count > maxRequests {
			metrics.RateLimitRejections.WithLabelValues("http").Inc()
			retry := int(ttl.Seconds())
			if retry < 1 {
				retry = 1
			}
			response.Error(c, errors.ErrRateLimit.WithMessage(
				fmt.Sprintf("Too many requests, retry in %d seconds", retry)))
			c.Abort()
			return
		}

		c.Next()
	}
}
