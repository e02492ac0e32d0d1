package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/taskflow/taskflow-api/internal/cache"
	apierrors "github.com/taskflow/taskflow-api/internal/errors"
)

// RateLimit rejects clients that exceed the limiter's budget with 429.
// Counter failures let the request through.
func RateLimit(limiter cache.RateLimiter, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			log.WithError(err).Warn("rate limiter unavailable")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

		if !result.Allowed {
			apierrors.TooManyRequests(c, "")
			return
		}
		c.Next()
	}
}
