package server

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
	obscontext "github.com/smallbiznis/storefront/internal/observability/context"
	"github.com/smallbiznis/storefront/internal/observability/logger"
	"go.uber.org/zap"
)

// BulkRateLimit throttles bulk endpoints per actor. Requests without an
// actor share one bucket.
func (s *Server) BulkRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.bulkLimiter.Enabled() {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		_, actorID := obscontext.ActorFromGin(c)
		result, err := s.bulkLimiter.Allow(ctx, actorID)
		if err != nil {
			logger.FromContext(ctx).Warn("bulk rate limit check failed", zap.Error(err))
			AbortWithError(c, ErrServiceUnavailable)
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		if !result.Allowed {
			retry := int(math.Ceil(result.RetryAfter.Seconds()))
			if retry < 1 {
				retry = 1
			}
			logger.FromContext(ctx).Warn("bulk rate limit exceeded",
				zap.String("route", normalizeRateLimitEndpoint(c)),
				zap.Int("retry_after_s", retry),
			)
			c.Header("Retry-After", strconv.Itoa(retry))
			AbortWithError(c, ErrRateLimited)
			return
		}

		c.Next()
	}
}

func normalizeRateLimitEndpoint(c *gin.Context) string {
	if c == nil {
		return "unknown"
	}
	endpoint := c.FullPath()
	if endpoint == "" {
		endpoint = c.Request.URL.Path
	}
	if endpoint == "" {
		endpoint = "unknown"
	}
	return endpoint
}
