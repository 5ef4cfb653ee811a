package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/portalauth/internal/ratelimit"
	"go.uber.org/zap"
)

const (
	opSessionCreate = "session:create"
	opAccountLookup = "account:lookup"
)

// RateLimit guards an operation with a fixed-window policy keyed by client
// IP. Denials turn into 429 here; the limiter itself treats them as normal
// results.
func (s *Server) RateLimit(operation string, policy ratelimit.Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.limiter.Enabled() {
			c.Next()
			return
		}

		res := s.limiter.Check(c.Request.Context(), operation, c.ClientIP(), policy)
		s.metrics.RecordRateLimit(operation, res.Allowed)
		if res.Allowed {
			c.Next()
			return
		}

		retryAfter := int(time.Until(res.ResetAt).Seconds())
		if retryAfter < 1 {
			retryAfter = 1
		}

		s.log.Warn("rate limit exceeded",
			zap.String("operation", operation),
			zap.String("client_ip", c.ClientIP()),
		)

		c.Header("Retry-After", strconv.Itoa(retryAfter))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error":             "rate_limited",
			"retryAfterSeconds": retryAfter,
		})
	}
}
