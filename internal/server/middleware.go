package server

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/bullionbook/internal/observability/logger"
	"github.com/smallbiznis/bullionbook/pkg/tenantctx"
	"go.uber.org/zap"
)

const bearerPrefix = "bearer "

// TenantRequired resolves the bearer token to a tenant and carries it on the
// request context for the services below.
func (s *Server) TenantRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if len(header) <= len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		tenantID, err := s.tokens.Parse(strings.TrimSpace(header[len(bearerPrefix):]))
		if err != nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		c.Request = c.Request.WithContext(tenantctx.WithTenantID(c.Request.Context(), tenantID))
		c.Next()
	}
}

// WriteThrottle applies the tenant write limit to mutating requests. A limiter
// outage lets the request through.
func (s *Server) WriteThrottle() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.limiter.Enabled() || !isWrite(c.Request.Method) {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		tenantID, ok := tenantctx.TenantID(ctx)
		if !ok {
			c.Next()
			return
		}

		res, err := s.limiter.Allow(ctx, tenantID)
		if err != nil {
			logger.FromContext(ctx).Warn("write rate limit unavailable", zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(res.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		if !res.Allowed {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(res.RetryAfter.Seconds()))))
			AbortWithError(c, ErrRateLimited)
			return
		}
		c.Next()
	}
}

func isWrite(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}
