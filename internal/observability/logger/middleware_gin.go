package logger

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	obscontext "github.com/smallbiznis/bullionbook/internal/observability/context"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const requestIDHeader = "X-Request-Id"

type MiddlewareConfig struct {
	Debug bool
	// ErrorClassifier maps a handler error to its kind and code for the log line.
	ErrorClassifier func(err error) (string, string)
}

// GinMiddleware writes one "http_request" line per request. The line is
// emitted after the handlers run so it sees the tenant resolved on the way in.
func GinMiddleware(cfg MiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(requestIDHeader, requestID)
		c.Request = c.Request.WithContext(obscontext.WithRequestID(c.Request.Context(), requestID))

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		status := c.Writer.Status()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.Int64("bytes_in", max(c.Request.ContentLength, 0)),
			zap.Int("bytes_out", max(c.Writer.Size(), 0)),
		}
		if customerID := c.Param("customer_id"); customerID != "" {
			fields = append(fields, zap.String("customer_id", customerID))
		}

		var kind string
		if lastErr := c.Errors.Last(); lastErr != nil && cfg.ErrorClassifier != nil {
			var code string
			kind, code = cfg.ErrorClassifier(lastErr.Err)
			fields = append(fields, zap.String("error_kind", kind), zap.String("error_code", code))
			if cfg.Debug {
				fields = append(fields, zap.Error(lastErr.Err))
			}
		}

		log := FromContext(c.Request.Context())
		if ce := log.Check(requestLevel(route, status, kind), "http_request"); ce != nil {
			ce.Write(fields...)
		}
	}
}

// requestLevel keeps scrapes quiet and surfaces cross-tenant probes.
func requestLevel(route string, status int, kind string) zapcore.Level {
	switch {
	case route == "/metrics" || route == "/health":
		return zapcore.DebugLevel
	case status >= http.StatusInternalServerError:
		return zapcore.ErrorLevel
	case status == http.StatusForbidden || kind == "access_denied":
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}
