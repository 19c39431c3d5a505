package obscontext

import (
	"context"
	"strings"

	"github.com/smallbiznis/bullionbook/pkg/telemetry/correlation"
	"github.com/smallbiznis/bullionbook/pkg/tenantctx"
)

type requestIDKey struct{}

// WithRequestID stores the inbound request id.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(requestIDKey{}).(string)
	return value
}

// TenantIDFromContext returns the resolved tenant as a string, or "".
func TenantIDFromContext(ctx context.Context) string {
	tenantID, ok := tenantctx.TenantID(ctx)
	if !ok {
		return ""
	}
	return tenantID.String()
}

func CorrelationIDFromContext(ctx context.Context) string {
	return correlation.ExtractCorrelationID(ctx)
}
