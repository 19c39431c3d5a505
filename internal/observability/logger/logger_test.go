package logger

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	obscontext "github.com/smallbiznis/bullionbook/internal/observability/context"
	"github.com/smallbiznis/bullionbook/pkg/telemetry/correlation"
	"github.com/smallbiznis/bullionbook/pkg/tenantctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithContextAddsRequestScope(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	ctx := obscontext.WithRequestID(context.Background(), "req-1")
	ctx = tenantctx.WithTenantID(ctx, snowflake.ID(99))
	ctx = correlation.ContextWithCorrelationID(ctx, "01HZX")

	WithContext(ctx, base).Info("ledger.apply")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "99", fields["tenant_id"])
	assert.Equal(t, "01HZX", fields["correlation_id"])
	assert.NotContains(t, fields, "trace_id")
}

func TestWithContextLeavesBareContextAlone(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	WithContext(context.Background(), base).Info("startup")

	require.Equal(t, 1, logs.Len())
	assert.Empty(t, logs.All()[0].ContextMap())
}

func TestNormalizeFormat(t *testing.T) {
	assert.Equal(t, "console", normalizeFormat(" Console "))
	assert.Equal(t, "json", normalizeFormat("logfmt"))
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(nil, Config{Level: "loud"})
	assert.Error(t, err)
}

func TestRequestLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, requestLevel("/metrics", 200, ""))
	assert.Equal(t, zapcore.ErrorLevel, requestLevel("/api/sales", 500, "partial_mutation"))
	assert.Equal(t, zapcore.WarnLevel, requestLevel("/api/sales/:id", 403, "access_denied"))
	assert.Equal(t, zapcore.InfoLevel, requestLevel("/api/sales", 404, "not_found"))
}
