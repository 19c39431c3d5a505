package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestFilterAttributesDropsForbiddenLabels(t *testing.T) {
	attrs := FilterAttributes(
		attribute.String("source_type", "sale"),
		attribute.String("customer_id", "456"),
		attribute.String("tenant_id", "1"),
		attribute.String("operation", "create"),
	)
	require.Len(t, attrs, 2)
	keys := []attribute.Key{attrs[0].Key, attrs[1].Key}
	assert.Contains(t, keys, attribute.Key("source_type"))
	assert.Contains(t, keys, attribute.Key("operation"))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordLedgerMutation(context.Background(), "sale", "create")
		m.RecordAccessDenied(context.Background(), "customer")
	})
}

func TestNewWithNoopProvider(t *testing.T) {
	m, err := New(Config{}, noop.NewMeterProvider())
	require.NoError(t, err)
	m.RecordLedgerMutation(context.Background(), "receipt", "delete")
	m.RecordLedgerFailure(context.Background(), "receipt", "conflict")
	m.RecordInvoiceNumber(context.Background(), "payment")
}
