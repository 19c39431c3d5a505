package tracing

import (
	"context"
	"errors"

	"github.com/smallbiznis/bullionbook/pkg/apperror"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
)

// ExtractContext reads upstream trace headers into ctx.
func ExtractContext(ctx context.Context, carrier propagation.TextMapCarrier) context.Context {
	return otel.GetTextMapPropagator().Extract(ctx, carrier)
}

var blockedAttributeKeys = map[attribute.Key]struct{}{
	"customer.name":      {},
	"customer.mobile_no": {},
	"customer.address":   {},
	"authorization":      {},
}

// SafeAttributes removes personal data before it reaches a span.
func SafeAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	out := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, blocked := blockedAttributeKeys[attr.Key]; blocked {
			continue
		}
		out = append(out, attr)
	}
	return out
}

// SafeError reduces err to its kind and code so driver messages never land in span events.
func SafeError(err error) error {
	if err == nil {
		return nil
	}
	return errors.New(string(apperror.KindOf(err)) + ": " + apperror.CodeOf(err))
}
