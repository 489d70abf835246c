package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName scopes the application service spans.
const TracerName = "letatchebois-api"

// Span attribute keys for application service spans.
const (
	SpanAttrDocumentID     = "document_id"
	SpanAttrDocumentType   = "document_type"
	SpanAttrDocumentNumber = "number"
	SpanAttrDocumentStatus = "document_status"

	SpanAttrOrderNumber = "order_number"
	SpanAttrClientID    = "client_id"

	SpanAttrAmount        = "amount"
	SpanAttrPaymentMethod = "payment_method"
)

// StartServiceSpan starts an internal span named "<service>.<method>",
// e.g. "document.issue". The caller ends it.
func StartServiceSpan(ctx context.Context, service, method string) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, service+"."+method, trace.WithSpanKind(trace.SpanKindInternal))
}

// SetAttributes sets alternating key, value pairs on span. Non-string keys
// are skipped.
//
//	telemetry.SetAttributes(span,
//	    telemetry.SpanAttrDocumentType, string(d.Type),
//	    telemetry.SpanAttrDocumentNumber, d.Number,
//	)
func SetAttributes(span trace.Span, kv ...any) {
	attrs := make([]attribute.KeyValue, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		if key, ok := kv[i].(string); ok {
			attrs = append(attrs, toAttribute(key, kv[i+1]))
		}
	}
	span.SetAttributes(attrs...)
}

// RecordError marks span as failed with err.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func toAttribute(key string, value any) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case float64:
		return attribute.Float64(key, v)
	case bool:
		return attribute.Bool(key, v)
	case fmt.Stringer:
		return attribute.String(key, v.String())
	default:
		return attribute.String(key, fmt.Sprint(v))
	}
}
