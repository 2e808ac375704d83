package tracing

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// StartGenerateSpan creates the root span for one generation request.
func StartGenerateSpan(ctx context.Context, requestID string) (context.Context, trace.Span) {
	return Tracer().Start(ctx, "router.generate",
		trace.WithAttributes(attribute.String("request.id", requestID)),
	)
}

// StartAttemptSpan creates a child span for one backend attempt.
func StartAttemptSpan(ctx context.Context, provider, url string) (context.Context, trace.Span) {
	return Tracer().Start(ctx, "provider.call",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("provider.label", provider),
			attribute.String("provider.url", url),
		),
	)
}

// SetAttemptSuccess marks the current attempt span as a successful upstream call.
func SetAttemptSuccess(ctx context.Context, statusCode int) {
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.Int("provider.status_code", statusCode),
		attribute.Bool("provider.success", true),
	)
}

// SetGenerateResult records which backend (or the fallback) answered.
func SetGenerateResult(ctx context.Context, provider string, fellBack bool) {
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.String("result.provider", provider),
		attribute.Bool("result.fallback", fellBack),
	)
}

// InjectHeaders injects the current trace context (traceparent, tracestate)
// into the given HTTP request headers so the upstream service can continue
// the trace.
func InjectHeaders(ctx context.Context, req *http.Request) {
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))
}

// RecordError records an error on the current span.
func RecordError(ctx context.Context, err error) {
	if err != nil {
		trace.SpanFromContext(ctx).RecordError(err)
	}
}
