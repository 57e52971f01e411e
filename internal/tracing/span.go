package tracing

import (
	"context"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const iterationKey = attribute.Key("ratelimit_probe.iteration")

// StartRequestSpan starts a client span for one loop iteration.
func StartRequestSpan(ctx context.Context, tracer trace.Tracer, method string, iteration int) (context.Context, trace.Span) {
	return tracer.Start(ctx, method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			iterationKey.Int(iteration),
		),
	)
}

// EndSpan finishes a span. A transport error or a 4xx/5xx status marks it
// as failed; the status code is recorded whenever a response arrived.
func EndSpan(span trace.Span, statusCode int, err error) {
	if statusCode > 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", statusCode))
	}
	switch {
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	case statusCode >= http.StatusBadRequest:
		span.SetStatus(codes.Error, fmt.Sprintf("HTTP %d", statusCode))
	default:
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// InjectHTTPHeaders injects W3C trace context into HTTP headers.
func InjectHTTPHeaders(ctx context.Context, headers http.Header) {
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(headers))
}
