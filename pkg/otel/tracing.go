package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// StartStepSpan starts a span covering one simulation step. The global
// tracer provider returns a no-op span when tracing is disabled, so the
// returned span is always safe to End.
func StartStepSpan(ctx context.Context, step int, participants int) (context.Context, trace.Span) {
	tracer := otel.GetTracerProvider().Tracer(instrumentationName)
	return tracer.Start(ctx, "market.step",
		trace.WithAttributes(
			attribute.Int("step", step),
			attribute.Int("participants", participants),
		),
	)
}

// StartHedgeSpan starts a span covering one delta hedge sweep.
func StartHedgeSpan(ctx context.Context, step int) (context.Context, trace.Span) {
	tracer := otel.GetTracerProvider().Tracer(instrumentationName)
	return tracer.Start(ctx, "market.hedge",
		trace.WithAttributes(
			attribute.Int("step", step),
		),
	)
}
