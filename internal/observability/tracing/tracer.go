// Package tracing provides OpenTelemetry tracing integration.
//
// It exposes the application tracer and HTTP middleware that creates a
// server span per request and propagates W3C Trace Context.
package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// tracer is the global tracer instance for the popstats application.
var tracer = otel.Tracer("popstats")

// GetTracer returns the global tracer for creating spans.
// This tracer can be used throughout the application to create new spans.
//
// Example usage:
//
//	ctx, span := tracing.GetTracer().Start(ctx, "operation-name")
//	defer span.End()
func GetTracer() trace.Tracer {
	return tracer
}

// StartSpan starts a new span with the given name as a child of the span
// in ctx, if any.
func StartSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return tracer.Start(ctx, name)
}
