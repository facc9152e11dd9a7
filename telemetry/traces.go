package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// RunSpan represents one reconciliation run
type RunSpan struct {
	ctx  context.Context
	span trace.Span
}

// StartRun starts a new run span
func StartRun(
	ctx context.Context,
	tracer trace.Tracer,
	trigger string,
	regionCount int,
) (context.Context, *RunSpan) {
	ctx, span := tracer.Start(ctx, "run",
		trace.WithAttributes(
			attribute.String("trigger", trigger),
			attribute.Int("regions", regionCount),
		),
	)

	return ctx, &RunSpan{ctx: ctx, span: span}
}

// End ends the run span
func (r *RunSpan) End() {
	r.span.End()
}

// SetCounts sets the run totals
func (r *RunSpan) SetCounts(listed, tagged, skipped, failed int64) {
	r.span.SetAttributes(
		attribute.Int64("resources.listed", listed),
		attribute.Int64("resources.tagged", tagged),
		attribute.Int64("resources.skipped", skipped),
		attribute.Int64("resources.failed", failed),
	)
}

// StartPhase starts a span for one resource kind
func StartPhase(
	ctx context.Context,
	tracer trace.Tracer,
	kind string,
) (context.Context, trace.Span) {
	return tracer.Start(ctx, "phase",
		trace.WithAttributes(
			attribute.String("kind", kind),
		),
	)
}

// EndPhase ends the phase span with unit counts
func EndPhase(span trace.Span, listed, tagged, skipped, failed int64) {
	span.SetAttributes(
		attribute.Int64("resources.listed", listed),
		attribute.Int64("resources.tagged", tagged),
		attribute.Int64("resources.skipped", skipped),
		attribute.Int64("resources.failed", failed),
	)
	span.End()
}

// StartRegion starts a span for one region's slice of a phase
func StartRegion(
	ctx context.Context,
	tracer trace.Tracer,
	kind string,
	region string,
) (context.Context, trace.Span) {
	return tracer.Start(ctx, "region",
		trace.WithAttributes(
			attribute.String("kind", kind),
			attribute.String("region", region),
		),
	)
}

// EndRegion ends the region span with counts
func EndRegion(span trace.Span, listed, tagged int64) {
	span.SetAttributes(
		attribute.Int64("resources.listed", listed),
		attribute.Int64("resources.tagged", tagged),
	)
	span.End()
}

// RecordError records an error in a span
func RecordError(span trace.Span, errorMessage string, errorType string) {
	span.SetAttributes(
		attribute.String("error.message", errorMessage),
		attribute.String("error.type", errorType),
		attribute.Bool("error.occurred", true),
	)
}

// RecordTagAppliedEvent emits a structured span event for a tag write
func RecordTagAppliedEvent(
	span trace.Span,
	kind string,
	region string,
	resourceID string,
	tagCount int,
) {
	if span == nil {
		return
	}

	span.AddEvent("tags.applied", trace.WithAttributes(
		attribute.String("event.type", "tags.applied"),
		attribute.String("kind", kind),
		attribute.String("region", region),
		attribute.String("resource.id", resourceID),
		attribute.Int("tags.count", tagCount),
	))
}

// RecordTagSkippedEvent emits a structured span event for a skipped resource
func RecordTagSkippedEvent(
	span trace.Span,
	kind string,
	region string,
	resourceID string,
	reason string,
) {
	if span == nil {
		return
	}

	span.AddEvent("tags.skipped", trace.WithAttributes(
		attribute.String("event.type", "tags.skipped"),
		attribute.String("kind", kind),
		attribute.String("region", region),
		attribute.String("resource.id", resourceID),
		attribute.String("reason", reason),
	))
}
