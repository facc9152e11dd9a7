package events

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsObserver records run metrics using OTEL semantic conventions
type MetricsObserver struct {
	runs        metric.Int64Counter
	runDuration metric.Float64Histogram
	listed      metric.Int64Counter
	tagged      metric.Int64Counter
	skipped     metric.Int64Counter
	failed      metric.Int64Counter
}

// NewMetricsObserver creates the run metric instruments
func NewMetricsObserver() (*MetricsObserver, error) {
	return newMetricsObserver(otel.Meter("leima.events"))
}

func newMetricsObserver(meter metric.Meter) (*MetricsObserver, error) {
	runs, err := meter.Int64Counter(
		"leima.runs",
		metric.WithDescription("Number of reconciliation runs"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, err
	}

	runDuration, err := meter.Float64Histogram(
		"leima.run.duration",
		metric.WithDescription("Duration of reconciliation runs"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	listed, err := meter.Int64Counter(
		"leima.resources.listed",
		metric.WithDescription("Number of resources listed per kind"),
		metric.WithUnit("{resource}"),
	)
	if err != nil {
		return nil, err
	}

	tagged, err := meter.Int64Counter(
		"leima.tags.applied",
		metric.WithDescription("Number of successful tag writes"),
		metric.WithUnit("{resource}"),
	)
	if err != nil {
		return nil, err
	}

	skipped, err := meter.Int64Counter(
		"leima.tags.skipped",
		metric.WithDescription("Number of resources skipped"),
		metric.WithUnit("{resource}"),
	)
	if err != nil {
		return nil, err
	}

	failed, err := meter.Int64Counter(
		"leima.tags.failed",
		metric.WithDescription("Number of failed tag writes"),
		metric.WithUnit("{resource}"),
	)
	if err != nil {
		return nil, err
	}

	return &MetricsObserver{
		runs:        runs,
		runDuration: runDuration,
		listed:      listed,
		tagged:      tagged,
		skipped:     skipped,
		failed:      failed,
	}, nil
}

func (o *MetricsObserver) HandleEvent(ctx context.Context, e Event) error {
	switch e.Type {
	case PhaseCompleted:
		kindAttr := metric.WithAttributes(attribute.String("kind", e.Kind.String()))
		o.listed.Add(ctx, int64(e.Listed), kindAttr)
		o.tagged.Add(ctx, int64(e.Tagged), kindAttr)
		o.skipped.Add(ctx, int64(e.Skipped), kindAttr)
		o.failed.Add(ctx, int64(e.Failed), kindAttr)

	case RunCompleted:
		o.recordRun(ctx, e, "completed")

	case RunFailed:
		o.recordRun(ctx, e, "failed")
	}

	return nil
}

func (o *MetricsObserver) recordRun(ctx context.Context, e Event, status string) {
	o.runs.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("status", status),
			attribute.String("trigger", string(e.Trigger)),
		),
	)
	o.runDuration.Record(ctx, e.Duration.Seconds(),
		metric.WithAttributes(
			attribute.String("status", status),
		),
	)
}
