package telemetry

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestOTELHook_Run(t *testing.T) {
	tests := []struct {
		name        string
		setupCtx    func() context.Context
		expectTrace bool
	}{
		{
			name: "no context",
			setupCtx: func() context.Context {
				return nil
			},
			expectTrace: false,
		},
		{
			name: "context without span",
			setupCtx: func() context.Context {
				return context.Background()
			},
			expectTrace: false,
		},
		{
			name: "context with valid span",
			setupCtx: func() context.Context {
				return contextWithSpan()
			},
			expectTrace: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := zerolog.New(&buf)

			hook := OTELHook{}
			event := logger.Info().Ctx(tt.setupCtx())

			hook.Run(event, zerolog.InfoLevel, "test message")
			event.Msg("test")

			if tt.expectTrace {
				assert.Contains(t, buf.String(), "trace_id")
				assert.Contains(t, buf.String(), "span_id")
			} else {
				assert.NotContains(t, buf.String(), "trace_id")
			}
		})
	}
}

// contextWithSpan creates a context carrying a recording span
func contextWithSpan() context.Context {
	exporter := tracetest.NewInMemoryExporter()
	provider := trace.NewTracerProvider(
		trace.WithSyncer(exporter),
	)
	tracer := provider.Tracer("test")
	ctx, _ := tracer.Start(context.Background(), "test-span")
	return ctx
}

func TestOTELHook_ErrorLevel(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	provider := trace.NewTracerProvider(
		trace.WithSyncer(exporter),
	)
	tracer := provider.Tracer("test")
	ctx, span := tracer.Start(context.Background(), "test-span")

	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	hook := OTELHook{}
	event := logger.Error().Ctx(ctx)

	hook.Run(event, zerolog.ErrorLevel, "error message")
	event.Msg("test error")

	// Verify span status was set to error
	span.End()
	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Equal(t, "error message", spans[0].Status.Description)
}

func TestNewLogger(t *testing.T) {
	// Redirect stdout to capture output
	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	logger := NewLogger("test-service", "info")

	// Write a test message
	logger.Info().Msg("test message")

	// Close writer and restore stdout
	_ = w.Close()
	os.Stdout = oldStdout

	// Read captured output
	buf := make([]byte, 1024)
	n, _ := r.Read(buf)
	output := string(buf[:n])

	assert.NotNil(t, logger)
	assert.Contains(t, output, "test-service")
	assert.Contains(t, output, "test message")
}

func TestNewLogger_LevelFiltering(t *testing.T) {
	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	logger := NewLogger("test-service", "warn")
	logger.Info().Msg("filtered out")
	logger.Warn().Msg("kept")

	_ = w.Close()
	os.Stdout = oldStdout

	buf := make([]byte, 1024)
	n, _ := r.Read(buf)
	output := string(buf[:n])

	assert.NotContains(t, output, "filtered out")
	assert.Contains(t, output, "kept")
}

func TestNewLogger_BadLevelFallsBack(t *testing.T) {
	logger := NewLogger("test-service", "shouting")
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
}

func TestLogger_WithContext(t *testing.T) {
	logger := NewLogger("test-service", "info")
	ctx := context.Background()

	contextLogger := logger.WithContext(ctx)
	assert.NotNil(t, contextLogger)
}

func TestLogger_LogSpanEnd(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		expectError bool
	}{
		{
			name:        "successful span",
			err:         nil,
			expectError: false,
		},
		{
			name:        "failed span",
			err:         assert.AnError,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := &Logger{Logger: zerolog.New(&buf)}
			ctx := context.Background()

			logger.LogSpanEnd(ctx, "test-span", tt.err)

			output := buf.String()
			assert.Contains(t, output, "test-span")

			if tt.expectError {
				assert.Contains(t, output, "span failed")
				assert.Contains(t, output, "level\":\"error")
			} else {
				assert.Contains(t, output, "span completed")
				assert.Contains(t, output, "level\":\"debug")
			}
		})
	}
}

func TestLogger_TagConvenience(t *testing.T) {
	var buf bytes.Buffer
	logger := &Logger{Logger: zerolog.New(&buf)}
	ctx := context.Background()

	logger.LogTagWrite(ctx, "instance", "us-east-1", "i-123", 2)
	logger.LogTagSkip(ctx, "volume", "us-east-1", "vol-1", "already named")
	logger.LogTagFailure(ctx, "bucket", "eu-west-1", "logs-a", "PutBucketTagging", assert.AnError)

	output := buf.String()
	assert.Contains(t, output, "tags applied")
	assert.Contains(t, output, "i-123")
	assert.Contains(t, output, "tag write skipped")
	assert.Contains(t, output, "already named")
	assert.Contains(t, output, "tag write failed")
	assert.Contains(t, output, "PutBucketTagging")
}

func TestAddAttributeToEvent(t *testing.T) {
	tests := []struct {
		name     string
		attr     attribute.KeyValue
		expected string
	}{
		{
			name:     "string attribute",
			attr:     attribute.String("key", "value"),
			expected: "\"key\":\"value\"",
		},
		{
			name:     "int64 attribute",
			attr:     attribute.Int64("count", 42),
			expected: "\"count\":42",
		},
		{
			name:     "float64 attribute",
			attr:     attribute.Float64("rate", 3.14),
			expected: "\"rate\":3.14",
		},
		{
			name:     "bool attribute",
			attr:     attribute.Bool("enabled", true),
			expected: "\"enabled\":true",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := zerolog.New(&buf)
			event := logger.Info()

			event = addAttributeToEvent(event, tt.attr)
			event.Msg("test")

			assert.Contains(t, buf.String(), tt.expected)
		})
	}
}

func TestRunSpanHelpers(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	provider := trace.NewTracerProvider(
		trace.WithSyncer(exporter),
	)
	tracer := provider.Tracer("test")

	ctx, runSpan := StartRun(context.Background(), tracer, "timer", 2)
	require.NotNil(t, runSpan)

	phaseCtx, phaseSpan := StartPhase(ctx, tracer, "instance")
	_, regionSpan := StartRegion(phaseCtx, tracer, "instance", "us-east-1")
	RecordTagAppliedEvent(regionSpan, "instance", "us-east-1", "i-123", 1)
	EndRegion(regionSpan, 3, 3)
	EndPhase(phaseSpan, 3, 3, 0, 0)

	runSpan.SetCounts(3, 3, 0, 0)
	runSpan.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 3)

	// Innermost span ends first
	assert.Equal(t, "region", spans[0].Name)
	assert.Equal(t, "phase", spans[1].Name)
	assert.Equal(t, "run", spans[2].Name)

	require.Len(t, spans[0].Events, 1)
	assert.Equal(t, "tags.applied", spans[0].Events[0].Name)
}
