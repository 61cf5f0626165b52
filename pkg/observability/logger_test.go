package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/Sumatoshi-tech/chunkhash/pkg/observability"
)

func TestTracingHandler_AddsTraceContext(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	handler := observability.NewTracingHandler(slog.NewJSONHandler(&buf, nil), "chunkhash", observability.ModeRun)
	logger := slog.New(handler)

	tp := sdktrace.NewTracerProvider()
	ctx, span := tp.Tracer("test").Start(context.Background(), "op")

	logger.InfoContext(ctx, "inside span")
	span.End()

	out := buf.String()
	assert.Contains(t, out, span.SpanContext().TraceID().String())
	assert.Contains(t, out, span.SpanContext().SpanID().String())
}

func TestTracingHandler_NoSpan(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := slog.New(observability.NewTracingHandler(slog.NewJSONHandler(&buf, nil), "chunkhash", observability.ModeInspect))
	logger.WithGroup("g").Info("plain", "k", 1)

	out := buf.String()
	assert.NotContains(t, out, "trace_id")
	assert.Contains(t, out, `"service":"chunkhash"`)
	assert.Contains(t, out, `"g":{"k":1}`)
}
