package observability

import (
	"bytes"
	"context"
	"testing"

	"been-map/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestTracingConfigFromEnv(t *testing.T) {
	t.Setenv("TRACING_ENABLED", "TRUE")
	t.Setenv("TRACING_SAMPLE_RATIO", "0.25")
	t.Setenv("TRACING_SERVICE_NAME", "")
	cfg := TracingConfigFromEnv()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 0.25, cfg.SampleRatio)
	assert.Equal(t, "been-map", cfg.ServiceName)

	t.Setenv("TRACING_SAMPLE_RATIO", "7")
	assert.Equal(t, 1.0, TracingConfigFromEnv().SampleRatio)
}

func TestInitTracingDisabled(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), TracingConfig{}, logger.Discard())
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))

	_, span := otel.Tracer("test").Start(context.Background(), "noop")
	assert.False(t, span.SpanContext().IsValid())
	span.End()
}

func TestInitTracingStdout(t *testing.T) {
	var buf bytes.Buffer
	shutdown, err := InitTracing(context.Background(), TracingConfig{
		Enabled:     true,
		ServiceName: "been-map-test",
		SampleRatio: 1,
		Writer:      &buf,
	}, logger.Discard())
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(context.Background(), "topology.load")
	assert.True(t, span.SpanContext().IsValid())
	span.End()

	ShutdownWithTimeout(context.Background(), shutdown, logger.Discard())
	assert.Contains(t, buf.String(), "topology.load")
}
