package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/hetiograph/internal/platform/logger"
)

func TestParseHeaders(t *testing.T) {
	got := parseHeaders("api-key=abc, x-team = graph ,broken,=v,k=")
	assert.Equal(t, map[string]string{"api-key": "abc", "x-team": "graph"}, got)
	assert.Nil(t, parseHeaders(",,"))
}

func TestTracingConfigApplyEnv(t *testing.T) {
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("OTEL_TRACES_EXPORTER", "STDOUT")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "k=v")

	cfg := DefaultTracingConfig()
	cfg.ApplyEnv()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, ExporterStdout, cfg.Exporter)
	assert.Equal(t, map[string]string{"k": "v"}, cfg.Headers)
	require.NoError(t, cfg.Validate())
}

func TestTracingConfigValidate(t *testing.T) {
	cfg := DefaultTracingConfig()
	cfg.Exporter = "jaeger"
	assert.Error(t, cfg.Validate())

	cfg = DefaultTracingConfig()
	cfg.SampleRatio = 1.5
	assert.Error(t, cfg.Validate())
}

func TestInitTracingDisabledIsNoop(t *testing.T) {
	shutdown := InitTracing(context.Background(), logger.Nop(), DefaultTracingConfig(), "test")
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))

	_, span := Tracer().Start(context.Background(), "noop")
	EndSpan(span, errors.New("boom"))
}
