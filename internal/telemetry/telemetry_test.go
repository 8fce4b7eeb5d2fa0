package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"github.com/custodia-labs/artifact-search/internal/core/domain"
)

func TestSetup_DisabledIsNoOp(t *testing.T) {
	before := otel.GetTracerProvider()

	shutdown, err := Setup(context.Background(), domain.TelemetrySettings{}, "test")
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	assert.Equal(t, before, otel.GetTracerProvider())
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetup_InstallsProviders(t *testing.T) {
	prevTracer := otel.GetTracerProvider()
	prevMeter := otel.GetMeterProvider()
	t.Cleanup(func() {
		otel.SetTracerProvider(prevTracer)
		otel.SetMeterProvider(prevMeter)
	})

	// Exporters connect lazily, so no collector is needed to build them.
	shutdown, err := Setup(context.Background(), domain.TelemetrySettings{
		OTLPEndpoint: "127.0.0.1:4317",
		Insecure:     true,
	}, "test")
	require.NoError(t, err)

	assert.NotEqual(t, prevTracer, otel.GetTracerProvider())
	assert.NotEqual(t, prevMeter, otel.GetMeterProvider())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_ = shutdown(ctx) // nothing listening; only checks shutdown returns
}
