package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-api/pkg/config"
	"github.com/jhoicas/pos-api/pkg/telemetry"
)

func TestSetup_SinEndpointUsaNoop(t *testing.T) {
	tp, shutdown, err := telemetry.Setup(context.Background(), config.TelemetryConfig{ServiceName: "pos-api"}, "test")
	require.NoError(t, err)

	_, span := tp.Tracer("test").Start(context.Background(), "op")
	assert.False(t, span.SpanContext().IsValid(), "noop no genera span context")
	span.End()
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetup_ConEndpointCreaProviderSDK(t *testing.T) {
	// El exportador HTTP no conecta hasta exportar; crear el provider no necesita collector.
	tp, shutdown, err := telemetry.Setup(context.Background(), config.TelemetryConfig{
		Endpoint:    "localhost:4318",
		ServiceName: "pos-api",
	}, "test")
	require.NoError(t, err)

	_, span := tp.Tracer("test").Start(context.Background(), "op")
	assert.True(t, span.SpanContext().IsValid())
	span.End()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = shutdown(ctx)
}
