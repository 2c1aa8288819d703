package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDisabledProviderShutdownIsNoOp(t *testing.T) {
	tp, err := NewTracerProvider(context.Background(), Config{Enabled: false}, zap.NewNop())
	require.NoError(t, err)
	assert.NoError(t, tp.Shutdown(context.Background()))
}

func TestStartSpanWithNoOpProvider(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "billing", "create_bill")
	require.NotNil(t, span)
	assert.NotNil(t, ctx)

	RecordError(span, errors.New("boom"))
	RecordError(span, nil)
	span.End()
}

func TestSamplerFor(t *testing.T) {
	assert.Equal(t, "AlwaysOnSampler", samplerFor(1.0).Description())
	assert.Equal(t, "AlwaysOffSampler", samplerFor(0.0).Description())
	assert.Contains(t, samplerFor(0.25).Description(), "TraceIDRatioBased")
}
