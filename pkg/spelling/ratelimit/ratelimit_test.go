package ratelimit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewWithNonPositiveRPSDisablesThrottling(t *testing.T) {
	require.Nil(t, New(0, 10))
	require.Nil(t, New(-1, 10))
}

func TestNilLimiterWaitNeverBlocks(t *testing.T) {
	var l *Limiter
	require.NoError(t, l.Wait(context.Background()))
}

func TestWaitRespectsCanceledContext(t *testing.T) {
	l := New(1, 1)
	require.NotNil(t, l)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := l.Wait(ctx)
	require.Error(t, err)
}
