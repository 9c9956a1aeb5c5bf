package resource

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_Memory(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 100})

	require.NoError(t, c.AcquireMemory(50))
	require.NoError(t, c.AcquireMemory(40))
	assert.Equal(t, int64(90), c.MemoryUsage())

	assert.ErrorIs(t, c.AcquireMemory(20), ErrMemoryLimitExceeded)
	assert.Equal(t, int64(90), c.MemoryUsage())

	c.ReleaseMemory(50)
	require.NoError(t, c.AcquireMemory(20))
	assert.Equal(t, int64(60), c.MemoryUsage())
	assert.Equal(t, int64(100), c.MemoryLimit())
}

func TestController_Unlimited(t *testing.T) {
	c := NewController(Config{})
	require.NoError(t, c.AcquireMemory(1<<40))
	c.ReleaseMemory(1 << 39)
	assert.Equal(t, int64(1<<39), c.MemoryUsage())
	require.NoError(t, c.AcquireIO(context.Background(), 1<<30))
}

func TestController_Nil(t *testing.T) {
	var c *Controller
	require.NoError(t, c.AcquireMemory(10))
	c.ReleaseMemory(10)
	require.NoError(t, c.AcquireFetch(context.Background()))
	c.ReleaseFetch()
	require.NoError(t, c.AcquireIO(context.Background(), 10))
	assert.Zero(t, c.MemoryUsage())
}

func TestController_Fetch(t *testing.T) {
	c := NewController(Config{MaxFetchers: 1})
	require.NoError(t, c.AcquireFetch(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, c.AcquireFetch(ctx))

	c.ReleaseFetch()
	require.NoError(t, c.AcquireFetch(context.Background()))
}

func TestController_AcquireIOLargerThanBurst(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 1 << 20})
	// The initial burst covers the first installment; the remainder waits.
	start := time.Now()
	require.NoError(t, c.AcquireIO(context.Background(), 1<<20+1<<18))
	assert.GreaterOrEqual(t, time.Since(start), 200*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, c.AcquireIO(ctx, 1<<22))
}
