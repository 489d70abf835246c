package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryThrottle_SlidingWindow(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)
	th := NewInMemoryThrottle()
	th.now = func() time.Time { return clock }

	for i := 0; i < 5; i++ {
		d, err := th.Allow(ctx, "quotes:1.1.1.1", 5, time.Hour)
		require.NoError(t, err)
		assert.True(t, d.Allowed)
		assert.Equal(t, 4-i, d.Remaining)
		clock = clock.Add(10 * time.Minute)
	}

	// 50 minutes after the first hit
	d, err := th.Allow(ctx, "quotes:1.1.1.1", 5, time.Hour)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 10*time.Minute, d.RetryAfter)

	other, err := th.Allow(ctx, "quotes:2.2.2.2", 5, time.Hour)
	require.NoError(t, err)
	assert.True(t, other.Allowed)

	clock = clock.Add(10*time.Minute + time.Second)
	d, err = th.Allow(ctx, "quotes:1.1.1.1", 5, time.Hour)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestInMemoryThrottle_Sweep(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)
	th := NewInMemoryThrottle()
	th.now = func() time.Time { return clock }

	_, _ = th.Allow(ctx, "a", 5, time.Hour)
	clock = clock.Add(2 * time.Hour)
	_, _ = th.Allow(ctx, "b", 5, time.Hour)

	th.Sweep(time.Hour)
	assert.NotContains(t, th.hits, "a")
	assert.Contains(t, th.hits, "b")
}
