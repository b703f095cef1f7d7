package papersources

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRateLimiter(t *testing.T) {
	t.Run("creates limiter with specified rate and burst", func(t *testing.T) {
		rl := NewRateLimiter(10, 5)

		require.NotNil(t, rl)
		require.NotNil(t, rl.limiter)

		for i := 0; i < 5; i++ {
			assert.True(t, rl.Allow(), "should allow request %d within burst", i+1)
		}
		assert.False(t, rl.Allow())
	})

	t.Run("creates limiter with arXiv courtesy rate", func(t *testing.T) {
		// One request every three seconds.
		rl := NewRateLimiter(1.0/3.0, 1)

		require.NotNil(t, rl)
		assert.True(t, rl.Allow())
		assert.False(t, rl.Allow())
	})

	t.Run("non-positive burst is raised to one", func(t *testing.T) {
		rl := NewRateLimiter(10, 0)

		require.NotNil(t, rl)
		assert.True(t, rl.Allow())
	})

	t.Run("zero rate disables pacing", func(t *testing.T) {
		assert.Nil(t, NewRateLimiter(0, 5))
		assert.Nil(t, NewRateLimiter(-1, 5))
	})
}

func TestRateLimiter_Nil(t *testing.T) {
	var rl *RateLimiter

	assert.True(t, rl.Allow())
	assert.Zero(t, rl.Tokens())
	assert.NoError(t, rl.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, rl.Wait(ctx), context.Canceled)
}

func TestRateLimiter_Wait(t *testing.T) {
	t.Run("burst allows instant requests", func(t *testing.T) {
		rl := NewRateLimiter(100, 5)

		ctx := context.Background()
		start := time.Now()

		for i := 0; i < 5; i++ {
			require.NoError(t, rl.Wait(ctx))
		}

		elapsed := time.Since(start)
		assert.Less(t, elapsed, 50*time.Millisecond,
			"burst requests should be nearly instant, took %v", elapsed)
	})

	t.Run("waits for token after burst exhausted", func(t *testing.T) {
		// 10 requests per second = 100ms between requests
		rl := NewRateLimiter(10, 1)

		ctx := context.Background()
		require.NoError(t, rl.Wait(ctx))

		start := time.Now()
		require.NoError(t, rl.Wait(ctx))
		elapsed := time.Since(start)

		assert.GreaterOrEqual(t, elapsed, 90*time.Millisecond,
			"should wait for token, waited only %v", elapsed)
	})

	t.Run("respects context deadline", func(t *testing.T) {
		rl := NewRateLimiter(1, 1)
		assert.True(t, rl.Allow())

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		// rate.Limiter reports "would exceed context deadline" rather than
		// context.DeadlineExceeded when it can tell up front.
		err := rl.Wait(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "deadline")
	})

	t.Run("returns error when context canceled during wait", func(t *testing.T) {
		rl := NewRateLimiter(1, 1)
		assert.True(t, rl.Allow())

		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(20 * time.Millisecond)
			cancel()
		}()

		start := time.Now()
		err := rl.Wait(ctx)
		elapsed := time.Since(start)

		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Less(t, elapsed, 500*time.Millisecond)
	})
}

func TestRateLimiter_Tokens(t *testing.T) {
	rl := NewRateLimiter(10, 5)

	assert.InDelta(t, 5.0, rl.Tokens(), 0.1)

	rl.Allow()
	rl.Allow()

	assert.InDelta(t, 3.0, rl.Tokens(), 0.1)
}

func TestRateLimiter_Concurrency(t *testing.T) {
	rl := NewRateLimiter(1000, 100)
	ctx := context.Background()

	var wg sync.WaitGroup
	errChan := make(chan error, 100)

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				if err := rl.Wait(ctx); err != nil {
					errChan <- err
					return
				}
				rl.Allow()
			}
		}()
	}

	wg.Wait()
	close(errChan)

	for err := range errChan {
		t.Errorf("unexpected error: %v", err)
	}
}
