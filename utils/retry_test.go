package utils

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryPolicyDelay(t *testing.T) {
	p := RetryPolicy{BaseDelay: 2 * time.Second, Multiplier: 2}

	assert.Equal(t, 2*time.Second, p.Delay(0))
	assert.Equal(t, 4*time.Second, p.Delay(1))
	assert.Equal(t, 8*time.Second, p.Delay(2))
}

func TestRetryPolicyDefaultMultiplier(t *testing.T) {
	p := RetryPolicy{BaseDelay: time.Second}
	assert.Equal(t, 2*time.Second, p.Delay(1))
}

func TestRetrySucceedsAfterFailures(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond, Logger: NewNopLogger()}
	calls := 0

	out := Retry(context.Background(), p, "flaky", func(context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("boom")
		}
		return "ok", nil
	})

	require.True(t, out.OK())
	assert.Equal(t, "ok", out.Value)
	assert.Equal(t, 3, out.Attempts)
}

func TestRetryExhaustsAttempts(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond}
	sentinel := errors.New("down")
	calls := 0

	out := Retry(context.Background(), p, "down", func(context.Context) (int, error) {
		calls++
		return 0, sentinel
	})

	assert.False(t, out.OK())
	assert.ErrorIs(t, out.Err, sentinel)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 3, out.Attempts)
}

func TestRetryStopsOnContextCancel(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 5, BaseDelay: time.Hour}
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	done := make(chan Outcome[int], 1)
	go func() {
		done <- Retry(ctx, p, "slow", func(context.Context) (int, error) {
			calls++
			return 0, errors.New("fail")
		})
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case out := <-done:
		assert.ErrorIs(t, out.Err, context.Canceled)
		assert.Equal(t, 1, calls)
	case <-time.After(time.Second):
		t.Fatal("retry did not return after cancel")
	}
}
