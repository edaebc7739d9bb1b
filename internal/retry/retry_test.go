package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoSucceedsFirstAttempt(t *testing.T) {
	p := Policy{MaxAttempts: 3, BaseDelay: time.Millisecond}

	calls := 0
	err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoRetriesTransientUntilSuccess(t *testing.T) {
	p := Policy{MaxAttempts: 5, BaseDelay: time.Millisecond}

	calls := 0
	err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return Transient(errors.New("flaky"))
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoStopsOnNonTransientError(t *testing.T) {
	p := Policy{MaxAttempts: 5, BaseDelay: time.Millisecond}
	permanent := errors.New("permanent")

	calls := 0
	err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return permanent
	})

	assert.Equal(t, permanent, err)
	assert.Equal(t, 1, calls)
}

func TestDoExhaustsAttemptsAndUnwrapsMarker(t *testing.T) {
	p := Policy{MaxAttempts: 3, BaseDelay: time.Millisecond}
	cause := errors.New("still down")

	calls := 0
	err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return Transient(cause)
	})

	assert.Equal(t, 3, calls)
	// The transient marker must not leak past the retry loop.
	require.Error(t, err)
	assert.Equal(t, cause, err)
	assert.False(t, IsTransient(err))
}

func TestDoHonorsContextCancellation(t *testing.T) {
	p := Policy{MaxAttempts: 10, BaseDelay: time.Hour}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- p.Do(ctx, func(ctx context.Context) error {
			return Transient(errors.New("always failing"))
		})
	}()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Do did not return after context cancellation")
	}
}

func TestDoTreatsZeroAttemptsAsOne(t *testing.T) {
	p := Policy{}

	calls := 0
	err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return errors.New("fail")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDelayHonorsRetryAfterHint(t *testing.T) {
	p := Policy{BaseDelay: time.Second, MaxDelay: 10 * time.Second}

	assert.Equal(t, 42*time.Second, p.delay(1, 42*time.Second))
}

func TestDelayGrowsExponentiallyAndCaps(t *testing.T) {
	p := Policy{BaseDelay: time.Second, MaxDelay: 5 * time.Second}

	assert.Equal(t, time.Second, p.delay(1, 0))
	assert.Equal(t, 2*time.Second, p.delay(2, 0))
	assert.Equal(t, 4*time.Second, p.delay(3, 0))
	assert.Equal(t, 5*time.Second, p.delay(4, 0))
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(Transient(errors.New("x"))))
	assert.True(t, IsTransient(TransientAfter(errors.New("x"), time.Second)))
	assert.False(t, IsTransient(errors.New("x")))
	assert.False(t, IsTransient(nil))
}
