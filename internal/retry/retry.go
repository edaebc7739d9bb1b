// Package retry provides a bounded exponential-backoff policy shared by the
// upstream clients. Each client gets its own Policy instance so retry bounds
// stay independently configurable and testable.
package retry

import (
	"context"
	"errors"
	"math/rand"
	"time"
)

// TransientError marks an error as retryable. RetryAfter, when positive,
// overrides the computed backoff delay (e.g. from a Retry-After header).
type TransientError struct {
	Err        error
	RetryAfter time.Duration
}

func (e *TransientError) Error() string { return e.Err.Error() }

func (e *TransientError) Unwrap() error { return e.Err }

// Transient wraps err as retryable.
func Transient(err error) error {
	return &TransientError{Err: err}
}

// TransientAfter wraps err as retryable with an explicit delay hint.
func TransientAfter(err error, after time.Duration) error {
	return &TransientError{Err: err, RetryAfter: after}
}

// IsTransient reports whether err is marked retryable.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// Policy bounds a retry loop: at most MaxAttempts attempts, exponential delay
// from BaseDelay capped at MaxDelay, with optional jitter.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Jitter      bool
}

// Do runs op until it succeeds, returns a non-transient error, the attempt
// budget is exhausted, or ctx is canceled. The last error is returned
// unwrapped from its transient marker so callers can match sentinels.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := op(ctx)
		if err == nil {
			return nil
		}

		var te *TransientError
		if !errors.As(err, &te) {
			return err
		}
		lastErr = te.Err

		if attempt == attempts {
			break
		}

		delay := p.delay(attempt, te.RetryAfter)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return lastErr
}

func (p Policy) delay(attempt int, hint time.Duration) time.Duration {
	if hint > 0 {
		return hint
	}
	base := p.BaseDelay
	if base <= 0 {
		base = 500 * time.Millisecond
	}
	d := base << (attempt - 1)
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	if p.Jitter {
		d += time.Duration(rand.Int63n(int64(base)))
	}
	return d
}
