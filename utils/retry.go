package utils

import (
	"context"
	"fmt"
	"math"
	"time"
)

// RetryPolicy describes how many times an operation is attempted and how long
// to wait between attempts. The wait before retry n (0-based) is
// BaseDelay * Multiplier^n.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64
	Logger      *Logger
}

// Outcome is the result of a retried operation. Err is nil when one of the
// attempts succeeded.
type Outcome[T any] struct {
	Value    T
	Attempts int
	Err      error
}

// OK reports whether the operation eventually succeeded.
func (o Outcome[T]) OK() bool {
	return o.Err == nil
}

// Delay returns the back-off to wait after the given failed attempt (0-based).
func (p RetryPolicy) Delay(attempt int) time.Duration {
	mult := p.Multiplier
	if mult <= 0 {
		mult = 2
	}
	return time.Duration(float64(p.BaseDelay) * math.Pow(mult, float64(attempt)))
}

// Retry runs fn until it succeeds, attempts run out or ctx is done.
// It never sleeps after the final attempt.
func Retry[T any](ctx context.Context, p RetryPolicy, operationName string, fn func(context.Context) (T, error)) Outcome[T] {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var out Outcome[T]
	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			out.Err = fmt.Errorf("%s: %w", operationName, err)
			return out
		}

		out.Attempts = attempt + 1
		v, err := fn(ctx)
		if err == nil {
			out.Value = v
			out.Err = nil
			return out
		}
		out.Err = err

		if attempt == attempts-1 {
			break
		}

		wait := p.Delay(attempt)
		if p.Logger != nil {
			p.Logger.Warn("[retry] %s failed (attempt %d/%d): %v, retrying in %v",
				operationName, attempt+1, attempts, err, wait)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			out.Err = fmt.Errorf("%s: %w", operationName, ctx.Err())
			return out
		case <-timer.C:
		}
	}

	out.Err = fmt.Errorf("%s failed after %d attempts: %w", operationName, out.Attempts, out.Err)
	return out
}
