package repos

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrUnavailable wraps repository reads that kept failing after the retry
// budget was spent. Callers treat it as data-unavailable, not a crash.
var ErrUnavailable = errors.New("repository unavailable")

// RetryPolicy bounds every repository read with a per-attempt timeout and a
// fixed number of retries with linear backoff. One policy object is shared by
// all call sites instead of scattering retry loops around.
type RetryPolicy struct {
	Attempts int
	Backoff  time.Duration
	Timeout  time.Duration
}

func DefaultRetryPolicy() *RetryPolicy {
	return &RetryPolicy{
		Attempts: 3,
		Backoff:  250 * time.Millisecond,
		Timeout:  5 * time.Second,
	}
}

// Do runs op under the policy. Each attempt gets its own deadline; a cancelled
// parent context stops the loop immediately.
func (p *RetryPolicy) Do(ctx context.Context, op func(context.Context) error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, p.Timeout)
		lastErr = op(attemptCtx)
		cancel()

		if lastErr == nil {
			return nil
		}

		if ctx.Err() != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, ctx.Err())
		}

		if attempt < attempts {
			select {
			case <-time.After(time.Duration(attempt) * p.Backoff):
			case <-ctx.Done():
				return fmt.Errorf("%w: %v", ErrUnavailable, ctx.Err())
			}
		}
	}

	return fmt.Errorf("%w after %d attempts: %v", ErrUnavailable, attempts, lastErr)
}
