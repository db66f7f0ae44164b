package probe

import (
	"context"
	"fmt"
	"time"
)

// RetryChecker retries transport failures of Inner with a linear backoff:
// the wait before attempt n (n >= 2) is Backoff*(n-1). A response with any
// status code ends the series.
type RetryChecker struct {
	Inner    Checker
	Attempts int
	Backoff  time.Duration

	sleep func(ctx context.Context, d time.Duration) error
}

func NewRetryChecker(inner Checker, attempts int, backoff time.Duration) *RetryChecker {
	return &RetryChecker{Inner: inner, Attempts: attempts, Backoff: backoff}
}

func (r *RetryChecker) Check(ctx context.Context, target string) CheckResult {
	attempts := r.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var last CheckResult
	for n := 1; n <= attempts; n++ {
		if n > 1 {
			if err := r.wait(ctx, r.Backoff*time.Duration(n-1)); err != nil {
				break
			}
		}
		last = r.Inner.Check(ctx, target)
		last.Attempts = n
		if last.Success {
			return last
		}
	}

	last.Message = fmt.Sprintf("failed after %d attempts: %s", last.Attempts, last.Message)
	return last
}

func (r *RetryChecker) wait(ctx context.Context, d time.Duration) error {
	if r.sleep != nil {
		return r.sleep(ctx, d)
	}
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
