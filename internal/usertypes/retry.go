package usertypes

import (
	"context"
	"time"

	"github.com/desertthunder/soundshelf/internal/shared"
)

// Retry defaults.
const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = time.Second

	// MaxBackoff caps a single wait between attempts.
	MaxBackoff = 5 * time.Minute
)

// RetryOpts configures [Retry].
type RetryOpts struct {
	MaxAttempts int
	BaseDelay   time.Duration

	// Sleep waits for d or until ctx is done. Defaults to a timer-based wait.
	Sleep func(ctx context.Context, d time.Duration) error

	// OnRetry is called before each backoff wait with the zero-based attempt that failed.
	OnRetry func(attempt int, delay time.Duration, err error)
}

// DefaultRetryOpts returns three attempts with a one second base delay.
func DefaultRetryOpts() RetryOpts {
	return RetryOpts{MaxAttempts: DefaultMaxAttempts, BaseDelay: DefaultBaseDelay}
}

// Backoff returns the wait after a failed attempt: BaseDelay * 2^attempt, capped at [MaxBackoff].
func (o RetryOpts) Backoff(attempt int) time.Duration {
	if o.BaseDelay <= 0 {
		return 0
	}
	attempt = max(attempt, 0)
	if o.BaseDelay >= MaxBackoff || attempt >= 32 || o.BaseDelay > MaxBackoff>>attempt {
		return MaxBackoff
	}
	return o.BaseDelay << attempt
}

func (o RetryOpts) withDefaults() RetryOpts {
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = DefaultMaxAttempts
	}
	if o.BaseDelay < 0 {
		o.BaseDelay = 0
	}
	if o.Sleep == nil {
		o.Sleep = sleep
	}
	return o
}

// Retry runs op until it succeeds or attempts run out.
//
// Errors classified as terminal ([shared.Code.Terminal]) are returned at once. Any other error
// is retried after an exponential backoff; unclassified errors count as retryable. When every
// attempt fails the last error is returned as-is.
func Retry[T any](ctx context.Context, op func(context.Context) (T, error), opts RetryOpts) (T, error) {
	opts = opts.withDefaults()

	var (
		zero    T
		lastErr error
	)

	for attempt := 0; attempt < opts.MaxAttempts; attempt++ {
		value, err := op(ctx)
		if err == nil {
			return value, nil
		}
		lastErr = err

		if shared.CodeOf(err).Terminal() {
			return zero, err
		}

		if attempt == opts.MaxAttempts-1 {
			break
		}

		delay := opts.Backoff(attempt)
		if opts.OnRetry != nil {
			opts.OnRetry(attempt, delay, err)
		}
		if err := opts.Sleep(ctx, delay); err != nil {
			return zero, err
		}
	}

	return zero, lastErr
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
