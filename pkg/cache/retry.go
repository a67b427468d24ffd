package cache

import (
	"context"
	"errors"
	"time"
)

// Errors reported by remote lookups whose results end up in the cache, such
// as the image-analysis provider.
var (
	ErrNotFound = errors.New("not found")
	ErrNetwork  = errors.New("network error")
)

// Retry defaults used by [RetryWithBackoff].
const (
	DefaultRetryAttempts = 3
	DefaultRetryDelay    = time.Second
)

// RetryableError marks a failure worth another attempt: a dropped
// connection or a 5xx from the provider.
type RetryableError struct{ Err error }

// Retryable wraps err as a RetryableError. It returns nil for nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err was wrapped with [Retryable].
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// Retry calls fn up to attempts times, doubling delay after each retryable
// failure. Other errors are returned at once; cancellation returns ctx.Err().
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error
	for i := range attempts {
		lastErr = fn()
		if lastErr == nil || !IsRetryable(lastErr) {
			return lastErr
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
			delay *= 2
		}
	}
	return lastErr
}

// RetryWithBackoff is [Retry] with the default attempts and delay.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return Retry(ctx, DefaultRetryAttempts, DefaultRetryDelay, fn)
}
