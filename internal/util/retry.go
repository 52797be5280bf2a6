package util

import (
	"context"
	"errors"
	"time"
)

// RetryPolicy bounds how often and how fast an operation is retried.
// MaxTries <= 0 means a single attempt. Delay doubles after every failure.
type RetryPolicy struct {
	MaxTries int
	Delay    time.Duration
}

// DefaultRetryPolicy is used for remote reads.
var DefaultRetryPolicy = RetryPolicy{MaxTries: 3, Delay: 100 * time.Millisecond}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying. The retry helpers return the
// wrapped error unchanged.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// RetryWithContext calls fn until it returns a nil error, the policy is
// exhausted, the error is Permanent, or ctx is done.
// Returns ctx.Err() if the context is canceled, otherwise returns the last error.
func RetryWithContext[T any](ctx context.Context, policy RetryPolicy, fn func(context.Context) (T, error)) (T, error) {
	maxTries := policy.MaxTries
	if maxTries <= 0 {
		maxTries = 1
	}
	delay := policy.Delay

	var lastErr error
	var zero T
	for i := 0; i < maxTries; i++ {
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			return zero, perm.err
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return zero, err
		}
		lastErr = err

		if i == maxTries-1 || delay <= 0 {
			continue
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}
	return zero, lastErr
}

// RetryErrWithContext is RetryWithContext for functions without a result.
func RetryErrWithContext(ctx context.Context, policy RetryPolicy, fn func(context.Context) error) error {
	_, err := RetryWithContext(ctx, policy, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}
