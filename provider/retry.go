package provider

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy bounds the resilience wrapper. The zero value is replaced by
// DefaultRetryPolicy.
type RetryPolicy struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
	CallTimeout     time.Duration
}

// DefaultRetryPolicy retries three times with short exponential backoff and a
// per-call timeout on every outward vendor call.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:      3,
		InitialInterval: 200 * time.Millisecond,
		MaxInterval:     2 * time.Second,
		CallTimeout:     30 * time.Second,
	}
}

func (p RetryPolicy) orDefault() RetryPolicy {
	if p.MaxRetries == 0 && p.InitialInterval == 0 {
		return DefaultRetryPolicy()
	}
	return p
}

// WithRetry executes op under the policy's bounded retry and backoff.
// Non-retryable errors abort immediately and are returned as-is; retryable
// errors are returned only after the attempt budget is exhausted. The
// swallow-into-safe-default policy for read paths lives in the facade, not
// here, so write paths can keep propagation.
func WithRetry[T any](ctx context.Context, policy RetryPolicy, op func(ctx context.Context) (T, error)) (T, error) {
	policy = policy.orDefault()

	attempt := func() (T, error) {
		callCtx := ctx
		if policy.CallTimeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, policy.CallTimeout)
			defer cancel()
		}
		result, err := op(callCtx)
		if err != nil && !IsRetryable(err) {
			return result, backoff.Permanent(err)
		}
		return result, err
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = policy.InitialInterval
	eb.MaxInterval = policy.MaxInterval
	b := backoff.WithContext(backoff.WithMaxRetries(eb, policy.MaxRetries), ctx)

	return backoff.RetryWithData(attempt, b)
}
