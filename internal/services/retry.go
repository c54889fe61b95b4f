package services

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/cyphera/cyphera-rebalancer/internal/logger"
	"github.com/cyphera/cyphera-rebalancer/internal/types/business"
)

// Classify maps an error to its category by typed variant. Stage tags are looked through.
// Errors no adapter typed are unknown.
func Classify(err error) business.ErrorCategory {
	if err == nil {
		return ""
	}

	var categorized business.CategorizedError
	if errors.As(err, &categorized) {
		return categorized.Category()
	}
	if errors.Is(errors.Cause(err), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return business.CategoryTimeout
	}
	return business.CategoryUnknown
}

// RetryPolicy configures RetryExecutor.
type RetryPolicy struct {
	MaxAttempts         int
	BaseDelay           time.Duration
	MaxDelay            time.Duration
	Multiplier          float64
	RandomizationFactor float64
}

// DefaultRetryPolicy is three attempts, 1s doubling up to 10s, with 20% jitter.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:         3,
		BaseDelay:           time.Second,
		MaxDelay:            10 * time.Second,
		Multiplier:          2,
		RandomizationFactor: 0.2,
	}
}

// RetryExecutor runs a fallible call with exponential backoff. Reverts fail immediately.
type RetryExecutor struct {
	policy   RetryPolicy
	logger   *zap.Logger
	newTimer func() backoff.Timer
}

// RetryOption customizes a RetryExecutor.
type RetryOption func(*RetryExecutor)

// WithTimer replaces the timer backoff waits on.
func WithTimer(newTimer func() backoff.Timer) RetryOption {
	return func(r *RetryExecutor) {
		r.newTimer = newTimer
	}
}

// NewRetryExecutor builds an executor for policy.
func NewRetryExecutor(policy RetryPolicy, log *zap.Logger, opts ...RetryOption) *RetryExecutor {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 1
	}
	if policy.Multiplier <= 0 {
		policy.Multiplier = 2
	}
	if log == nil {
		log = logger.Log
	}
	r := &RetryExecutor{policy: policy, logger: log}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Do calls op until it succeeds, fails with a non-retryable category, attempts run out or ctx
// ends. It returns the number of attempts made and the last error.
func (r *RetryExecutor) Do(ctx context.Context, name string, op func(ctx context.Context) error) (int, error) {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = r.policy.BaseDelay
	exp.MaxInterval = r.policy.MaxDelay
	exp.Multiplier = r.policy.Multiplier
	exp.RandomizationFactor = r.policy.RandomizationFactor
	exp.MaxElapsedTime = 0

	hinted := &retryAfterBackOff{BackOff: exp, max: r.policy.MaxDelay}
	b := backoff.WithContext(backoff.WithMaxRetries(hinted, uint64(r.policy.MaxAttempts-1)), ctx)

	attempts := 0
	operation := func() error {
		attempts++
		err := op(ctx)
		if err == nil {
			return nil
		}

		category := Classify(err)
		if !category.Retryable() {
			return backoff.Permanent(err)
		}

		var rateLimited *business.RateLimitError
		if errors.As(err, &rateLimited) {
			hinted.hint = rateLimited.RetryAfter
		}
		return err
	}

	notify := func(err error, wait time.Duration) {
		r.logger.Debug("Retrying operation",
			zap.String("operation", name),
			zap.Int("attempt", attempts),
			zap.String("category", string(Classify(err))),
			zap.Duration("wait", wait),
			zap.Error(err))
	}

	var timer backoff.Timer
	if r.newTimer != nil {
		timer = r.newTimer()
	}

	err := backoff.RetryNotifyWithTimer(operation, b, notify, timer)
	if err != nil && ctx.Err() != nil && Classify(err) == business.CategoryUnknown {
		err = &business.TimeoutError{Op: name, Err: err}
	}
	return attempts, err
}

// DoValue is Do for calls that return a value.
func DoValue[T any](ctx context.Context, r *RetryExecutor, name string, op func(ctx context.Context) (T, error)) (T, int, error) {
	var out T
	attempts, err := r.Do(ctx, name, func(ctx context.Context) error {
		v, err := op(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, attempts, err
}

// retryAfterBackOff stretches the next wait to a provider's Retry-After hint, capped at max.
type retryAfterBackOff struct {
	backoff.BackOff
	hint time.Duration
	max  time.Duration
}

func (b *retryAfterBackOff) NextBackOff() time.Duration {
	next := b.BackOff.NextBackOff()
	if next == backoff.Stop {
		return next
	}
	if b.hint > next {
		next = b.hint
		if b.max > 0 && next > b.max {
			next = b.max
		}
	}
	b.hint = 0
	return next
}
