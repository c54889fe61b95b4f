package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cyphera/cyphera-rebalancer/internal/types/business"
)

// instantTimer fires immediately and remembers the waits it was asked for.
type instantTimer struct {
	mu    sync.Mutex
	waits []time.Duration
	c     chan time.Time
}

func (t *instantTimer) Start(d time.Duration) {
	t.mu.Lock()
	t.waits = append(t.waits, d)
	t.mu.Unlock()
	t.c = make(chan time.Time, 1)
	t.c <- time.Now()
}

func (t *instantTimer) Stop() {}

func (t *instantTimer) C() <-chan time.Time { return t.c }

func newTestRetry(maxAttempts int) (*RetryExecutor, *instantTimer) {
	timer := &instantTimer{}
	policy := DefaultRetryPolicy()
	policy.MaxAttempts = maxAttempts
	return NewRetryExecutor(policy, zap.NewNop(), WithTimer(func() backoff.Timer { return timer })), timer
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want business.ErrorCategory
	}{
		{"network", &business.NetworkError{Op: "rpc", Err: errors.New("connection reset")}, business.CategoryNetwork},
		{"timeout", &business.TimeoutError{Op: "rpc"}, business.CategoryTimeout},
		{"rate limit", &business.RateLimitError{Op: "quote", Err: errors.New("429")}, business.CategoryRateLimit},
		{"quote expired", &business.QuoteExpiredError{Age: 4 * time.Minute, Validity: 3 * time.Minute}, business.CategoryQuoteExpired},
		{"revert", business.NewRejected("execution reverted"), business.CategoryRevert},
		{"stage tagged", business.NewStageError(business.StageSubmit, &business.RateLimitError{Op: "send"}), business.CategoryRateLimit},
		{"wrapped", fmt.Errorf("outer: %w", business.NewRejected("insufficient balance")), business.CategoryRevert},
		{"deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), business.CategoryTimeout},
		{"untyped", errors.New("execution reverted"), business.CategoryUnknown},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
			// same input, same answer
			assert.Equal(t, Classify(tt.err), Classify(tt.err))
		})
	}
}

func TestRetryExecutor_RetriesTransientFailures(t *testing.T) {
	r, timer := newTestRetry(3)

	calls := 0
	attempts, err := r.Do(context.Background(), "flaky", func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return &business.NetworkError{Op: "flaky", Err: errors.New("reset")}
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	require.Len(t, timer.waits, 2)
	// 1s and 2s with 20% jitter
	assert.InDelta(t, float64(time.Second), float64(timer.waits[0]), float64(200*time.Millisecond))
	assert.InDelta(t, float64(2*time.Second), float64(timer.waits[1]), float64(400*time.Millisecond))
}

func TestRetryExecutor_NeverRetriesRevert(t *testing.T) {
	r, timer := newTestRetry(5)

	calls := 0
	attempts, err := r.Do(context.Background(), "swap", func(ctx context.Context) error {
		calls++
		return business.NewRejected("execution reverted")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, attempts)
	assert.Empty(t, timer.waits)
	assert.Equal(t, business.CategoryRevert, Classify(err))
}

func TestRetryExecutor_GivesUpAfterMaxAttempts(t *testing.T) {
	r, timer := newTestRetry(3)

	attempts, err := r.Do(context.Background(), "down", func(ctx context.Context) error {
		return &business.TimeoutError{Op: "down"}
	})

	require.Error(t, err)
	assert.Equal(t, 3, attempts)
	assert.Len(t, timer.waits, 2)
	assert.Equal(t, business.CategoryTimeout, Classify(err))
}

func TestRetryExecutor_RetriesUnknownConservatively(t *testing.T) {
	r, _ := newTestRetry(2)

	attempts, err := r.Do(context.Background(), "odd", func(ctx context.Context) error {
		return errors.New("something new")
	})

	require.Error(t, err)
	assert.Equal(t, 2, attempts)
}

func TestRetryExecutor_HonorsRetryAfterUpToMaxDelay(t *testing.T) {
	r, timer := newTestRetry(3)

	_, err := r.Do(context.Background(), "limited", func(ctx context.Context) error {
		return &business.RateLimitError{Op: "limited", RetryAfter: time.Minute, Err: errors.New("429")}
	})

	require.Error(t, err)
	require.Len(t, timer.waits, 2)
	assert.Equal(t, 10*time.Second, timer.waits[0])
	assert.Equal(t, 10*time.Second, timer.waits[1])
}

func TestRetryExecutor_StopsOnCancelledContext(t *testing.T) {
	policy := DefaultRetryPolicy()
	policy.BaseDelay = time.Hour
	policy.MaxDelay = time.Hour
	r := NewRetryExecutor(policy, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	attempts, err := r.Do(ctx, "cancelled", func(ctx context.Context) error {
		cancel()
		return &business.NetworkError{Op: "cancelled", Err: errors.New("reset")}
	})

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
	assert.Equal(t, business.CategoryTimeout, Classify(err))
}

func TestDoValue(t *testing.T) {
	r, _ := newTestRetry(2)

	calls := 0
	v, attempts, err := DoValue(context.Background(), r, "value", func(ctx context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, &business.NetworkError{Op: "value", Err: errors.New("reset")}
		}
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 2, attempts)
}
