package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/cyphera/cyphera-rebalancer/internal/logger"
	"github.com/cyphera/cyphera-rebalancer/internal/types/business"
)

// ExecutionStrategy runs the swap pipeline over a set of wallets. Every wallet ends with
// exactly one result.
type ExecutionStrategy interface {
	Name() string
	Execute(ctx context.Context, wallets []*business.WalletData, keys PhaseKeys) []*business.ExecutionResult
}

// ConcurrentBatch processes fixed-size batches, running each pipeline step for the whole
// batch at once and pausing between batches.
type ConcurrentBatch struct {
	pipeline   *SwapPipeline
	batchSize  int
	batchDelay time.Duration
	sleep      func(ctx context.Context, d time.Duration) error
	logger     *zap.Logger
}

// NewConcurrentBatch builds the strategy used for the daily run.
func NewConcurrentBatch(pipeline *SwapPipeline, batchSize int, batchDelay time.Duration, log *zap.Logger) *ConcurrentBatch {
	if batchSize <= 0 {
		batchSize = 1
	}
	if log == nil {
		log = logger.Log
	}
	return &ConcurrentBatch{
		pipeline:   pipeline,
		batchSize:  batchSize,
		batchDelay: batchDelay,
		sleep:      sleepContext,
		logger:     log,
	}
}

func (s *ConcurrentBatch) Name() string { return "concurrent_batch" }

// Execute runs the wallets in batches of batchSize.
func (s *ConcurrentBatch) Execute(ctx context.Context, wallets []*business.WalletData, keys PhaseKeys) []*business.ExecutionResult {
	results := make([]*business.ExecutionResult, 0, len(wallets))

	for start := 0; start < len(wallets); start += s.batchSize {
		if start > 0 && s.batchDelay > 0 {
			if err := s.sleep(ctx, s.batchDelay); err != nil {
				s.logger.Warn("Batch delay interrupted", zap.Error(err))
			}
		}

		end := min(start+s.batchSize, len(wallets))
		s.logger.Info("Processing batch",
			zap.Int("batch_start", start),
			zap.Int("batch_size", end-start),
			zap.Int("total", len(wallets)))

		results = append(results, s.runBatch(ctx, wallets[start:end], keys)...)
	}
	return results
}

func (s *ConcurrentBatch) runBatch(ctx context.Context, batch []*business.WalletData, keys PhaseKeys) []*business.ExecutionResult {
	items := make([]*swapItem, len(batch))
	for i, w := range batch {
		items[i] = newSwapItem(w, keys.Key(w.Index))
	}

	steps := []func(context.Context, *swapItem){
		s.pipeline.quote,
		s.pipeline.build,
		s.pipeline.send,
		s.pipeline.confirm,
	}
	for _, step := range steps {
		forEach(len(items), 0, func(i int) {
			if !items[i].done() {
				step(ctx, items[i])
			}
		})
	}

	results := make([]*business.ExecutionResult, len(items))
	for i, it := range items {
		results[i] = it.result
	}
	return results
}

// SequentialSafe runs one wallet at a time. Used for end-of-run retries and corrections.
type SequentialSafe struct {
	pipeline *SwapPipeline
	logger   *zap.Logger
}

// NewSequentialSafe builds the one-at-a-time strategy.
func NewSequentialSafe(pipeline *SwapPipeline, log *zap.Logger) *SequentialSafe {
	if log == nil {
		log = logger.Log
	}
	return &SequentialSafe{pipeline: pipeline, logger: log}
}

func (s *SequentialSafe) Name() string { return "sequential_safe" }

// Execute runs each wallet's full pipeline before starting the next.
func (s *SequentialSafe) Execute(ctx context.Context, wallets []*business.WalletData, keys PhaseKeys) []*business.ExecutionResult {
	results := make([]*business.ExecutionResult, 0, len(wallets))
	for _, w := range wallets {
		results = append(results, s.pipeline.Run(ctx, w, keys.Key(w.Index)))
	}
	return results
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
