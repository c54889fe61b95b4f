package services

import (
	"context"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/cyphera/cyphera-rebalancer/internal/interfaces"
	"github.com/cyphera/cyphera-rebalancer/internal/mocks"
	"github.com/cyphera/cyphera-rebalancer/internal/types/business"
)

// newStubPipeline wires a pipeline whose collaborators always succeed, except quotes for the
// accounts in rejected.
func newStubPipeline(t *testing.T, rejected ...string) *SwapPipeline {
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockQuoteProvider(ctrl)
	relay := mocks.NewMockRelayClient(ctrl)
	signer := mocks.NewMockOperationSigner(ctrl)

	skip := make(map[string]bool, len(rejected))
	for _, a := range rejected {
		skip[a] = true
	}

	provider.EXPECT().GetQuote(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, params interfaces.QuoteParams) (*interfaces.RoutedQuote, error) {
			if skip[params.Swapper] {
				return nil, business.NewRejected("no route")
			}
			return &interfaces.RoutedQuote{RequestID: params.Swapper, AmountIn: params.Amount, AmountOut: big.NewInt(1_000)}, nil
		}).AnyTimes()
	provider.EXPECT().BuildSwap(gomock.Any(), gomock.Any()).Return(&interfaces.SwapCall{To: testRouter, Data: []byte{0x01}}, nil).AnyTimes()
	relay.EXPECT().PrepareOperation(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req business.OperationRequest) (*business.PreparedOperation, error) {
			return &business.PreparedOperation{Hash: "0x" + req.NonceKey.Text(16), NonceKey: req.NonceKey}, nil
		}).AnyTimes()
	signer.EXPECT().SignOperationHash(gomock.Any()).Return([]byte{0x01}, nil).AnyTimes()
	relay.EXPECT().SendOperation(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, op *business.PreparedOperation, _ []byte) (string, error) {
			return op.Hash, nil
		}).AnyTimes()
	relay.EXPECT().WaitForReceipt(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, opHash string, _ time.Duration) (*business.OperationReceipt, error) {
			return &business.OperationReceipt{OpHash: opHash, TxHash: opHash + "ff", Success: true}, nil
		}).AnyTimes()

	cfg := testEngineConfig()
	retry, _ := newTestRetry(1)
	quotes := NewQuoteService(provider, retry, cfg, (&testClock{now: testRunTime}).Now, zap.NewNop())
	submitter := NewOperationSubmitter(relay, signer, retry, 0, time.Minute, zap.NewNop())
	return NewSwapPipeline(quotes, submitter, cfg.DelegationManagerAddress, "", zap.NewNop())
}

func strategyWallets(n int) []*business.WalletData {
	wallets := make([]*business.WalletData, n)
	for i := range wallets {
		wallets[i] = testWallet(accountAddr(i), uint32(i), usdc(int64(10*(i+1))))
	}
	return wallets
}

func TestConcurrentBatch_Execute(t *testing.T) {
	wallets := strategyWallets(3)
	strategy := NewConcurrentBatch(newStubPipeline(t, wallets[1].Account()), 2, 2*time.Second, zap.NewNop())

	var (
		mu     sync.Mutex
		sleeps []time.Duration
	)
	strategy.sleep = func(_ context.Context, d time.Duration) error {
		mu.Lock()
		sleeps = append(sleeps, d)
		mu.Unlock()
		return nil
	}

	keys := NewNonceAllocator((&testClock{now: testRunTime}).Now).BeginPhase(PhaseSwap)
	results := strategy.Execute(context.Background(), wallets, keys)

	require.Len(t, results, 3)
	assert.Equal(t, []time.Duration{2 * time.Second}, sleeps, "one pause between two batches")
	for i, res := range results {
		assert.Equal(t, wallets[i].Account(), res.Account, "results keep wallet order")
	}

	assert.True(t, results[0].Success)
	assert.Equal(t, "0x"+keys.Key(0).Text(16), results[0].OpHash)
	assert.Equal(t, "1000", results[0].ExpectedOut.String())

	assert.False(t, results[1].Success)
	assert.Equal(t, business.StageQuoteFetch, results[1].Stage)
	assert.Equal(t, business.CategoryRevert, results[1].ErrorCategory)

	assert.True(t, results[2].Success)
	assert.Equal(t, "concurrent_batch", strategy.Name())
}

func TestSequentialSafe_Execute(t *testing.T) {
	wallets := strategyWallets(3)
	strategy := NewSequentialSafe(newStubPipeline(t, wallets[0].Account()), zap.NewNop())

	keys := NewNonceAllocator(nil).BeginPhase(PhaseRetry)
	results := strategy.Execute(context.Background(), wallets, keys)

	require.Len(t, results, 3)
	for i, res := range results {
		assert.Equal(t, wallets[i].Account(), res.Account)
		assert.Equal(t, i != 0, res.Success)
	}
	assert.Equal(t, "0x"+keys.Key(2).Text(16), results[2].OpHash)
	assert.Equal(t, "sequential_safe", strategy.Name())
}

func TestSleepContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
	assert.NoError(t, sleepContext(context.Background(), time.Millisecond))
}
