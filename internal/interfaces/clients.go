package interfaces

import (
	"context"
	"math/big"
	"time"

	"github.com/cyphera/cyphera-rebalancer/internal/types/business"
	"github.com/shopspring/decimal"
)

// SentimentSource returns the latest reading of the daily sentiment index.
type SentimentSource interface {
	FetchSentiment(ctx context.Context) (*business.Sentiment, error)
}

// ChainReader performs the read-only chain queries the engine needs.
type ChainReader interface {
	TokenBalance(ctx context.Context, token, owner string) (*big.Int, error)
	Allowance(ctx context.Context, token, owner, spender string) (*big.Int, error)
	Permit2Allowance(ctx context.Context, owner, token, spender string) (*Permit2Allowance, error)
	HasCode(ctx context.Context, address string) (bool, error)
	NativeBalance(ctx context.Context, address string) (*big.Int, error)
}

// Permit2Allowance is the internal allowance Permit2 keeps per (owner, token, spender).
type Permit2Allowance struct {
	Amount     *big.Int
	Expiration time.Time
	Nonce      uint64
}

// QuoteProvider is the swap routing service: a priced quote, then the call that realizes it.
type QuoteProvider interface {
	GetQuote(ctx context.Context, params QuoteParams) (*RoutedQuote, error)
	BuildSwap(ctx context.Context, quote *RoutedQuote) (*SwapCall, error)
}

// QuoteParams asks for an exact-input quote. SlippageBps, when set, is the tolerance the
// provider bakes into the executable call.
type QuoteParams struct {
	Swapper     string
	TokenIn     string
	TokenOut    string
	Amount      *big.Int
	ChainID     int64
	SlippageBps int64
}

// RoutedQuote is the provider's quote. Raw is handed back verbatim to BuildSwap.
type RoutedQuote struct {
	RequestID string
	AmountIn  *big.Int
	AmountOut *big.Int
	Routing   string
	Raw       []byte
}

// SwapCall is the executable transaction the provider proposes.
type SwapCall struct {
	To    string
	Data  []byte
	Value *big.Int
}

// RelayClient is the operation relay / execution sponsor.
type RelayClient interface {
	PrepareOperation(ctx context.Context, req business.OperationRequest) (*business.PreparedOperation, error)
	SendOperation(ctx context.Context, op *business.PreparedOperation, signature []byte) (string, error)
	WaitForReceipt(ctx context.Context, opHash string, timeout time.Duration) (*business.OperationReceipt, error)
}

// OperationSigner signs relay operation hashes as the operating identity.
type OperationSigner interface {
	Address() string
	SignOperationHash(hash string) ([]byte, error)
}

// PriceSource returns USD reference prices by token symbol.
type PriceSource interface {
	GetUSDPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// SummaryPublisher hands the run summary to downstream consumers.
type SummaryPublisher interface {
	PublishRunSummary(ctx context.Context, summary *business.RunSummary) error
}

// SummaryNotifier sends the human-facing daily summary to operators.
type SummaryNotifier interface {
	SendRunSummary(ctx context.Context, summary *business.RunSummary) error
}
