package business

import (
	"encoding/json"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Action is what the run does with every eligible account.
type Action string

const (
	ActionAccumulate Action = "accumulate"
	ActionReduce     Action = "reduce"
	ActionHold       Action = "hold"
)

// Sentiment is one reading of the daily index.
type Sentiment struct {
	Score          int       `json:"score"`
	Classification string    `json:"classification"`
	Timestamp      time.Time `json:"timestamp"`
}

// Decision is the action for the day and the share of balance to trade, in basis points.
type Decision struct {
	Action      Action `json:"action"`
	BasisPoints int64  `json:"basis_points"`
}

// Percentage returns the decision share as a percentage (500 bps -> 5).
func (d Decision) Percentage() decimal.Decimal {
	return decimal.NewFromInt(d.BasisPoints).Div(decimal.NewFromInt(100))
}

// TokenInfo describes an ERC20 asset the engine trades.
type TokenInfo struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Decimals int32  `json:"decimals"`
}

// ToUnits converts a human amount into base units, rounding down.
func (t TokenInfo) ToUnits(amount decimal.Decimal) *big.Int {
	return amount.Shift(t.Decimals).Floor().BigInt()
}

// FromUnits converts base units into a human amount.
func (t TokenInfo) FromUnits(units *big.Int) decimal.Decimal {
	if units == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(units, -t.Decimals)
}

// WalletData is the per-run working set for one eligible account. Never persisted.
type WalletData struct {
	Record     *DelegationRecord
	Delegation *DelegationStruct
	Index      uint32
	Action     Action

	SellToken TokenInfo
	BuyToken  TokenInfo

	Balance  *big.Int
	Gross    *big.Int
	Fee      *big.Int
	Net      *big.Int
	GrossUSD decimal.Decimal
	FeeUSD   decimal.Decimal
	ValueUSD decimal.Decimal
}

// Account returns the smart account address of the wallet.
func (w *WalletData) Account() string {
	return w.Record.AccountAddress
}

// Quote is a routed trade for one wallet plus the executable call that realizes it.
type Quote struct {
	RequestID   string
	Raw         json.RawMessage
	AmountIn    *big.Int
	ExpectedOut *big.Int
	MinOut      *big.Int
	SlippageBps int64
	AmountUSD   decimal.Decimal

	Target   string
	Calldata []byte
	Value    *big.Int

	AcquiredAt time.Time
}

// Age returns how long ago the quote was acquired.
func (q *Quote) Age(now time.Time) time.Duration {
	return now.Sub(q.AcquiredAt)
}

// OperationRequest is a call the operator account should execute through the relay.
type OperationRequest struct {
	To       string
	Data     []byte
	Value    *big.Int
	NonceKey *big.Int
}

// PreparedOperation is an operation the relay built and is waiting for the operator to sign.
type PreparedOperation struct {
	Hash     string
	Raw      json.RawMessage
	NonceKey *big.Int
}

// OperationReceipt is the relay's final word on a submitted operation.
type OperationReceipt struct {
	OpHash  string
	TxHash  string
	Success bool
	Reason  string
}

// PreparedSwap pairs a wallet with its quote, sequence key and relay operation.
type PreparedSwap struct {
	Wallet    *WalletData
	Quote     *Quote
	NonceKey  *big.Int
	Operation *PreparedOperation
	OpHash    string
}

// ExecutionResult is the terminal record of one account's attempt in a run.
type ExecutionResult struct {
	ID       uuid.UUID
	ParentID uuid.UUID
	RunID    uuid.UUID

	Wallet  *WalletData
	Record  *DelegationRecord
	Account string
	OwnerID string
	Action  Action

	Stage         Stage
	Success       bool
	OpHash        string
	TxHash        string
	ErrorCategory ErrorCategory
	ErrorMessage  string
	RetryCount    int
	Attempts      int

	Gross       *big.Int
	Fee         *big.Int
	Net         *big.Int
	ExpectedOut *big.Int
	MinOut      *big.Int
	VolumeUSD   decimal.Decimal
	FeeUSD      decimal.Decimal

	SentimentScore int
	CreatedAt      time.Time
}

// Retryable reports whether the result may be replayed at the end of the run. Only swap
// pipeline failures qualify. A result whose operation the relay already accepted is never
// replayed, since it may still land. A send that failed without an answer is treated the
// same way: the relay may hold the operation, and a replay runs under a fresh nonce key.
// Only an explicit rate-limit refusal is known to have left nothing behind.
func (r *ExecutionResult) Retryable() bool {
	if r.Success || r.OpHash != "" || r.Wallet == nil {
		return false
	}
	if !r.Stage.InSwapPipeline() {
		return false
	}
	if r.Stage == StageSubmit && r.ErrorCategory != CategoryRateLimit {
		return false
	}
	return r.ErrorCategory.Retryable()
}

// RunSummary is the aggregate published at the end of every run.
type RunSummary struct {
	RunID          uuid.UUID       `json:"run_id"`
	RunDate        string          `json:"run_date"`
	Status         string          `json:"status"`
	DryRun         bool            `json:"dry_run"`
	Forced         bool            `json:"forced"`
	SentimentScore int             `json:"sentiment_score"`
	Classification string          `json:"classification"`
	Action         Action          `json:"action"`
	BasisPoints    int64           `json:"basis_points"`
	Processed      int             `json:"processed"`
	Succeeded      int             `json:"succeeded"`
	Failed         int             `json:"failed"`
	Retried        int             `json:"retried"`
	VolumeUSD      decimal.Decimal `json:"volume_usd"`
	FeeUSD         decimal.Decimal `json:"fee_usd"`
	Failures       []FailureLine   `json:"failures,omitempty"`
	StartedAt      time.Time       `json:"started_at"`
	CompletedAt    time.Time       `json:"completed_at"`
}

// FailureLine is one failed account in the summary.
type FailureLine struct {
	Account  string        `json:"account"`
	Stage    Stage         `json:"stage"`
	Category ErrorCategory `json:"category"`
	Message  string        `json:"message"`
}
