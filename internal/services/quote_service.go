package services

import (
	"context"
	"encoding/json"
	"math/big"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cyphera/cyphera-rebalancer/internal/config"
	"github.com/cyphera/cyphera-rebalancer/internal/interfaces"
	"github.com/cyphera/cyphera-rebalancer/internal/logger"
	"github.com/cyphera/cyphera-rebalancer/internal/types/business"
)

var (
	largeTradeUSD  = decimal.NewFromInt(10_000)
	mediumTradeUSD = decimal.NewFromInt(1_000)
)

// SlippageBps picks the tolerance for a trade of amountUSD. Large trades get the tightest.
func SlippageBps(amountUSD decimal.Decimal) int64 {
	switch {
	case amountUSD.GreaterThanOrEqual(largeTradeUSD):
		return 30
	case amountUSD.GreaterThanOrEqual(mediumTradeUSD):
		return 50
	default:
		return 100
	}
}

// MinOutput is expected × (10000 − bps) / 10000, rounded down.
func MinOutput(expected *big.Int, bps int64) *big.Int {
	out := new(big.Int).Mul(expected, big.NewInt(10000-bps))
	return out.Quo(out, bpsDenominator)
}

// QuoteService acquires and validates routed quotes.
type QuoteService struct {
	provider interfaces.QuoteProvider
	retry    *RetryExecutor
	chainID  int64
	validity time.Duration
	routers  map[string]struct{}
	now      func() time.Time
	logger   *zap.Logger
}

// NewQuoteService builds a quote service that only accepts the configured routers.
func NewQuoteService(provider interfaces.QuoteProvider, retry *RetryExecutor, cfg config.EngineConfig, now func() time.Time, log *zap.Logger) *QuoteService {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = logger.Log
	}
	routers := make(map[string]struct{}, len(cfg.AllowedRouters))
	for _, r := range cfg.AllowedRouters {
		routers[strings.ToLower(r)] = struct{}{}
	}
	return &QuoteService{
		provider: provider,
		retry:    retry,
		chainID:  cfg.ChainID,
		validity: cfg.QuoteValidity,
		routers:  routers,
		now:      now,
		logger:   log,
	}
}

// IsAllowedRouter reports whether target is an allow-listed router.
func (s *QuoteService) IsAllowedRouter(target string) bool {
	_, ok := s.routers[strings.ToLower(strings.TrimSpace(target))]
	return ok
}

// Acquire fetches a quote and its executable call for the wallet's net amount. Fetch
// failures carry stage quote_fetch; a quote that fails validation carries quote_validate.
func (s *QuoteService) Acquire(ctx context.Context, w *business.WalletData) (*business.Quote, int, error) {
	slippage := SlippageBps(w.GrossUSD)
	params := interfaces.QuoteParams{
		Swapper:     w.Account(),
		TokenIn:     w.SellToken.Address,
		TokenOut:    w.BuyToken.Address,
		Amount:      w.Net,
		ChainID:     s.chainID,
		SlippageBps: slippage,
	}

	routed, attempts, err := DoValue(ctx, s.retry, "quote", func(ctx context.Context) (*interfaces.RoutedQuote, error) {
		return s.provider.GetQuote(ctx, params)
	})
	if err != nil {
		return nil, attempts, business.NewStageError(business.StageQuoteFetch, err)
	}
	acquiredAt := s.now()

	swap, more, err := DoValue(ctx, s.retry, "swap", func(ctx context.Context) (*interfaces.SwapCall, error) {
		return s.provider.BuildSwap(ctx, routed)
	})
	attempts += more
	if err != nil {
		return nil, attempts, business.NewStageError(business.StageQuoteFetch, err)
	}

	if err := s.validate(w, routed, swap); err != nil {
		return nil, attempts, business.NewStageError(business.StageQuoteValidate, err)
	}

	value := swap.Value
	if value == nil {
		value = new(big.Int)
	}

	q := &business.Quote{
		RequestID:   routed.RequestID,
		Raw:         json.RawMessage(routed.Raw),
		AmountIn:    routed.AmountIn,
		ExpectedOut: routed.AmountOut,
		MinOut:      MinOutput(routed.AmountOut, slippage),
		SlippageBps: slippage,
		AmountUSD:   w.GrossUSD,
		Target:      swap.To,
		Calldata:    swap.Data,
		Value:       value,
		AcquiredAt:  acquiredAt,
	}

	s.logger.Debug("Quote acquired",
		zap.String("account", w.Account()),
		zap.String("request_id", q.RequestID),
		zap.String("expected_out", q.ExpectedOut.String()),
		zap.String("min_out", q.MinOut.String()),
		zap.Int64("slippage_bps", slippage))
	return q, attempts, nil
}

func (s *QuoteService) validate(w *business.WalletData, routed *interfaces.RoutedQuote, swap *interfaces.SwapCall) error {
	if routed.AmountOut == nil || routed.AmountOut.Sign() <= 0 {
		return business.NewRejected("quote output amount is zero")
	}
	if routed.AmountIn != nil && routed.AmountIn.Cmp(w.Net) != 0 {
		return business.NewRejected("quote input %s differs from requested %s", routed.AmountIn, w.Net)
	}
	if !s.IsAllowedRouter(swap.To) {
		return business.NewRejected("swap target %s is not an allowed router", swap.To)
	}
	if swap.Value != nil && swap.Value.Sign() != 0 {
		return business.NewRejected("swap requires native value %s", swap.Value)
	}
	return nil
}

// IsFresh reports whether the quote is still inside the validity window at now.
func (s *QuoteService) IsFresh(q *business.Quote, now time.Time) bool {
	return q.Age(now) < s.validity
}

// CheckFresh returns a QuoteExpiredError when the quote is too old to submit.
func (s *QuoteService) CheckFresh(q *business.Quote) error {
	now := s.now()
	if s.IsFresh(q, now) {
		return nil
	}
	return &business.QuoteExpiredError{Age: q.Age(now), Validity: s.validity}
}
