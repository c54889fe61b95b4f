package services

import (
	"context"
	"math/big"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cyphera/cyphera-rebalancer/internal/config"
	"github.com/cyphera/cyphera-rebalancer/internal/interfaces"
	"github.com/cyphera/cyphera-rebalancer/internal/logger"
	"github.com/cyphera/cyphera-rebalancer/internal/types/business"
)

var bpsDenominator = big.NewInt(10000)

// Amounts is the trade sizing of one account, in base units of the sold asset.
type Amounts struct {
	Gross *big.Int
	Fee   *big.Int
	Net   *big.Int
}

// ComputeAmounts sizes a trade: gross is bps of balance, capped by capUnits (when non-nil)
// and by balance; fee is feeBps of gross; net is the remainder. All divisions round down.
func ComputeAmounts(balance *big.Int, bps int64, capUnits *big.Int, feeBps int64) Amounts {
	if balance == nil || balance.Sign() < 0 {
		balance = new(big.Int)
	}

	gross := new(big.Int).Mul(balance, big.NewInt(bps))
	gross.Quo(gross, bpsDenominator)
	if capUnits != nil && gross.Cmp(capUnits) > 0 {
		gross.Set(capUnits)
	}
	if gross.Cmp(balance) > 0 {
		gross.Set(balance)
	}
	if gross.Sign() < 0 {
		gross.SetInt64(0)
	}

	fee := new(big.Int).Mul(gross, big.NewInt(feeBps))
	fee.Quo(fee, bpsDenominator)

	return Amounts{
		Gross: gross,
		Fee:   fee,
		Net:   new(big.Int).Sub(gross, fee),
	}
}

// EligibilityCalculator reads balances and sizes each account's trade.
type EligibilityCalculator struct {
	chain  interfaces.ChainReader
	prices *PriceCache
	retry  *RetryExecutor
	cfg    config.EngineConfig
	logger *zap.Logger
}

// NewEligibilityCalculator builds a calculator.
func NewEligibilityCalculator(chain interfaces.ChainReader, prices *PriceCache, retry *RetryExecutor, cfg config.EngineConfig, log *zap.Logger) *EligibilityCalculator {
	if log == nil {
		log = logger.Log
	}
	return &EligibilityCalculator{chain: chain, prices: prices, retry: retry, cfg: cfg, logger: log}
}

// Tokens resolves what the account sells and buys for action.
func (c *EligibilityCalculator) Tokens(record *business.DelegationRecord, action business.Action) (sell, buy business.TokenInfo, err error) {
	target, ok := c.cfg.TargetToken(record.TargetToken)
	if !ok {
		return sell, buy, business.NewRejected("unsupported target token %s", record.TargetToken)
	}
	if action == business.ActionReduce {
		return target, c.cfg.FundingToken, nil
	}
	return c.cfg.FundingToken, target, nil
}

// Evaluate computes WalletData for every candidate concurrently. Accounts whose balance read
// fails get a result with stage balance. Accounts below the value floor or minimum trade size
// are dropped with a log line only.
func (c *EligibilityCalculator) Evaluate(ctx context.Context, candidates []Candidate, decision business.Decision) ([]*business.WalletData, []*business.ExecutionResult) {
	wallets := make([]*business.WalletData, len(candidates))
	results := make([]*business.ExecutionResult, len(candidates))

	forEach(len(candidates), c.cfg.BatchSize, func(i int) {
		wallets[i], results[i] = c.evaluate(ctx, candidates[i], decision)
	})

	var eligible []*business.WalletData
	var failed []*business.ExecutionResult
	for i := range candidates {
		if wallets[i] != nil {
			eligible = append(eligible, wallets[i])
		}
		if results[i] != nil {
			failed = append(failed, results[i])
		}
	}
	return eligible, failed
}

func (c *EligibilityCalculator) evaluate(ctx context.Context, cand Candidate, decision business.Decision) (*business.WalletData, *business.ExecutionResult) {
	record := cand.Record
	log := c.logger.With(zap.String("account", record.AccountAddress), zap.String("stage", string(business.StageEligibility)))

	sell, buy, err := c.Tokens(record, decision.Action)
	if err != nil {
		return nil, failureResult(record, nil, decision.Action, business.StageEligibility, err)
	}
	target := buy
	if decision.Action == business.ActionReduce {
		target = sell
	}

	fundingBalance, _, err := DoValue(ctx, c.retry, "funding balance", func(ctx context.Context) (*big.Int, error) {
		return c.chain.TokenBalance(ctx, c.cfg.FundingToken.Address, record.AccountAddress)
	})
	if err != nil {
		return nil, failureResult(record, nil, decision.Action, business.StageBalance, err)
	}
	targetBalance, _, err := DoValue(ctx, c.retry, "target balance", func(ctx context.Context) (*big.Int, error) {
		return c.chain.TokenBalance(ctx, target.Address, record.AccountAddress)
	})
	if err != nil {
		return nil, failureResult(record, nil, decision.Action, business.StageBalance, err)
	}

	targetPrice, err := c.prices.Price(ctx, target.Symbol)
	if err != nil {
		return nil, failureResult(record, nil, decision.Action, business.StageEligibility, err)
	}

	valueUSD := c.cfg.FundingToken.FromUnits(fundingBalance).Add(target.FromUnits(targetBalance).Mul(targetPrice))
	if valueUSD.LessThan(c.cfg.MinAccountValueUSD) {
		log.Info("Account below minimum value, skipping",
			zap.String("value_usd", valueUSD.StringFixed(2)),
			zap.String("min_usd", c.cfg.MinAccountValueUSD.String()))
		return nil, nil
	}

	balance, sellPrice := fundingBalance, decimal.NewFromInt(1)
	if decision.Action == business.ActionReduce {
		balance, sellPrice = targetBalance, targetPrice
	}
	if !sellPrice.IsPositive() {
		return nil, failureResult(record, nil, decision.Action, business.StageEligibility, business.NewRejected("no price for %s", sell.Symbol))
	}

	if !record.MaxAmountUSD.IsPositive() {
		log.Info("Account has no per-operation allowance, skipping")
		return nil, nil
	}
	capUnits := sell.ToUnits(record.MaxAmountUSD.Div(sellPrice))

	amounts := ComputeAmounts(balance, decision.BasisPoints, capUnits, c.cfg.FeeBps)
	grossUSD := sell.FromUnits(amounts.Gross).Mul(sellPrice)
	if grossUSD.LessThan(c.cfg.MinTradeUSD) || amounts.Net.Sign() == 0 {
		log.Info("Trade below minimum size, skipping",
			zap.String("gross", amounts.Gross.String()),
			zap.String("gross_usd", grossUSD.StringFixed(2)))
		return nil, nil
	}

	return &business.WalletData{
		Record:     record,
		Delegation: cand.Delegation,
		Index:      cand.Index,
		Action:     decision.Action,
		SellToken:  sell,
		BuyToken:   buy,
		Balance:    balance,
		Gross:      amounts.Gross,
		Fee:        amounts.Fee,
		Net:        amounts.Net,
		GrossUSD:   grossUSD,
		FeeUSD:     sell.FromUnits(amounts.Fee).Mul(sellPrice),
		ValueUSD:   valueUSD,
	}, nil
}
