package services

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/cyphera/cyphera-rebalancer/internal/contracts"
	"github.com/cyphera/cyphera-rebalancer/internal/logger"
	"github.com/cyphera/cyphera-rebalancer/internal/types/business"
)

// SwapPipeline runs one wallet through quote, build, send and confirm. The steps are exposed
// separately so a batch can run each step for all of its items at once.
type SwapPipeline struct {
	quotes            *QuoteService
	submitter         *OperationSubmitter
	delegationManager string
	feeRecipient      string
	logger            *zap.Logger
}

// NewSwapPipeline builds a pipeline. With a fee recipient the fee is transferred in the same
// redemption as the swap.
func NewSwapPipeline(quotes *QuoteService, submitter *OperationSubmitter, delegationManager, feeRecipient string, log *zap.Logger) *SwapPipeline {
	if log == nil {
		log = logger.Log
	}
	return &SwapPipeline{
		quotes:            quotes,
		submitter:         submitter,
		delegationManager: delegationManager,
		feeRecipient:      feeRecipient,
		logger:            log,
	}
}

// swapItem is one wallet in flight. result is set once the item is finished.
type swapItem struct {
	swap     *business.PreparedSwap
	attempts int
	result   *business.ExecutionResult
}

func newSwapItem(w *business.WalletData, key *big.Int) *swapItem {
	return &swapItem{swap: &business.PreparedSwap{Wallet: w, NonceKey: key}}
}

func (it *swapItem) done() bool { return it.result != nil }

func (p *SwapPipeline) fail(it *swapItem, stage business.Stage, err error) {
	w := it.swap.Wallet
	res := failureResult(w.Record, w, w.Action, stage, err)
	res.Attempts = it.attempts
	res.OpHash = it.swap.OpHash
	if q := it.swap.Quote; q != nil {
		res.ExpectedOut = q.ExpectedOut
		res.MinOut = q.MinOut
	}
	it.result = res
	p.logger.Warn("Swap failed", append(resultFields(res), zap.String("error", res.ErrorMessage))...)
}

func (p *SwapPipeline) quote(ctx context.Context, it *swapItem) {
	q, attempts, err := p.quotes.Acquire(ctx, it.swap.Wallet)
	it.attempts += attempts
	if err != nil {
		p.fail(it, business.StageQuoteFetch, err)
		return
	}
	it.swap.Quote = q
}

func (p *SwapPipeline) checkFresh(it *swapItem) bool {
	if err := p.quotes.CheckFresh(it.swap.Quote); err != nil {
		p.fail(it, business.StageQuoteValidate, err)
		return false
	}
	return true
}

func (p *SwapPipeline) executions(w *business.WalletData, q *business.Quote) ([]contracts.Execution, error) {
	swap := contracts.Execution{
		Target:   common.HexToAddress(q.Target),
		Value:    q.Value,
		CallData: q.Calldata,
	}
	if p.feeRecipient == "" || w.Fee == nil || w.Fee.Sign() == 0 {
		return []contracts.Execution{swap}, nil
	}

	transfer, err := contracts.EncodeTransfer(common.HexToAddress(p.feeRecipient), w.Fee)
	if err != nil {
		return nil, err
	}
	fee := contracts.Execution{Target: common.HexToAddress(w.SellToken.Address), CallData: transfer}
	return []contracts.Execution{fee, swap}, nil
}

func (p *SwapPipeline) build(ctx context.Context, it *swapItem) {
	if !p.checkFresh(it) {
		return
	}

	w := it.swap.Wallet
	execs, err := p.executions(w, it.swap.Quote)
	if err != nil {
		p.fail(it, business.StageBuild, business.NewRejected("encode fee transfer: %v", err))
		return
	}
	req, err := redeemRequest(p.delegationManager, w.Delegation, it.swap.NonceKey, execs...)
	if err != nil {
		p.fail(it, business.StageBuild, err)
		return
	}

	op, attempts, err := p.submitter.Prepare(ctx, req)
	it.attempts += attempts
	if err != nil {
		p.fail(it, business.StageBuild, err)
		return
	}
	it.swap.Operation = op
}

func (p *SwapPipeline) send(ctx context.Context, it *swapItem) {
	// last look before the operation leaves
	if !p.checkFresh(it) {
		return
	}

	opHash, attempts, err := p.submitter.Send(ctx, it.swap.Operation)
	it.attempts += attempts
	if err != nil {
		p.fail(it, business.StageSubmit, err)
		return
	}
	it.swap.OpHash = opHash
}

func (p *SwapPipeline) confirm(ctx context.Context, it *swapItem) {
	receipt, err := p.submitter.Confirm(ctx, it.swap.OpHash)
	if err != nil {
		if receipt != nil {
			it.swap.OpHash = receipt.OpHash
		}
		p.fail(it, business.StageConfirm, err)
		if receipt != nil {
			it.result.TxHash = receipt.TxHash
		}
		return
	}

	w := it.swap.Wallet
	res := newResult(w.Record, w, w.Action)
	res.Stage = business.StageDone
	res.Success = true
	res.OpHash = it.swap.OpHash
	res.TxHash = receipt.TxHash
	res.Attempts = it.attempts
	res.ExpectedOut = it.swap.Quote.ExpectedOut
	res.MinOut = it.swap.Quote.MinOut
	it.result = res

	p.logger.Info("Swap confirmed",
		zap.String("account", w.Account()),
		zap.String("action", string(w.Action)),
		zap.String("sell_token", w.SellToken.Symbol),
		zap.String("net", w.Net.String()),
		zap.String("tx_hash", receipt.TxHash),
		zap.String("fee", w.Fee.String()))
}

// Run executes every step for one wallet in order.
func (p *SwapPipeline) Run(ctx context.Context, w *business.WalletData, key *big.Int) *business.ExecutionResult {
	it := newSwapItem(w, key)
	for _, step := range []func(context.Context, *swapItem){p.quote, p.build, p.send, p.confirm} {
		step(ctx, it)
		if it.done() {
			break
		}
	}
	return it.result
}
