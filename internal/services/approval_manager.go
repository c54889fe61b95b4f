package services

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/cyphera/cyphera-rebalancer/internal/config"
	"github.com/cyphera/cyphera-rebalancer/internal/contracts"
	"github.com/cyphera/cyphera-rebalancer/internal/interfaces"
	"github.com/cyphera/cyphera-rebalancer/internal/logger"
	"github.com/cyphera/cyphera-rebalancer/internal/types/business"
)

const (
	// Permit2 grants are renewed when they expire within this margin.
	permit2RenewMargin = 24 * time.Hour
	permit2GrantPeriod = 365 * 24 * time.Hour
)

// redeemRequest wraps executions in a delegated redemption sent from the operator account.
func redeemRequest(delegationManager string, delegation *business.DelegationStruct, key *big.Int, execs ...contracts.Execution) (business.OperationRequest, error) {
	data, err := contracts.EncodeRedeemDelegations(delegation, execs...)
	if err != nil {
		return business.OperationRequest{}, business.NewRejected("encode redemption: %v", err)
	}
	return business.OperationRequest{
		To:       delegationManager,
		Data:     data,
		Value:    new(big.Int),
		NonceKey: key,
	}, nil
}

// ApprovalNeeds says which standing approvals an account is missing.
type ApprovalNeeds struct {
	Token   bool
	Permit2 bool
}

// ApprovalManager makes sure every account has approved Permit2 on the sold token and that
// Permit2 lets the execution router spend it.
type ApprovalManager struct {
	chain     interfaces.ChainReader
	submitter *OperationSubmitter
	retry     *RetryExecutor
	cfg       config.EngineConfig
	now       func() time.Time
	logger    *zap.Logger
}

// NewApprovalManager builds an approval manager.
func NewApprovalManager(chain interfaces.ChainReader, submitter *OperationSubmitter, retry *RetryExecutor, cfg config.EngineConfig, now func() time.Time, log *zap.Logger) *ApprovalManager {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = logger.Log
	}
	return &ApprovalManager{chain: chain, submitter: submitter, retry: retry, cfg: cfg, now: now, logger: log}
}

// Check reads both allowances for the wallet's sold token.
func (m *ApprovalManager) Check(ctx context.Context, w *business.WalletData) (ApprovalNeeds, error) {
	var (
		needs                ApprovalNeeds
		wg                   sync.WaitGroup
		tokenErr, permit2Err error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		allowance, _, err := DoValue(ctx, m.retry, "token allowance", func(ctx context.Context) (*big.Int, error) {
			return m.chain.Allowance(ctx, w.SellToken.Address, w.Account(), m.cfg.Permit2Address)
		})
		if err != nil {
			tokenErr = err
			return
		}
		needs.Token = allowance.Cmp(w.Gross) < 0
	}()
	go func() {
		defer wg.Done()
		allowance, _, err := DoValue(ctx, m.retry, "permit2 allowance", func(ctx context.Context) (*interfaces.Permit2Allowance, error) {
			return m.chain.Permit2Allowance(ctx, w.Account(), w.SellToken.Address, m.cfg.ExecutionRouter())
		})
		if err != nil {
			permit2Err = err
			return
		}
		needs.Permit2 = allowance.Amount.Cmp(w.Gross) < 0 ||
			allowance.Expiration.Before(m.now().Add(permit2RenewMargin))
	}()
	wg.Wait()

	if tokenErr != nil {
		return needs, tokenErr
	}
	return needs, permit2Err
}

// Ensure submits whatever approvals each wallet is missing. Accounts are handled concurrently
// and each waits for its own confirmations. Wallets whose approvals failed come back as
// results with stage approval and are left out of the ready set.
func (m *ApprovalManager) Ensure(ctx context.Context, wallets []*business.WalletData, tokenKeys, permit2Keys PhaseKeys) ([]*business.WalletData, []*business.ExecutionResult) {
	ready := make([]*business.WalletData, len(wallets))
	failed := make([]*business.ExecutionResult, len(wallets))

	forEach(len(wallets), 0, func(i int) {
		w := wallets[i]
		if err := m.ensureOne(ctx, w, tokenKeys, permit2Keys); err != nil {
			res := failureResult(w.Record, w, w.Action, business.StageApproval, err)
			m.logger.Warn("Approval failed, account skipped until next run", append(resultFields(res), zap.Error(err))...)
			failed[i] = res
			return
		}
		ready[i] = w
	})

	return compact(ready), compact(failed)
}

func (m *ApprovalManager) ensureOne(ctx context.Context, w *business.WalletData, tokenKeys, permit2Keys PhaseKeys) error {
	needs, err := m.Check(ctx, w)
	if err != nil {
		return business.NewStageError(business.StageApproval, err)
	}
	if !needs.Token && !needs.Permit2 {
		return nil
	}

	token := common.HexToAddress(w.SellToken.Address)
	permit2 := common.HexToAddress(m.cfg.Permit2Address)
	router := common.HexToAddress(m.cfg.ExecutionRouter())

	var requests []business.OperationRequest
	if needs.Token {
		data, err := contracts.EncodeApprove(permit2, contracts.MaxUint256)
		if err != nil {
			return business.NewStageError(business.StageApproval, err)
		}
		req, err := redeemRequest(m.cfg.DelegationManagerAddress, w.Delegation, tokenKeys.Key(w.Index),
			contracts.Execution{Target: token, CallData: data})
		if err != nil {
			return business.NewStageError(business.StageApproval, err)
		}
		requests = append(requests, req)
	}
	if needs.Permit2 {
		expiration := uint64(m.now().Add(permit2GrantPeriod).Unix())
		data, err := contracts.EncodePermit2Approve(token, router, contracts.MaxUint160, expiration)
		if err != nil {
			return business.NewStageError(business.StageApproval, err)
		}
		req, err := redeemRequest(m.cfg.DelegationManagerAddress, w.Delegation, permit2Keys.Key(w.Index),
			contracts.Execution{Target: permit2, CallData: data})
		if err != nil {
			return business.NewStageError(business.StageApproval, err)
		}
		requests = append(requests, req)
	}

	errs := make([]error, len(requests))
	forEach(len(requests), 0, func(i int) {
		_, errs[i] = m.submitter.Execute(ctx, requests[i])
	})
	for _, err := range errs {
		if err != nil {
			return business.NewStageError(business.StageApproval, err)
		}
	}

	m.logger.Info("Approvals confirmed",
		zap.String("account", w.Account()),
		zap.Bool("token", needs.Token),
		zap.Bool("permit2", needs.Permit2))
	return nil
}

func compact[T any](in []*T) []*T {
	out := make([]*T, 0, len(in))
	for _, v := range in {
		if v != nil {
			out = append(out, v)
		}
	}
	return out
}
