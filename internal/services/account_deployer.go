package services

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/cyphera/cyphera-rebalancer/internal/contracts"
	"github.com/cyphera/cyphera-rebalancer/internal/interfaces"
	"github.com/cyphera/cyphera-rebalancer/internal/logger"
	"github.com/cyphera/cyphera-rebalancer/internal/types/business"
)

// AccountDeployer deploys counterfactual accounts before any delegated call reaches them.
type AccountDeployer struct {
	chain     interfaces.ChainReader
	submitter *OperationSubmitter
	retry     *RetryExecutor
	logger    *zap.Logger
}

// NewAccountDeployer builds a deployer.
func NewAccountDeployer(chain interfaces.ChainReader, submitter *OperationSubmitter, retry *RetryExecutor, log *zap.Logger) *AccountDeployer {
	if log == nil {
		log = logger.Log
	}
	return &AccountDeployer{chain: chain, submitter: submitter, retry: retry, logger: log}
}

// DeployPending deploys every wallet whose account has no code yet. A factory whose CREATE2
// address differs from the enrolled account is a hard failure for that account.
func (d *AccountDeployer) DeployPending(ctx context.Context, wallets []*business.WalletData, keys PhaseKeys) ([]*business.WalletData, []*business.ExecutionResult) {
	ready := make([]*business.WalletData, len(wallets))
	failed := make([]*business.ExecutionResult, len(wallets))

	forEach(len(wallets), 0, func(i int) {
		w := wallets[i]
		if err := d.ensureDeployed(ctx, w, keys); err != nil {
			res := failureResult(w.Record, w, w.Action, business.StageDeploy, err)
			d.logger.Warn("Account deployment failed", append(resultFields(res), zap.Error(err))...)
			failed[i] = res
			return
		}
		ready[i] = w
	})

	return compact(ready), compact(failed)
}

func (d *AccountDeployer) hasCode(ctx context.Context, account string) (bool, error) {
	deployed, _, err := DoValue(ctx, d.retry, "code check", func(ctx context.Context) (bool, error) {
		return d.chain.HasCode(ctx, account)
	})
	return deployed, err
}

func (d *AccountDeployer) ensureDeployed(ctx context.Context, w *business.WalletData, keys PhaseKeys) error {
	deployed, err := d.hasCode(ctx, w.Account())
	if err != nil {
		return business.NewStageError(business.StageDeploy, err)
	}
	if deployed {
		return nil
	}

	factory := w.Record.Factory
	if !factory.IsSet() {
		return business.NewStageError(business.StageDeploy, business.NewRejected("account has no code and no factory data"))
	}

	predicted := contracts.CounterfactualAddress(common.HexToAddress(factory.Address), factory.Salt, factory.InitCode)
	if predicted != common.HexToAddress(w.Account()) {
		return business.NewStageError(business.StageDeploy,
			business.NewRejected("counterfactual address %s does not match account %s", predicted.Hex(), w.Account()))
	}

	data, err := contracts.EncodeFactoryDeploy(factory.InitCode, factory.Salt)
	if err != nil {
		return business.NewStageError(business.StageDeploy, business.NewRejected("encode deploy: %v", err))
	}

	receipt, err := d.submitter.Execute(ctx, business.OperationRequest{
		To:       factory.Address,
		Data:     data,
		Value:    new(big.Int),
		NonceKey: keys.Key(w.Index),
	})
	if err != nil {
		return business.NewStageError(business.StageDeploy, err)
	}

	deployed, err = d.hasCode(ctx, w.Account())
	if err != nil {
		return business.NewStageError(business.StageDeploy, err)
	}
	if !deployed {
		return business.NewStageError(business.StageDeploy, business.NewRejected("account still has no code after deploy tx %s", receipt.TxHash))
	}

	d.logger.Info("Account deployed",
		zap.String("account", w.Account()),
		zap.String("tx_hash", receipt.TxHash))
	return nil
}
