package services

import (
	"context"
	"encoding/json"
	"math/big"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cyphera/cyphera-rebalancer/internal/constants"
	"github.com/cyphera/cyphera-rebalancer/internal/db"
	"github.com/cyphera/cyphera-rebalancer/internal/helpers"
	"github.com/cyphera/cyphera-rebalancer/internal/types/business"
)

// CorrectionTarget is one hand-picked trade. GrossAmount is in base units of the sold asset.
type CorrectionTarget struct {
	Account     string          `json:"account"`
	Action      business.Action `json:"action"`
	GrossAmount string          `json:"gross_amount"`
}

func (t CorrectionTarget) gross() (*big.Int, error) {
	gross, ok := new(big.Int).SetString(strings.TrimSpace(t.GrossAmount), 10)
	if !ok || gross.Sign() <= 0 {
		return nil, errors.Errorf("gross_amount %q is not a positive integer", t.GrossAmount)
	}
	return gross, nil
}

// Validate checks the target is well formed.
func (t CorrectionTarget) Validate() error {
	if !helpers.IsAddressValid(t.Account) {
		return errors.Errorf("invalid account %q", t.Account)
	}
	if t.Action != business.ActionAccumulate && t.Action != business.ActionReduce {
		return errors.Errorf("action must be %s or %s, got %q", business.ActionAccumulate, business.ActionReduce, t.Action)
	}
	_, err := t.gross()
	return err
}

// LoadCorrectionFile reads a JSON array of correction targets.
func LoadCorrectionFile(path string) ([]CorrectionTarget, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read correction file")
	}
	var targets []CorrectionTarget
	if err := json.Unmarshal(data, &targets); err != nil {
		return nil, errors.Wrap(err, "parse correction file")
	}
	if len(targets) == 0 {
		return nil, errors.New("correction file has no targets")
	}
	for i, t := range targets {
		if err := t.Validate(); err != nil {
			return nil, errors.Wrapf(err, "target %d", i)
		}
	}
	return targets, nil
}

// RunCorrection executes a hand-supplied list of trades one at a time under a forced run.
// Amounts are taken as given, no fee is charged and the idempotency guard is not consulted.
func (o *Orchestrator) RunCorrection(ctx context.Context, targets []CorrectionTarget) (*RunReport, error) {
	started := o.now().UTC()
	report := &RunReport{Summary: business.RunSummary{
		RunDate:   started.Format(time.DateOnly),
		Forced:    true,
		StartedAt: started,
	}}

	for i, t := range targets {
		if err := t.Validate(); err != nil {
			return report, errors.Wrapf(err, "target %d", i)
		}
	}

	rows, err := o.queries.ListActiveDelegations(ctx)
	if err != nil {
		return report, errors.Wrap(err, "list delegations")
	}
	byAccount := make(map[string]db.RebalanceDelegation, len(rows))
	for _, row := range rows {
		byAccount[strings.ToLower(row.AccountAddress)] = row
	}

	if err := o.checkOperatorFunds(ctx); err != nil {
		return report, err
	}

	run, err := o.queries.ClaimRun(ctx, db.ClaimRunParams{
		RunDate: helpers.DateOf(started),
		Forced:  true,
		Status:  constants.RunStatusCorrection,
	})
	if err != nil {
		return report, errors.Wrap(err, "claim correction run")
	}
	report.Summary.RunID = run.ID
	log := o.logger.With(zap.String("run_id", run.ID.String()), zap.Int("targets", len(targets)))
	log.Info("Starting manual correction")

	var (
		results []*business.ExecutionResult
		wallets []*business.WalletData
	)
	for i, t := range targets {
		row, ok := byAccount[strings.ToLower(t.Account)]
		if !ok {
			res := failureResult(&business.DelegationRecord{AccountAddress: t.Account}, nil, t.Action,
				business.StageDelegation, business.NewRejected("account has no active delegation"))
			results = append(results, res)
			continue
		}

		w, res := o.correctionWallet(ctx, RecordFromRow(row), t, started, uint32(i))
		if res != nil {
			results = append(results, res)
			continue
		}
		wallets = append(wallets, w)
	}

	wallets, failed := o.deployer.DeployPending(ctx, wallets, o.nonces.BeginPhase(PhaseDeploy))
	results = append(results, failed...)
	wallets, failed = o.approvals.Ensure(ctx, wallets,
		o.nonces.BeginPhase(PhaseApprovalToken),
		o.nonces.BeginPhase(PhaseApprovalPermit2))
	results = append(results, failed...)
	results = append(results, o.sequential.Execute(ctx, wallets, o.nonces.BeginPhase(PhaseCorrection))...)

	o.record(ctx, run.ID, 0, results)
	report.Results = results
	o.finish(ctx, report, constants.RunStatusCorrection)
	return report, nil
}

// correctionWallet validates the record and sizes the trade exactly as the target states.
func (o *Orchestrator) correctionWallet(ctx context.Context, record *business.DelegationRecord, t CorrectionTarget, now time.Time, index uint32) (*business.WalletData, *business.ExecutionResult) {
	validation := o.validator.Validate(record, now)
	if !validation.Valid {
		return nil, failureResult(record, nil, t.Action, business.StageDelegation, business.NewRejected(validation.Reason))
	}

	sell, buy, err := o.eligibility.Tokens(record, t.Action)
	if err != nil {
		return nil, failureResult(record, nil, t.Action, business.StageEligibility, err)
	}

	gross, _ := t.gross()
	balance, _, err := DoValue(ctx, o.retry, "correction balance", func(ctx context.Context) (*big.Int, error) {
		return o.chain.TokenBalance(ctx, sell.Address, record.AccountAddress)
	})
	if err != nil {
		return nil, failureResult(record, nil, t.Action, business.StageBalance, err)
	}
	if gross.Cmp(balance) > 0 {
		return nil, failureResult(record, nil, t.Action, business.StageEligibility,
			business.NewRejected("gross %s exceeds balance %s", gross, balance))
	}

	price := decimal.NewFromInt(1)
	if t.Action == business.ActionReduce {
		if price, err = o.prices.Price(ctx, sell.Symbol); err != nil {
			return nil, failureResult(record, nil, t.Action, business.StageEligibility, err)
		}
	}
	grossUSD := sell.FromUnits(gross).Mul(price)

	return &business.WalletData{
		Record:     record,
		Delegation: validation.Delegation,
		Index:      index,
		Action:     t.Action,
		SellToken:  sell,
		BuyToken:   buy,
		Balance:    balance,
		Gross:      gross,
		Fee:        new(big.Int),
		Net:        new(big.Int).Set(gross),
		GrossUSD:   grossUSD,
		FeeUSD:     decimal.Zero,
		ValueUSD:   grossUSD,
	}, nil
}
