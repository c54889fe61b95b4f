package services

import (
	"context"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cyphera/cyphera-rebalancer/internal/config"
	"github.com/cyphera/cyphera-rebalancer/internal/constants"
	"github.com/cyphera/cyphera-rebalancer/internal/db"
	"github.com/cyphera/cyphera-rebalancer/internal/helpers"
	"github.com/cyphera/cyphera-rebalancer/internal/interfaces"
	"github.com/cyphera/cyphera-rebalancer/internal/logger"
	"github.com/cyphera/cyphera-rebalancer/internal/types/business"
)

var (
	// ErrIdempotencyUnknown aborts a run whose "already ran today" state could not be read.
	ErrIdempotencyUnknown = errors.New("idempotency state unknown")
	// ErrInsufficientOperatorFunds aborts a run whose operator cannot pay for its operations.
	ErrInsufficientOperatorFunds = errors.New("operator balance below minimum")
	// ErrAccountNotEnrolled is returned when a single-account run names an unknown account.
	ErrAccountNotEnrolled = errors.New("account has no active delegation")
)

// RunStatusDryRun marks the summary of a dry run. It is never persisted.
const RunStatusDryRun = "dry_run"

// RunOptions select how one invocation behaves.
type RunOptions struct {
	DryRun  bool
	Force   bool
	Account string
}

// RunReport is what an invocation produced. Skipped runs carry the reason and nothing else.
type RunReport struct {
	Summary business.RunSummary
	Results []*business.ExecutionResult
	Retries []*business.ExecutionResult
	Quotes  []*business.Quote
	Skipped bool
	Reason  string
}

// OrchestratorDeps are the collaborators a run needs. Publisher and Notifier are optional.
type OrchestratorDeps struct {
	Queries   db.Querier
	Sentiment interfaces.SentimentSource
	Chain     interfaces.ChainReader
	Router    interfaces.QuoteProvider
	Relay     interfaces.RelayClient
	Signer    interfaces.OperationSigner
	Prices    interfaces.PriceSource
	Publisher interfaces.SummaryPublisher
	Notifier  interfaces.SummaryNotifier

	Now          func() time.Time
	Logger       *zap.Logger
	RetryOptions []RetryOption
}

// Orchestrator drives one daily run end to end.
type Orchestrator struct {
	cfg       config.EngineConfig
	queries   db.Querier
	sentiment interfaces.SentimentSource
	chain     interfaces.ChainReader
	publisher interfaces.SummaryPublisher
	notifier  interfaces.SummaryNotifier
	now       func() time.Time
	logger    *zap.Logger

	retry       *RetryExecutor
	guard       *IdempotencyGuard
	validator   *DelegationValidator
	prices      *PriceCache
	eligibility *EligibilityCalculator
	deployer    *AccountDeployer
	approvals   *ApprovalManager
	quotes      *QuoteService
	nonces      *NonceAllocator

	batch      ExecutionStrategy
	sequential ExecutionStrategy
}

// NewOrchestrator wires every engine component from cfg and deps.
func NewOrchestrator(cfg config.EngineConfig, deps OrchestratorDeps) *Orchestrator {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	log := deps.Logger
	if log == nil {
		log = logger.Log
	}

	retry := NewRetryExecutor(RetryPolicy{
		MaxAttempts:         cfg.RetryMaxAttempts,
		BaseDelay:           cfg.RetryBaseDelay,
		MaxDelay:            cfg.RetryMaxDelay,
		Multiplier:          2,
		RandomizationFactor: 0.2,
	}, log, deps.RetryOptions...)

	prices := NewPriceCache(deps.Prices, retry, cfg.PriceCacheTTL, now, log)
	submitter := NewOperationSubmitter(deps.Relay, deps.Signer, retry, cfg.SubmitTimeout, cfg.ConfirmTimeout, log)
	quotes := NewQuoteService(deps.Router, retry, cfg, now, log)
	pipeline := NewSwapPipeline(quotes, submitter, cfg.DelegationManagerAddress, cfg.FeeRecipient, log)

	return &Orchestrator{
		cfg:       cfg,
		queries:   deps.Queries,
		sentiment: deps.Sentiment,
		chain:     deps.Chain,
		publisher: deps.Publisher,
		notifier:  deps.Notifier,
		now:       now,
		logger:    log,

		retry:       retry,
		guard:       NewIdempotencyGuard(deps.Queries, log),
		validator:   NewDelegationValidator(cfg.OperatorAccount, cfg.TimestampEnforcer, cfg.LimitedCallsEnforcer, log),
		prices:      prices,
		eligibility: NewEligibilityCalculator(deps.Chain, prices, retry, cfg, log),
		deployer:    NewAccountDeployer(deps.Chain, submitter, retry, log),
		approvals:   NewApprovalManager(deps.Chain, submitter, retry, cfg, now, log),
		quotes:      quotes,
		nonces:      NewNonceAllocator(now),

		batch:      NewConcurrentBatch(pipeline, cfg.BatchSize, cfg.BatchDelay, log),
		sequential: NewSequentialSafe(pipeline, log),
	}
}

// Run executes one daily run. A skipped run returns a report with Skipped set; only the
// run-fatal conditions return an error.
func (o *Orchestrator) Run(ctx context.Context, opts RunOptions) (*RunReport, error) {
	started := o.now().UTC()
	report := &RunReport{Summary: business.RunSummary{
		RunDate:   started.Format(time.DateOnly),
		DryRun:    opts.DryRun,
		Forced:    opts.Force,
		StartedAt: started,
	}}
	log := o.logger.With(
		zap.String("run_date", report.Summary.RunDate),
		zap.Bool("dry_run", opts.DryRun),
		zap.Bool("force", opts.Force))

	if !opts.DryRun {
		decision := o.guard.Check(ctx, started, opts.Force)
		if !decision.Proceed {
			report.Skipped, report.Reason = true, decision.Reason
			if decision.Reason == ReasonFailClosed {
				log.Error("Run skipped, fail-closed")
				return report, ErrIdempotencyUnknown
			}
			log.Info("Run skipped", zap.String("reason", decision.Reason))
			return report, nil
		}
	}

	sentiment, _, err := DoValue(ctx, o.retry, "sentiment", o.sentiment.FetchSentiment)
	if err != nil {
		log.Error("Failed to fetch sentiment, aborting run", zap.Error(err))
		return report, errors.Wrap(err, "fetch sentiment")
	}
	decision := Decide(sentiment.Score)
	report.Summary.SentimentScore = sentiment.Score
	report.Summary.Classification = sentiment.Classification
	report.Summary.Action = decision.Action
	report.Summary.BasisPoints = decision.BasisPoints

	log.Info("Decision made",
		zap.Int("sentiment_score", sentiment.Score),
		zap.String("classification", sentiment.Classification),
		zap.String("action", string(decision.Action)),
		zap.Int64("basis_points", decision.BasisPoints))

	if decision.Action == business.ActionHold {
		return o.hold(ctx, report, opts, sentiment, decision)
	}

	candidates, excluded, err := o.filterDelegations(ctx, started, decision.Action, opts.Account)
	if err != nil {
		return report, err
	}
	if err := o.checkOperatorFunds(ctx); err != nil {
		return report, err
	}

	if opts.DryRun {
		return o.dryRun(ctx, report, candidates, excluded, decision), nil
	}

	run, err := o.claimRun(ctx, started, opts.Force, constants.RunStatusRunning, sentiment, decision)
	if err != nil {
		if db.IsNoRows(err) {
			log.Info("Run skipped", zap.String("reason", ReasonClaimedByPeer))
			report.Skipped, report.Reason = true, ReasonClaimedByPeer
			return report, nil
		}
		return report, errors.Wrap(err, "claim run")
	}
	report.Summary.RunID = run.ID
	log = log.With(zap.String("run_id", run.ID.String()))
	log.Info("Run claimed", zap.Int("candidates", len(candidates)), zap.Int("excluded", len(excluded)))

	results := excluded
	o.prices.Warm(ctx, o.targetSymbols()...)
	wallets, failed := o.eligibility.Evaluate(ctx, candidates, decision)
	results = append(results, failed...)

	wallets, failed = o.deployer.DeployPending(ctx, wallets, o.nonces.BeginPhase(PhaseDeploy))
	results = append(results, failed...)

	wallets, failed = o.approvals.Ensure(ctx, wallets,
		o.nonces.BeginPhase(PhaseApprovalToken),
		o.nonces.BeginPhase(PhaseApprovalPermit2))
	results = append(results, failed...)

	log.Info("Starting swap phase", zap.String("strategy", o.batch.Name()), zap.Int("wallets", len(wallets)))
	results = append(results, o.batch.Execute(ctx, wallets, o.nonces.BeginPhase(PhaseSwap))...)

	o.record(ctx, run.ID, sentiment.Score, results)
	report.Results = results

	report.Retries = o.retryTransientFailures(ctx, results)
	o.record(ctx, run.ID, sentiment.Score, report.Retries)

	o.finish(ctx, report, constants.RunStatusCompleted)
	return report, nil
}

func (o *Orchestrator) hold(ctx context.Context, report *RunReport, opts RunOptions, sentiment *business.Sentiment, decision business.Decision) (*RunReport, error) {
	report.Summary.Status = constants.RunStatusHold
	if opts.DryRun {
		report.Summary.CompletedAt = o.now().UTC()
		return report, nil
	}

	run, err := o.claimRun(ctx, report.Summary.StartedAt, opts.Force, constants.RunStatusHold, sentiment, decision)
	if err != nil {
		if db.IsNoRows(err) {
			report.Skipped, report.Reason = true, ReasonClaimedByPeer
			return report, nil
		}
		return report, errors.Wrap(err, "record hold")
	}
	report.Summary.RunID = run.ID

	o.logger.Info("Holding today, no trades", zap.String("run_id", run.ID.String()))
	o.finish(ctx, report, constants.RunStatusHold)
	return report, nil
}

// filterDelegations loads active delegations and validates them. Invalid ones come back as
// results with stage delegation; nothing is ever submitted for them.
func (o *Orchestrator) filterDelegations(ctx context.Context, now time.Time, action business.Action, account string) ([]Candidate, []*business.ExecutionResult, error) {
	rows, err := o.queries.ListActiveDelegations(ctx)
	if err != nil {
		return nil, nil, errors.Wrap(err, "list delegations")
	}

	var (
		candidates []Candidate
		excluded   []*business.ExecutionResult
	)
	for _, row := range rows {
		record := RecordFromRow(row)
		if account != "" && !helpers.SameAddress(record.AccountAddress, account) {
			continue
		}

		validation := o.validator.Validate(record, now)
		if !validation.Valid {
			res := failureResult(record, nil, action, business.StageDelegation, business.NewRejected(validation.Reason))
			o.logger.Warn("Delegation excluded", append(resultFields(res), zap.String("reason", validation.Reason))...)
			excluded = append(excluded, res)
			continue
		}

		candidates = append(candidates, Candidate{
			Record:     record,
			Delegation: validation.Delegation,
			Index:      uint32(len(candidates)),
		})
	}

	if account != "" && len(candidates)+len(excluded) == 0 {
		return nil, nil, errors.Wrap(ErrAccountNotEnrolled, account)
	}
	return candidates, excluded, nil
}

func (o *Orchestrator) checkOperatorFunds(ctx context.Context) error {
	minimum := o.cfg.MinOperatorBalanceWei
	if minimum == nil || minimum.Sign() <= 0 {
		return nil
	}

	balance, _, err := DoValue(ctx, o.retry, "operator balance", func(ctx context.Context) (*big.Int, error) {
		return o.chain.NativeBalance(ctx, o.cfg.OperatorAccount)
	})
	if err != nil {
		return errors.Wrap(err, "read operator balance")
	}
	if balance.Cmp(minimum) < 0 {
		o.logger.Error("Operator balance too low, aborting run",
			zap.String("operator", o.cfg.OperatorAccount),
			zap.String("balance_wei", balance.String()),
			zap.String("minimum_wei", minimum.String()))
		return errors.Wrapf(ErrInsufficientOperatorFunds, "%s has %s wei", o.cfg.OperatorAccount, balance)
	}
	return nil
}

func (o *Orchestrator) claimRun(ctx context.Context, started time.Time, forced bool, status string, sentiment *business.Sentiment, decision business.Decision) (db.RebalanceRun, error) {
	return o.queries.ClaimRun(ctx, db.ClaimRunParams{
		RunDate:        helpers.DateOf(started),
		Forced:         forced,
		Status:         status,
		SentimentScore: helpers.Int32ToNullableInt4(int32(sentiment.Score)),
		Classification: helpers.StringToNullableText(sentiment.Classification),
		Action:         helpers.StringToNullableText(string(decision.Action)),
		PercentageBps:  helpers.Int32ToNullableInt4(int32(decision.BasisPoints)),
	})
}

func (o *Orchestrator) targetSymbols() []string {
	symbols := make([]string, 0, len(o.cfg.TargetTokens))
	for _, t := range o.cfg.TargetTokens {
		symbols = append(symbols, t.Symbol)
	}
	return symbols
}

// dryRun sizes and quotes every eligible account without deploying, approving or submitting.
func (o *Orchestrator) dryRun(ctx context.Context, report *RunReport, candidates []Candidate, excluded []*business.ExecutionResult, decision business.Decision) *RunReport {
	o.prices.Warm(ctx, o.targetSymbols()...)
	wallets, failed := o.eligibility.Evaluate(ctx, candidates, decision)

	quotes := make([]*business.Quote, len(wallets))
	quoteFailures := make([]*business.ExecutionResult, len(wallets))
	forEach(len(wallets), o.cfg.BatchSize, func(i int) {
		w := wallets[i]
		q, attempts, err := o.quotes.Acquire(ctx, w)
		if err != nil {
			res := failureResult(w.Record, w, w.Action, business.StageQuoteFetch, err)
			res.Attempts = attempts
			quoteFailures[i] = res
			return
		}
		quotes[i] = q
		o.logger.Info("Dry run quote",
			zap.String("account", w.Account()),
			zap.String("sell_token", w.SellToken.Symbol),
			zap.String("gross", w.Gross.String()),
			zap.String("fee", w.Fee.String()),
			zap.String("net", w.Net.String()),
			zap.String("expected_out", q.ExpectedOut.String()),
			zap.String("min_out", q.MinOut.String()))
	})

	report.Results = append(append(excluded, failed...), compact(quoteFailures)...)
	report.Quotes = compact(quotes)
	report.Summary.Status = RunStatusDryRun
	report.Summary.Processed = len(wallets) + len(excluded) + len(failed)
	report.Summary.Succeeded = len(report.Quotes)
	report.Summary.Failed = report.Summary.Processed - report.Summary.Succeeded
	for _, w := range wallets {
		report.Summary.VolumeUSD = report.Summary.VolumeUSD.Add(w.GrossUSD)
		report.Summary.FeeUSD = report.Summary.FeeUSD.Add(w.FeeUSD)
	}
	report.Summary.Failures = failureLines(report.Results)
	report.Summary.CompletedAt = o.now().UTC()

	o.logger.Info("Dry run complete",
		zap.Int("eligible", len(wallets)),
		zap.Int("quoted", len(report.Quotes)),
		zap.Int("failed", report.Summary.Failed))
	return report
}

// record appends results to the execution log. Store failures are logged; the on-chain
// outcome already happened and must not be retried because of them.
func (o *Orchestrator) record(ctx context.Context, runID uuid.UUID, score int, results []*business.ExecutionResult) {
	for _, res := range results {
		res.RunID = runID
		res.SentimentScore = score
		row, err := o.queries.CreateExecution(ctx, executionParams(res))
		if err != nil {
			o.logger.Error("Failed to record execution result", append(resultFields(res), zap.Error(err))...)
			continue
		}
		res.ID = row.ID
	}
}

// retryTransientFailures replays swap failures with a retryable category once, one at a time,
// with the amounts the original attempt used.
func (o *Orchestrator) retryTransientFailures(ctx context.Context, results []*business.ExecutionResult) []*business.ExecutionResult {
	var originals []*business.ExecutionResult
	for _, res := range results {
		if res.Retryable() {
			originals = append(originals, res)
		}
	}
	if len(originals) == 0 {
		return nil
	}
	if len(originals) > o.cfg.MaxEndOfRunRetries {
		o.logger.Warn("Too many transient failures, skipping end-of-run retry",
			zap.Int("retryable", len(originals)),
			zap.Int("max", o.cfg.MaxEndOfRunRetries))
		return nil
	}

	wallets := make([]*business.WalletData, len(originals))
	for i, res := range originals {
		wallets[i] = res.Wallet
	}

	o.logger.Info("Retrying transient failures",
		zap.String("strategy", o.sequential.Name()),
		zap.Int("count", len(wallets)))
	retries := o.sequential.Execute(ctx, wallets, o.nonces.BeginPhase(PhaseRetry))
	for i, res := range retries {
		res.RunID = originals[i].RunID
		res.ParentID = originals[i].ID
		res.RetryCount = originals[i].RetryCount + 1
	}
	return retries
}

// finish completes the run row and hands the summary to its consumers.
func (o *Orchestrator) finish(ctx context.Context, report *RunReport, status string) {
	summarize(&report.Summary, report.Results, report.Retries)
	report.Summary.Status = status
	report.Summary.CompletedAt = o.now().UTC()
	s := &report.Summary

	_, err := o.queries.CompleteRun(ctx, db.CompleteRunParams{
		ID:             s.RunID,
		Status:         status,
		ProcessedCount: int32(s.Processed),
		SucceededCount: int32(s.Succeeded),
		FailedCount:    int32(s.Failed),
		RetriedCount:   int32(s.Retried),
		TotalVolumeUsd: helpers.DecimalToNumeric(s.VolumeUSD),
		TotalFeeUsd:    helpers.DecimalToNumeric(s.FeeUSD),
	})
	if err != nil {
		o.logger.Error("Failed to complete run record", zap.String("run_id", s.RunID.String()), zap.Error(err))
	}

	o.logger.Info("Run complete",
		zap.String("run_id", s.RunID.String()),
		zap.String("status", status),
		zap.Int("processed", s.Processed),
		zap.Int("succeeded", s.Succeeded),
		zap.Int("failed", s.Failed),
		zap.Int("retried", s.Retried),
		zap.String("volume_usd", s.VolumeUSD.StringFixed(2)),
		zap.String("fee_usd", s.FeeUSD.StringFixed(2)))

	o.publish(ctx, s)
}

func (o *Orchestrator) publish(ctx context.Context, s *business.RunSummary) {
	if o.publisher != nil {
		if err := o.publisher.PublishRunSummary(ctx, s); err != nil {
			o.logger.Warn("Failed to publish run summary", zap.Error(err))
		}
	}
	if o.notifier != nil {
		if err := o.notifier.SendRunSummary(ctx, s); err != nil {
			o.logger.Warn("Failed to send run summary email", zap.Error(err))
		}
	}
}

// summarize fills the counters from each account's final outcome: a retry replaces the
// result it retried.
func summarize(s *business.RunSummary, results, retries []*business.ExecutionResult) {
	final := make([]*business.ExecutionResult, len(results))
	copy(final, results)

	replaced := make(map[*business.ExecutionResult]*business.ExecutionResult, len(retries))
	for _, retry := range retries {
		for _, original := range results {
			if original.Wallet != nil && original.Wallet == retry.Wallet && !original.Success {
				replaced[original] = retry
			}
		}
	}
	for i, res := range final {
		if retry, ok := replaced[res]; ok {
			final[i] = retry
		}
	}

	s.Processed = len(final)
	s.Retried = len(retries)
	s.Succeeded, s.Failed = 0, 0
	s.VolumeUSD, s.FeeUSD = decimal.Zero, decimal.Zero
	for _, res := range final {
		if res.Success {
			s.Succeeded++
			s.VolumeUSD = s.VolumeUSD.Add(res.VolumeUSD)
			s.FeeUSD = s.FeeUSD.Add(res.FeeUSD)
		} else {
			s.Failed++
		}
	}
	s.Failures = failureLines(final)
}

func failureLines(results []*business.ExecutionResult) []business.FailureLine {
	var lines []business.FailureLine
	for _, res := range results {
		if res.Success {
			continue
		}
		lines = append(lines, business.FailureLine{
			Account:  res.Account,
			Stage:    res.Stage,
			Category: res.ErrorCategory,
			Message:  res.ErrorMessage,
		})
	}
	return lines
}
