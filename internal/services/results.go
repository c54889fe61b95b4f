package services

import (
	"math/big"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cyphera/cyphera-rebalancer/internal/types/business"
)

// Candidate is a validated delegation record entering the run.
type Candidate struct {
	Record     *business.DelegationRecord
	Delegation *business.DelegationStruct
	Index      uint32
}

func copyInt(v *big.Int) *big.Int {
	if v == nil {
		return nil
	}
	return new(big.Int).Set(v)
}

// newResult starts an ExecutionResult for a record, copying the wallet's amounts if present.
func newResult(record *business.DelegationRecord, wallet *business.WalletData, action business.Action) *business.ExecutionResult {
	res := &business.ExecutionResult{
		Record:    record,
		Wallet:    wallet,
		Action:    action,
		CreatedAt: time.Now().UTC(),
	}
	if record != nil {
		res.Account = record.AccountAddress
		res.OwnerID = record.OwnerID
	}
	if wallet != nil {
		res.Gross = copyInt(wallet.Gross)
		res.Fee = copyInt(wallet.Fee)
		res.Net = copyInt(wallet.Net)
		res.VolumeUSD = wallet.GrossUSD
		res.FeeUSD = wallet.FeeUSD
	}
	return res
}

// failureResult records err at stage. The category comes from the typed error.
func failureResult(record *business.DelegationRecord, wallet *business.WalletData, action business.Action, stage business.Stage, err error) *business.ExecutionResult {
	res := newResult(record, wallet, action)
	res.ErrorCategory = Classify(err)
	if tagged, ok := business.StageOf(err); ok {
		res.Stage = tagged
		res.ErrorMessage = err.Error()
	} else {
		res.Stage = stage
		res.ErrorMessage = business.NewStageError(stage, err).Error()
	}
	return res
}

func resultFields(res *business.ExecutionResult) []zap.Field {
	fields := []zap.Field{
		zap.String("account", res.Account),
		zap.String("stage", string(res.Stage)),
	}
	if res.RunID != uuid.Nil {
		fields = append(fields, zap.String("run_id", res.RunID.String()))
	}
	if res.ErrorCategory != "" {
		fields = append(fields, zap.String("category", string(res.ErrorCategory)))
	}
	return fields
}

// resultSet collects results from concurrent workers.
type resultSet struct {
	mu      sync.Mutex
	results []*business.ExecutionResult
}

func (s *resultSet) add(res *business.ExecutionResult) {
	s.mu.Lock()
	s.results = append(s.results, res)
	s.mu.Unlock()
}

func (s *resultSet) list() []*business.ExecutionResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*business.ExecutionResult(nil), s.results...)
}

// forEach runs fn for every index with at most limit running at once.
func forEach(n, limit int, fn func(i int)) {
	if limit <= 0 || limit > n {
		limit = n
	}
	sem := make(chan struct{}, max(limit, 1))
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			fn(i)
		}(i)
	}
	wg.Wait()
}
