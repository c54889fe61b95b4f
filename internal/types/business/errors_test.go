package business_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/cyphera/cyphera-rebalancer/internal/types/business"
)

func TestExecutionResult_Retryable(t *testing.T) {
	wallet := &business.WalletData{}

	tests := []struct {
		name   string
		result business.ExecutionResult
		want   bool
	}{
		{"network failure while quoting", business.ExecutionResult{Wallet: wallet, Stage: business.StageQuoteFetch, ErrorCategory: business.CategoryNetwork}, true},
		{"expired quote", business.ExecutionResult{Wallet: wallet, Stage: business.StageQuoteValidate, ErrorCategory: business.CategoryQuoteExpired}, true},
		{"unknown send failure", business.ExecutionResult{Wallet: wallet, Stage: business.StageSubmit, ErrorCategory: business.CategoryUnknown}, false},
		{"send timed out without an answer", business.ExecutionResult{Wallet: wallet, Stage: business.StageSubmit, ErrorCategory: business.CategoryTimeout}, false},
		{"send lost on the network", business.ExecutionResult{Wallet: wallet, Stage: business.StageSubmit, ErrorCategory: business.CategoryNetwork}, false},
		{"send refused by rate limit", business.ExecutionResult{Wallet: wallet, Stage: business.StageSubmit, ErrorCategory: business.CategoryRateLimit}, true},
		{"prepare timed out", business.ExecutionResult{Wallet: wallet, Stage: business.StageBuild, ErrorCategory: business.CategoryTimeout}, true},
		{"revert", business.ExecutionResult{Wallet: wallet, Stage: business.StageConfirm, ErrorCategory: business.CategoryRevert}, false},
		{"relay accepted the operation", business.ExecutionResult{Wallet: wallet, Stage: business.StageConfirm, ErrorCategory: business.CategoryTimeout, OpHash: "0xop"}, false},
		{"approval stage", business.ExecutionResult{Wallet: wallet, Stage: business.StageApproval, ErrorCategory: business.CategoryNetwork}, false},
		{"no wallet to replay", business.ExecutionResult{Stage: business.StageQuoteFetch, ErrorCategory: business.CategoryNetwork}, false},
		{"success", business.ExecutionResult{Wallet: wallet, Success: true, Stage: business.StageDone}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.result.Retryable())
		})
	}
}

func TestStageError(t *testing.T) {
	assert.Nil(t, business.NewStageError(business.StageBuild, nil))

	cause := &business.TimeoutError{Op: "prepare", Err: context.DeadlineExceeded}
	err := errors.Wrap(business.NewStageError(business.StageBuild, cause), "swap")

	stage, ok := business.StageOf(err)
	assert.True(t, ok)
	assert.Equal(t, business.StageBuild, stage)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, err.Error(), "[build] prepare: timed out")

	_, ok = business.StageOf(errors.New("plain"))
	assert.False(t, ok)
}

func TestStage_InSwapPipeline(t *testing.T) {
	for _, s := range []business.Stage{business.StageQuoteFetch, business.StageQuoteValidate, business.StageBuild, business.StageSubmit, business.StageConfirm} {
		assert.True(t, s.InSwapPipeline(), s)
	}
	for _, s := range []business.Stage{business.StageDelegation, business.StageBalance, business.StageEligibility, business.StageDeploy, business.StageApproval, business.StageDone} {
		assert.False(t, s.InSwapPipeline(), s)
	}
}
