package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cyphera/cyphera-rebalancer/internal/interfaces"
	"github.com/cyphera/cyphera-rebalancer/internal/logger"
	"github.com/cyphera/cyphera-rebalancer/internal/types/business"
)

// OperationSubmitter moves an operation through the relay: prepare, sign and send, confirm.
type OperationSubmitter struct {
	relay          interfaces.RelayClient
	signer         interfaces.OperationSigner
	retry          *RetryExecutor
	submitTimeout  time.Duration
	confirmTimeout time.Duration
	logger         *zap.Logger
}

// NewOperationSubmitter builds a submitter.
func NewOperationSubmitter(relay interfaces.RelayClient, signer interfaces.OperationSigner, retry *RetryExecutor, submitTimeout, confirmTimeout time.Duration, log *zap.Logger) *OperationSubmitter {
	if log == nil {
		log = logger.Log
	}
	return &OperationSubmitter{
		relay:          relay,
		signer:         signer,
		retry:          retry,
		submitTimeout:  submitTimeout,
		confirmTimeout: confirmTimeout,
		logger:         log,
	}
}

func (s *OperationSubmitter) withSubmitTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.submitTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.submitTimeout)
}

// Prepare asks the relay to build the operation. Failures are tagged with stage build.
func (s *OperationSubmitter) Prepare(ctx context.Context, req business.OperationRequest) (*business.PreparedOperation, int, error) {
	op, attempts, err := DoValue(ctx, s.retry, "relay prepare", func(ctx context.Context) (*business.PreparedOperation, error) {
		ctx, cancel := s.withSubmitTimeout(ctx)
		defer cancel()
		return s.relay.PrepareOperation(ctx, req)
	})
	if err != nil {
		return nil, attempts, business.NewStageError(business.StageBuild, err)
	}
	return op, attempts, nil
}

// Send signs the prepared operation hash and submits it. Resending the same signed
// operation is safe: the account nonce admits it once.
func (s *OperationSubmitter) Send(ctx context.Context, op *business.PreparedOperation) (string, int, error) {
	signature, err := s.signer.SignOperationHash(op.Hash)
	if err != nil {
		return "", 0, business.NewStageError(business.StageSubmit, business.NewRejected("sign operation: %v", err))
	}

	opHash, attempts, err := DoValue(ctx, s.retry, "relay send", func(ctx context.Context) (string, error) {
		ctx, cancel := s.withSubmitTimeout(ctx)
		defer cancel()
		return s.relay.SendOperation(ctx, op, signature)
	})
	if err != nil {
		return "", attempts, business.NewStageError(business.StageSubmit, err)
	}
	return opHash, attempts, nil
}

// Confirm waits for the receipt. An included but failed operation is a revert.
func (s *OperationSubmitter) Confirm(ctx context.Context, opHash string) (*business.OperationReceipt, error) {
	receipt, err := s.relay.WaitForReceipt(ctx, opHash, s.confirmTimeout)
	if err != nil {
		return nil, business.NewStageError(business.StageConfirm, err)
	}
	if !receipt.Success {
		reason := receipt.Reason
		if reason == "" {
			reason = "operation reverted"
		}
		return receipt, business.NewStageError(business.StageConfirm, &business.RejectedError{
			Reason: fmt.Sprintf("%s (tx %s)", reason, receipt.TxHash),
		})
	}
	return receipt, nil
}

// Execute runs prepare, send and confirm for one request.
func (s *OperationSubmitter) Execute(ctx context.Context, req business.OperationRequest) (*business.OperationReceipt, error) {
	op, _, err := s.Prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	opHash, _, err := s.Send(ctx, op)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Operation submitted",
		zap.String("op_hash", opHash),
		zap.String("to", req.To),
		zap.String("nonce_key", req.NonceKey.String()))

	return s.Confirm(ctx, opHash)
}
