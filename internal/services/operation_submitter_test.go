package services

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/cyphera/cyphera-rebalancer/internal/mocks"
	"github.com/cyphera/cyphera-rebalancer/internal/types/business"
)

func TestOperationSubmitter_Execute(t *testing.T) {
	req := business.OperationRequest{To: testRouter, Data: []byte{0x01}, NonceKey: big.NewInt(7)}
	prepared := &business.PreparedOperation{Hash: "0xhash", NonceKey: req.NonceKey}

	tests := []struct {
		name        string
		setupMocks  func(relay *mocks.MockRelayClient, signer *mocks.MockOperationSigner)
		wantErr     bool
		wantStage   business.Stage
		wantCat     business.ErrorCategory
		wantReceipt bool
	}{
		{
			name: "confirmed",
			setupMocks: func(relay *mocks.MockRelayClient, signer *mocks.MockOperationSigner) {
				relay.EXPECT().PrepareOperation(gomock.Any(), req).Return(prepared, nil).Times(1)
				signer.EXPECT().SignOperationHash("0xhash").Return([]byte{0xaa}, nil).Times(1)
				relay.EXPECT().SendOperation(gomock.Any(), prepared, []byte{0xaa}).Return("0xop", nil).Times(1)
				relay.EXPECT().WaitForReceipt(gomock.Any(), "0xop", time.Minute).
					Return(&business.OperationReceipt{OpHash: "0xop", TxHash: "0xtx", Success: true}, nil).Times(1)
			},
			wantReceipt: true,
		},
		{
			name: "included but reverted",
			setupMocks: func(relay *mocks.MockRelayClient, signer *mocks.MockOperationSigner) {
				relay.EXPECT().PrepareOperation(gomock.Any(), req).Return(prepared, nil).Times(1)
				signer.EXPECT().SignOperationHash("0xhash").Return([]byte{0xaa}, nil).Times(1)
				relay.EXPECT().SendOperation(gomock.Any(), prepared, gomock.Any()).Return("0xop", nil).Times(1)
				relay.EXPECT().WaitForReceipt(gomock.Any(), "0xop", gomock.Any()).
					Return(&business.OperationReceipt{OpHash: "0xop", TxHash: "0xtx", Success: false, Reason: "STF"}, nil).Times(1)
			},
			wantErr:     true,
			wantStage:   business.StageConfirm,
			wantCat:     business.CategoryRevert,
			wantReceipt: true,
		},
		{
			name: "confirm timeout is not retried",
			setupMocks: func(relay *mocks.MockRelayClient, signer *mocks.MockOperationSigner) {
				relay.EXPECT().PrepareOperation(gomock.Any(), req).Return(prepared, nil).Times(1)
				signer.EXPECT().SignOperationHash("0xhash").Return([]byte{0xaa}, nil).Times(1)
				relay.EXPECT().SendOperation(gomock.Any(), prepared, gomock.Any()).Return("0xop", nil).Times(1)
				relay.EXPECT().WaitForReceipt(gomock.Any(), "0xop", gomock.Any()).
					Return(nil, &business.TimeoutError{Op: "receipt"}).Times(1)
			},
			wantErr:   true,
			wantStage: business.StageConfirm,
			wantCat:   business.CategoryTimeout,
		},
		{
			name: "signing failure never reaches the relay",
			setupMocks: func(relay *mocks.MockRelayClient, signer *mocks.MockOperationSigner) {
				relay.EXPECT().PrepareOperation(gomock.Any(), req).Return(prepared, nil).Times(1)
				signer.EXPECT().SignOperationHash("0xhash").Return(nil, errors.New("bad key")).Times(1)
				relay.EXPECT().SendOperation(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantErr:   true,
			wantStage: business.StageSubmit,
			wantCat:   business.CategoryRevert,
		},
		{
			name: "prepare rejected",
			setupMocks: func(relay *mocks.MockRelayClient, signer *mocks.MockOperationSigner) {
				relay.EXPECT().PrepareOperation(gomock.Any(), req).Return(nil, business.NewRejected("simulation reverted")).Times(1)
			},
			wantErr:   true,
			wantStage: business.StageBuild,
			wantCat:   business.CategoryRevert,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			relay := mocks.NewMockRelayClient(ctrl)
			signer := mocks.NewMockOperationSigner(ctrl)
			tt.setupMocks(relay, signer)

			retry, _ := newTestRetry(3)
			submitter := NewOperationSubmitter(relay, signer, retry, time.Second, time.Minute, zap.NewNop())

			receipt, err := submitter.Execute(context.Background(), req)
			assert.Equal(t, tt.wantReceipt, receipt != nil)
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, "0xtx", receipt.TxHash)
				return
			}

			require.Error(t, err)
			stage, ok := business.StageOf(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantStage, stage)
			assert.Equal(t, tt.wantCat, Classify(err))
		})
	}
}

func TestOperationSubmitter_SendRetriesTransientFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	relay := mocks.NewMockRelayClient(ctrl)
	signer := mocks.NewMockOperationSigner(ctrl)
	op := &business.PreparedOperation{Hash: "0xhash", NonceKey: big.NewInt(1)}

	signer.EXPECT().SignOperationHash("0xhash").Return([]byte{0xaa}, nil).Times(1)
	gomock.InOrder(
		relay.EXPECT().SendOperation(gomock.Any(), op, []byte{0xaa}).Return("", &business.NetworkError{Op: "send", Err: errors.New("eof")}),
		relay.EXPECT().SendOperation(gomock.Any(), op, []byte{0xaa}).Return("0xop", nil),
	)

	retry, timer := newTestRetry(3)
	submitter := NewOperationSubmitter(relay, signer, retry, 0, time.Minute, zap.NewNop())

	opHash, attempts, err := submitter.Send(context.Background(), op)
	require.NoError(t, err)
	assert.Equal(t, "0xop", opHash)
	assert.Equal(t, 2, attempts)
	assert.Len(t, timer.waits, 1)
}
