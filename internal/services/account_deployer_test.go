package services

import (
	"context"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/cyphera/cyphera-rebalancer/internal/contracts"
	"github.com/cyphera/cyphera-rebalancer/internal/mocks"
	"github.com/cyphera/cyphera-rebalancer/internal/types/business"
)

const testFactory = "0x69Aa2f9fe1572F1B640E1bbc512f5c3a734fc77c"

func counterfactualWallet(index uint32) *business.WalletData {
	factory := business.FactoryParams{
		Address:  testFactory,
		InitCode: []byte{0x60, 0x80, 0x60, 0x40, byte(index)},
		Salt:     common.BigToHash(common.Big1),
	}
	account := contracts.CounterfactualAddress(common.HexToAddress(factory.Address), factory.Salt, factory.InitCode).Hex()
	w := testWallet(account, index, usdc(50))
	w.Record.Factory = factory
	return w
}

func TestAccountDeployer_DeployPending(t *testing.T) {
	tests := []struct {
		name       string
		wallet     func() *business.WalletData
		setupMocks func(chain *mocks.MockChainReader, relay *mocks.MockRelayClient, signer *mocks.MockOperationSigner, w *business.WalletData)
		wantReady  bool
		wantCat    business.ErrorCategory
	}{
		{
			name:   "already deployed",
			wallet: func() *business.WalletData { return testWallet(testAccount, 0, usdc(50)) },
			setupMocks: func(chain *mocks.MockChainReader, relay *mocks.MockRelayClient, _ *mocks.MockOperationSigner, w *business.WalletData) {
				chain.EXPECT().HasCode(gomock.Any(), w.Account()).Return(true, nil).Times(1)
				relay.EXPECT().PrepareOperation(gomock.Any(), gomock.Any()).Times(0)
			},
			wantReady: true,
		},
		{
			name:   "no code and no factory",
			wallet: func() *business.WalletData { return testWallet(testAccount, 0, usdc(50)) },
			setupMocks: func(chain *mocks.MockChainReader, relay *mocks.MockRelayClient, _ *mocks.MockOperationSigner, w *business.WalletData) {
				chain.EXPECT().HasCode(gomock.Any(), w.Account()).Return(false, nil).Times(1)
				relay.EXPECT().PrepareOperation(gomock.Any(), gomock.Any()).Times(0)
			},
			wantCat: business.CategoryRevert,
		},
		{
			name: "factory predicts a different address",
			wallet: func() *business.WalletData {
				w := counterfactualWallet(3)
				w.Record.AccountAddress = accountAddr(3)
				return w
			},
			setupMocks: func(chain *mocks.MockChainReader, relay *mocks.MockRelayClient, _ *mocks.MockOperationSigner, w *business.WalletData) {
				chain.EXPECT().HasCode(gomock.Any(), w.Account()).Return(false, nil).Times(1)
				relay.EXPECT().PrepareOperation(gomock.Any(), gomock.Any()).Times(0)
			},
			wantCat: business.CategoryRevert,
		},
		{
			name:   "deploys through the factory",
			wallet: func() *business.WalletData { return counterfactualWallet(4) },
			setupMocks: func(chain *mocks.MockChainReader, relay *mocks.MockRelayClient, signer *mocks.MockOperationSigner, w *business.WalletData) {
				gomock.InOrder(
					chain.EXPECT().HasCode(gomock.Any(), w.Account()).Return(false, nil),
					chain.EXPECT().HasCode(gomock.Any(), w.Account()).Return(true, nil),
				)
				relay.EXPECT().PrepareOperation(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, req business.OperationRequest) (*business.PreparedOperation, error) {
						assert.Equal(t, testFactory, req.To)
						want, err := contracts.EncodeFactoryDeploy(w.Record.Factory.InitCode, w.Record.Factory.Salt)
						assert.NoError(t, err)
						assert.Equal(t, want, req.Data)
						assert.Equal(t, PhaseDeploy, phaseOf(req.NonceKey))
						return &business.PreparedOperation{Hash: "0xdeploy", NonceKey: req.NonceKey}, nil
					}).Times(1)
				signer.EXPECT().SignOperationHash("0xdeploy").Return([]byte{0x01}, nil).Times(1)
				relay.EXPECT().SendOperation(gomock.Any(), gomock.Any(), gomock.Any()).Return("0xop", nil).Times(1)
				relay.EXPECT().WaitForReceipt(gomock.Any(), "0xop", gomock.Any()).
					Return(&business.OperationReceipt{OpHash: "0xop", TxHash: "0xtx", Success: true}, nil).Times(1)
			},
			wantReady: true,
		},
		{
			name:   "deploy confirmed but still no code",
			wallet: func() *business.WalletData { return counterfactualWallet(5) },
			setupMocks: func(chain *mocks.MockChainReader, relay *mocks.MockRelayClient, signer *mocks.MockOperationSigner, w *business.WalletData) {
				chain.EXPECT().HasCode(gomock.Any(), w.Account()).Return(false, nil).Times(2)
				relay.EXPECT().PrepareOperation(gomock.Any(), gomock.Any()).Return(&business.PreparedOperation{Hash: "0xdeploy"}, nil).Times(1)
				signer.EXPECT().SignOperationHash("0xdeploy").Return([]byte{0x01}, nil).Times(1)
				relay.EXPECT().SendOperation(gomock.Any(), gomock.Any(), gomock.Any()).Return("0xop", nil).Times(1)
				relay.EXPECT().WaitForReceipt(gomock.Any(), "0xop", gomock.Any()).
					Return(&business.OperationReceipt{OpHash: "0xop", TxHash: "0xtx", Success: true}, nil).Times(1)
			},
			wantCat: business.CategoryRevert,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			chain := mocks.NewMockChainReader(ctrl)
			relay := mocks.NewMockRelayClient(ctrl)
			signer := mocks.NewMockOperationSigner(ctrl)
			w := tt.wallet()
			tt.setupMocks(chain, relay, signer, w)

			retry, _ := newTestRetry(3)
			submitter := NewOperationSubmitter(relay, signer, retry, 0, time.Minute, zap.NewNop())
			deployer := NewAccountDeployer(chain, submitter, retry, zap.NewNop())

			ready, failed := deployer.DeployPending(context.Background(), []*business.WalletData{w},
				NewNonceAllocator(nil).BeginPhase(PhaseDeploy))

			if tt.wantReady {
				assert.Len(t, ready, 1)
				assert.Empty(t, failed)
				return
			}
			assert.Empty(t, ready)
			require.Len(t, failed, 1)
			assert.Equal(t, business.StageDeploy, failed[0].Stage)
			assert.Equal(t, tt.wantCat, failed[0].ErrorCategory)
			assert.Equal(t, w.Account(), failed[0].Account)
		})
	}
}
