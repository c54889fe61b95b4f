package chain_test

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cyphera/cyphera-rebalancer/internal/client/chain"
	"github.com/cyphera/cyphera-rebalancer/internal/contracts"
	"github.com/cyphera/cyphera-rebalancer/internal/types/business"
)

const (
	permit2 = "0x000000000022D473030F116dDEE9F6B43aC78BA3"
	usdc    = "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"
	owner   = "0x2222222222222222222222222222222222222222"
	router  = "0x3fC91A3afd70395Cd496C647d5a6CC9D4B2b7FAD"
)

type fakeBackend struct {
	calls   map[string][]byte
	code    map[common.Address][]byte
	balance *big.Int
	err     error
}

func (f *fakeBackend) CallContract(_ context.Context, call ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	for prefix, out := range f.calls {
		if bytes.HasPrefix(call.Data, common.FromHex(prefix)) {
			return out, nil
		}
	}
	return nil, errors.New("unexpected call")
}

func (f *fakeBackend) CodeAt(_ context.Context, account common.Address, _ *big.Int) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.code[account], nil
}

func (f *fakeBackend) BalanceAt(_ context.Context, _ common.Address, _ *big.Int) (*big.Int, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.balance, nil
}

func uint256Word(v *big.Int) []byte {
	return common.LeftPadBytes(v.Bytes(), 32)
}

func TestReader_TokenReads(t *testing.T) {
	uint160, _ := abi.NewType("uint160", "", nil)
	uint48, _ := abi.NewType("uint48", "", nil)
	permitOut, err := abi.Arguments{{Type: uint160}, {Type: uint48}, {Type: uint48}}.Pack(contracts.MaxUint160, big.NewInt(1_900_000_000), big.NewInt(0))
	require.NoError(t, err)

	backend := &fakeBackend{
		calls: map[string][]byte{
			"0x70a08231": uint256Word(big.NewInt(1_000_000_000)), // balanceOf
			"0xdd62ed3e": uint256Word(big.NewInt(5)),             // allowance
			"0x927da105": permitOut,                              // permit2 allowance
		},
		code:    map[common.Address][]byte{common.HexToAddress(owner): {0x60, 0x80}},
		balance: big.NewInt(42),
	}
	reader := chain.NewReader(backend, permit2, zap.NewNop())
	ctx := context.Background()

	bal, err := reader.TokenBalance(ctx, usdc, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(1_000_000_000), bal.Int64())

	allowance, err := reader.Allowance(ctx, usdc, owner, permit2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), allowance.Int64())

	p2, err := reader.Permit2Allowance(ctx, owner, usdc, router)
	require.NoError(t, err)
	assert.Equal(t, 0, p2.Amount.Cmp(contracts.MaxUint160))
	assert.Equal(t, time.Unix(1_900_000_000, 0).UTC(), p2.Expiration)

	deployed, err := reader.HasCode(ctx, owner)
	require.NoError(t, err)
	assert.True(t, deployed)

	deployed, err = reader.HasCode(ctx, router)
	require.NoError(t, err)
	assert.False(t, deployed)

	native, err := reader.NativeBalance(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(42), native.Int64())
}

func TestReader_TranslatesErrors(t *testing.T) {
	reader := chain.NewReader(&fakeBackend{err: context.DeadlineExceeded}, permit2, zap.NewNop())

	_, err := reader.TokenBalance(context.Background(), usdc, owner)
	var timeout *business.TimeoutError
	assert.True(t, errors.As(err, &timeout))

	_, err = reader.HasCode(context.Background(), owner)
	assert.True(t, errors.As(err, &timeout))
}
