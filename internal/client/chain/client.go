package chain

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"github.com/cyphera/cyphera-rebalancer/internal/client/transport"
	"github.com/cyphera/cyphera-rebalancer/internal/contracts"
	"github.com/cyphera/cyphera-rebalancer/internal/interfaces"
)

// Backend is the part of an Ethereum node the reader calls.
type Backend interface {
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error)
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
}

// Reader performs token and account reads against the latest block.
type Reader struct {
	backend Backend
	permit2 common.Address
	logger  *zap.Logger
}

// Dial connects to rpcURL.
func Dial(ctx context.Context, rpcURL string, permit2 string, logger *zap.Logger) (*Reader, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rpc: %w", err)
	}
	return NewReader(client, permit2, logger), nil
}

// NewReader wraps an existing backend.
func NewReader(backend Backend, permit2 string, logger *zap.Logger) *Reader {
	return &Reader{
		backend: backend,
		permit2: common.HexToAddress(permit2),
		logger:  logger,
	}
}

func (r *Reader) call(ctx context.Context, op string, to common.Address, data []byte) ([]byte, error) {
	out, err := r.backend.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return nil, transport.Translate(op, fmt.Errorf("eth_call %s on %s: %w", op, to.Hex(), err))
	}
	return out, nil
}

// TokenBalance returns the ERC20 balance of owner.
func (r *Reader) TokenBalance(ctx context.Context, token, owner string) (*big.Int, error) {
	data, err := contracts.EncodeBalanceOf(common.HexToAddress(owner))
	if err != nil {
		return nil, err
	}
	out, err := r.call(ctx, "balanceOf", common.HexToAddress(token), data)
	if err != nil {
		return nil, err
	}
	return contracts.DecodeUint256("balanceOf", out)
}

// Allowance returns the ERC20 allowance owner granted spender.
func (r *Reader) Allowance(ctx context.Context, token, owner, spender string) (*big.Int, error) {
	data, err := contracts.EncodeAllowance(common.HexToAddress(owner), common.HexToAddress(spender))
	if err != nil {
		return nil, err
	}
	out, err := r.call(ctx, "allowance", common.HexToAddress(token), data)
	if err != nil {
		return nil, err
	}
	return contracts.DecodeUint256("allowance", out)
}

// Permit2Allowance reads Permit2's internal allowance for (owner, token, spender).
func (r *Reader) Permit2Allowance(ctx context.Context, owner, token, spender string) (*interfaces.Permit2Allowance, error) {
	data, err := contracts.EncodePermit2Allowance(common.HexToAddress(owner), common.HexToAddress(token), common.HexToAddress(spender))
	if err != nil {
		return nil, err
	}
	out, err := r.call(ctx, "permit2.allowance", r.permit2, data)
	if err != nil {
		return nil, err
	}
	res, err := contracts.DecodePermit2Allowance(out)
	if err != nil {
		return nil, err
	}
	return &interfaces.Permit2Allowance{
		Amount:     res.Amount,
		Expiration: time.Unix(int64(res.Expiration), 0).UTC(),
		Nonce:      res.Nonce,
	}, nil
}

// HasCode reports whether address has deployed bytecode.
func (r *Reader) HasCode(ctx context.Context, address string) (bool, error) {
	code, err := r.backend.CodeAt(ctx, common.HexToAddress(address), nil)
	if err != nil {
		return false, transport.Translate("getCode", fmt.Errorf("eth_getCode %s: %w", address, err))
	}
	return len(code) > 0, nil
}

// NativeBalance returns the native balance of address in wei.
func (r *Reader) NativeBalance(ctx context.Context, address string) (*big.Int, error) {
	bal, err := r.backend.BalanceAt(ctx, common.HexToAddress(address), nil)
	if err != nil {
		return nil, transport.Translate("getBalance", fmt.Errorf("eth_getBalance %s: %w", address, err))
	}
	return bal, nil
}
