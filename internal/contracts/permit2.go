package contracts

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Permit2AllowanceResult mirrors Permit2.allowance outputs.
type Permit2AllowanceResult struct {
	Amount     *big.Int
	Expiration uint64
	Nonce      uint64
}

// EncodePermit2Allowance packs allowance(user, token, spender).
func EncodePermit2Allowance(user, token, spender common.Address) ([]byte, error) {
	return permit2ABI.Pack("allowance", user, token, spender)
}

// DecodePermit2Allowance unpacks the (uint160, uint48, uint48) allowance tuple.
func DecodePermit2Allowance(data []byte) (*Permit2AllowanceResult, error) {
	out, err := permit2ABI.Unpack("allowance", data)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack permit2 allowance: %w", err)
	}
	if len(out) != 3 {
		return nil, fmt.Errorf("unexpected permit2 allowance output length %d", len(out))
	}

	amount, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected permit2 amount type %T", out[0])
	}
	expiration, ok := out[1].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected permit2 expiration type %T", out[1])
	}
	nonce, ok := out[2].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected permit2 nonce type %T", out[2])
	}

	return &Permit2AllowanceResult{
		Amount:     amount,
		Expiration: expiration.Uint64(),
		Nonce:      nonce.Uint64(),
	}, nil
}

// EncodePermit2Approve packs approve(token, spender, amount, expiration).
func EncodePermit2Approve(token, spender common.Address, amount *big.Int, expiration uint64) ([]byte, error) {
	if amount.Cmp(MaxUint160) > 0 {
		return nil, fmt.Errorf("permit2 amount exceeds uint160")
	}
	return permit2ABI.Pack("approve", token, spender, amount, new(big.Int).SetUint64(expiration))
}
