package contracts

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
)

// MaxUint256 is the unlimited ERC20 allowance.
var MaxUint256 = new(big.Int).Set(math.MaxBig256)

// MaxUint160 is the largest amount Permit2 stores.
var MaxUint160 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 160), big.NewInt(1))

// EncodeBalanceOf packs balanceOf(owner).
func EncodeBalanceOf(owner common.Address) ([]byte, error) {
	return erc20ABI.Pack("balanceOf", owner)
}

// EncodeAllowance packs allowance(owner, spender).
func EncodeAllowance(owner, spender common.Address) ([]byte, error) {
	return erc20ABI.Pack("allowance", owner, spender)
}

// EncodeApprove packs approve(spender, amount).
func EncodeApprove(spender common.Address, amount *big.Int) ([]byte, error) {
	return erc20ABI.Pack("approve", spender, amount)
}

// EncodeTransfer packs transfer(to, amount).
func EncodeTransfer(to common.Address, amount *big.Int) ([]byte, error) {
	return erc20ABI.Pack("transfer", to, amount)
}

// DecodeUint256 unpacks the single uint256 returned by balanceOf or allowance.
func DecodeUint256(method string, data []byte) (*big.Int, error) {
	out, err := erc20ABI.Unpack(method, data)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s: %w", method, err)
	}
	if len(out) != 1 {
		return nil, fmt.Errorf("unexpected %s output length %d", method, len(out))
	}
	v, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected %s output type %T", method, out[0])
	}
	return v, nil
}
