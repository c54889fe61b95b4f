package contracts

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// ERC20ABI is the subset of the ERC20 interface the engine touches.
const ERC20ABI = `[
	{"constant":true,"inputs":[{"name":"account","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"type":"function"},
	{"constant":true,"inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"name":"allowance","outputs":[{"name":"","type":"uint256"}],"type":"function"},
	{"constant":false,"inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"name":"approve","outputs":[{"name":"","type":"bool"}],"type":"function"},
	{"constant":false,"inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"name":"transfer","outputs":[{"name":"","type":"bool"}],"type":"function"}
]`

// Permit2ABI covers the AllowanceTransfer half of Permit2.
const Permit2ABI = `[
	{"inputs":[{"name":"user","type":"address"},{"name":"token","type":"address"},{"name":"spender","type":"address"}],"name":"allowance","outputs":[{"name":"amount","type":"uint160"},{"name":"expiration","type":"uint48"},{"name":"nonce","type":"uint48"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"name":"token","type":"address"},{"name":"spender","type":"address"},{"name":"amount","type":"uint160"},{"name":"expiration","type":"uint48"}],"name":"approve","outputs":[],"stateMutability":"nonpayable","type":"function"}
]`

// DelegationManagerABI exposes redeemDelegations.
const DelegationManagerABI = `[
	{"inputs":[{"name":"_permissionContexts","type":"bytes[]"},{"name":"_modes","type":"bytes32[]"},{"name":"_executionCallDatas","type":"bytes[]"}],"name":"redeemDelegations","outputs":[],"stateMutability":"nonpayable","type":"function"}
]`

// FactoryABI is the minimal CREATE2 deployer used at enrollment.
const FactoryABI = `[
	{"inputs":[{"name":"_bytecode","type":"bytes"},{"name":"_salt","type":"bytes32"}],"name":"deploy","outputs":[{"name":"addr_","type":"address"}],"stateMutability":"nonpayable","type":"function"}
]`

var (
	erc20ABI             = mustParse(ERC20ABI)
	permit2ABI           = mustParse(Permit2ABI)
	delegationManagerABI = mustParse(DelegationManagerABI)
	factoryABI           = mustParse(FactoryABI)
)

func mustParse(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic("invalid contract abi: " + err.Error())
	}
	return parsed
}
