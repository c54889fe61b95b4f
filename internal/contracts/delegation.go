package contracts

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/cyphera/cyphera-rebalancer/internal/types/business"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// RootAuthority marks a delegation that is not itself re-delegated.
var RootAuthority = common.HexToHash("0xffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff")

// SingleDefaultMode is the ERC-7579 mode for one call that reverts on failure.
var SingleDefaultMode = [32]byte{}

// BatchDefaultMode is the ERC-7579 mode for an all-or-nothing call batch.
var BatchDefaultMode = [32]byte{0x01}

var delegationsArgs = func() abi.Arguments {
	typ, err := abi.NewType("tuple[]", "", []abi.ArgumentMarshaling{
		{Name: "delegate", Type: "address"},
		{Name: "delegator", Type: "address"},
		{Name: "authority", Type: "bytes32"},
		{Name: "caveats", Type: "tuple[]", Components: []abi.ArgumentMarshaling{
			{Name: "enforcer", Type: "address"},
			{Name: "terms", Type: "bytes"},
			{Name: "args", Type: "bytes"},
		}},
		{Name: "salt", Type: "uint256"},
		{Name: "signature", Type: "bytes"},
	})
	if err != nil {
		panic("invalid delegation tuple: " + err.Error())
	}
	return abi.Arguments{{Type: typ}}
}()

var executionsArgs = func() abi.Arguments {
	typ, err := abi.NewType("tuple[]", "", []abi.ArgumentMarshaling{
		{Name: "target", Type: "address"},
		{Name: "value", Type: "uint256"},
		{Name: "callData", Type: "bytes"},
	})
	if err != nil {
		panic("invalid execution tuple: " + err.Error())
	}
	return abi.Arguments{{Type: typ}}
}()

type caveatTuple struct {
	Enforcer common.Address
	Terms    []byte
	Args     []byte
}

type delegationTuple struct {
	Delegate  common.Address
	Delegator common.Address
	Authority [32]byte
	Caveats   []caveatTuple
	Salt      *big.Int
	Signature []byte
}

// Execution is a single call the delegator account performs when the delegation is redeemed.
type Execution struct {
	Target   common.Address
	Value    *big.Int
	CallData []byte
}

// EncodePermissionContext abi-encodes a delegation chain, leaf first.
func EncodePermissionContext(chain ...*business.DelegationStruct) ([]byte, error) {
	tuples := make([]delegationTuple, 0, len(chain))
	for _, d := range chain {
		t, err := toTuple(d)
		if err != nil {
			return nil, err
		}
		tuples = append(tuples, t)
	}
	return delegationsArgs.Pack(tuples)
}

// EncodeExecution packs a single execution as target ‖ value ‖ callData.
func EncodeExecution(exec Execution) []byte {
	value := exec.Value
	if value == nil {
		value = new(big.Int)
	}
	out := make([]byte, 0, 20+32+len(exec.CallData))
	out = append(out, exec.Target.Bytes()...)
	out = append(out, common.LeftPadBytes(value.Bytes(), 32)...)
	out = append(out, exec.CallData...)
	return out
}

// EncodeBatchExecution abi-encodes executions as (address,uint256,bytes)[].
func EncodeBatchExecution(execs []Execution) ([]byte, error) {
	tuples := make([]struct {
		Target   common.Address
		Value    *big.Int
		CallData []byte
	}, len(execs))
	for i, e := range execs {
		tuples[i].Target = e.Target
		tuples[i].Value = e.Value
		if tuples[i].Value == nil {
			tuples[i].Value = new(big.Int)
		}
		tuples[i].CallData = e.CallData
	}
	return executionsArgs.Pack(tuples)
}

// EncodeRedeemDelegations builds DelegationManager.redeemDelegations for one delegation.
// A single execution uses the single-call mode; more than one is sent as an atomic batch.
func EncodeRedeemDelegations(delegation *business.DelegationStruct, execs ...Execution) ([]byte, error) {
	if len(execs) == 0 {
		return nil, fmt.Errorf("no executions to redeem")
	}
	ctx, err := EncodePermissionContext(delegation)
	if err != nil {
		return nil, fmt.Errorf("failed to encode permission context: %w", err)
	}

	mode := SingleDefaultMode
	callData := EncodeExecution(execs[0])
	if len(execs) > 1 {
		mode = BatchDefaultMode
		if callData, err = EncodeBatchExecution(execs); err != nil {
			return nil, fmt.Errorf("failed to encode batch execution: %w", err)
		}
	}

	return delegationManagerABI.Pack("redeemDelegations",
		[][]byte{ctx},
		[][32]byte{mode},
		[][]byte{callData},
	)
}

// EncodeFactoryDeploy packs deploy(initCode, salt).
func EncodeFactoryDeploy(initCode []byte, salt [32]byte) ([]byte, error) {
	return factoryABI.Pack("deploy", initCode, salt)
}

// CounterfactualAddress computes the CREATE2 address the factory will deploy to.
func CounterfactualAddress(factory common.Address, salt [32]byte, initCode []byte) common.Address {
	return crypto.CreateAddress2(factory, salt, crypto.Keccak256(initCode))
}

func toTuple(d *business.DelegationStruct) (delegationTuple, error) {
	if d == nil {
		return delegationTuple{}, fmt.Errorf("nil delegation")
	}
	if !common.IsHexAddress(d.Delegate) || !common.IsHexAddress(d.Delegator) {
		return delegationTuple{}, fmt.Errorf("delegation has invalid delegate or delegator")
	}

	authority := RootAuthority
	if d.Authority != "" {
		raw, err := hexutil.Decode(d.Authority)
		if err != nil || len(raw) != 32 {
			return delegationTuple{}, fmt.Errorf("invalid delegation authority %q", d.Authority)
		}
		authority = common.BytesToHash(raw)
	}

	salt, err := parseSalt(d.Salt)
	if err != nil {
		return delegationTuple{}, err
	}

	signature, err := hexutil.Decode(d.Signature)
	if err != nil {
		return delegationTuple{}, fmt.Errorf("invalid delegation signature: %w", err)
	}

	caveats := make([]caveatTuple, 0, len(d.Caveats))
	for i, c := range d.Caveats {
		if !common.IsHexAddress(c.Enforcer) {
			return delegationTuple{}, fmt.Errorf("caveat %d has invalid enforcer %q", i, c.Enforcer)
		}
		terms, err := decodeOptionalHex(c.Terms)
		if err != nil {
			return delegationTuple{}, fmt.Errorf("caveat %d terms: %w", i, err)
		}
		args, err := decodeOptionalHex(c.Args)
		if err != nil {
			return delegationTuple{}, fmt.Errorf("caveat %d args: %w", i, err)
		}
		caveats = append(caveats, caveatTuple{
			Enforcer: common.HexToAddress(c.Enforcer),
			Terms:    terms,
			Args:     args,
		})
	}

	return delegationTuple{
		Delegate:  common.HexToAddress(d.Delegate),
		Delegator: common.HexToAddress(d.Delegator),
		Authority: authority,
		Caveats:   caveats,
		Salt:      salt,
		Signature: signature,
	}, nil
}

// parseSalt accepts either a 0x hex quantity or a decimal string.
func parseSalt(s string) (*big.Int, error) {
	if s == "" {
		return new(big.Int), nil
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, ok := new(big.Int).SetString(s[2:], 16)
		if !ok {
			return nil, fmt.Errorf("invalid delegation salt %q", s)
		}
		return v, nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid delegation salt %q", s)
	}
	return v, nil
}

func decodeOptionalHex(s string) ([]byte, error) {
	if s == "" || s == "0x" {
		return []byte{}, nil
	}
	return hexutil.Decode(s)
}
