package services

import (
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"

	"github.com/cyphera/cyphera-rebalancer/internal/helpers"
	"github.com/cyphera/cyphera-rebalancer/internal/logger"
	"github.com/cyphera/cyphera-rebalancer/internal/types/business"
)

// ParseDelegation decodes the narrow view of a stored delegation. Only delegate, delegator,
// authority, caveats, salt and signature are read.
func ParseDelegation(raw []byte) (*business.DelegationStruct, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty delegation payload")
	}

	var d business.DelegationStruct
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("invalid delegation payload: %w", err)
	}
	if d.Delegate == "" || d.Delegator == "" {
		return nil, fmt.Errorf("delegation payload missing delegate or delegator")
	}
	if d.Signature == "" || d.Signature == "0x" {
		return nil, fmt.Errorf("delegation payload is unsigned")
	}
	return &d, nil
}

// TimestampWindow is the TimestampEnforcer's terms. A zero bound is unbounded.
type TimestampWindow struct {
	After  uint64
	Before uint64
}

// Contains reports whether now falls strictly inside the window.
func (w TimestampWindow) Contains(now time.Time) bool {
	ts := uint64(now.Unix())
	if w.After != 0 && ts <= w.After {
		return false
	}
	if w.Before != 0 && ts >= w.Before {
		return false
	}
	return true
}

// ParseTimestampTerms decodes uint128 afterThreshold ‖ uint128 beforeThreshold.
func ParseTimestampTerms(terms string) (TimestampWindow, error) {
	raw, err := hexutil.Decode(terms)
	if err != nil {
		return TimestampWindow{}, fmt.Errorf("invalid timestamp terms: %w", err)
	}
	if len(raw) != 32 {
		return TimestampWindow{}, fmt.Errorf("timestamp terms must be 32 bytes, got %d", len(raw))
	}

	after := new(big.Int).SetBytes(raw[:16])
	before := new(big.Int).SetBytes(raw[16:])
	if !after.IsUint64() || !before.IsUint64() {
		return TimestampWindow{}, fmt.Errorf("timestamp terms out of range")
	}
	return TimestampWindow{After: after.Uint64(), Before: before.Uint64()}, nil
}

// ParseLimitedCallsTerms decodes the uint256 call limit.
func ParseLimitedCallsTerms(terms string) (*big.Int, error) {
	raw, err := hexutil.Decode(terms)
	if err != nil {
		return nil, fmt.Errorf("invalid limited calls terms: %w", err)
	}
	if len(raw) != 32 {
		return nil, fmt.Errorf("limited calls terms must be 32 bytes, got %d", len(raw))
	}
	return new(big.Int).SetBytes(raw), nil
}

// DelegationValidator rejects records the engine must not redeem.
type DelegationValidator struct {
	operator             string
	timestampEnforcer    string
	limitedCallsEnforcer string
	logger               *zap.Logger
}

// NewDelegationValidator builds a validator for the operator identity and known enforcers.
func NewDelegationValidator(operator, timestampEnforcer, limitedCallsEnforcer string, log *zap.Logger) *DelegationValidator {
	if log == nil {
		log = logger.Log
	}
	return &DelegationValidator{
		operator:             operator,
		timestampEnforcer:    timestampEnforcer,
		limitedCallsEnforcer: limitedCallsEnforcer,
		logger:               log,
	}
}

func invalid(format string, args ...interface{}) business.ValidationResult {
	return business.ValidationResult{Reason: fmt.Sprintf(format, args...)}
}

// Validate checks grantee, grantor, record expiry and the recognized caveats.
//
// The usage-count check is best effort: the authoritative count lives on-chain and is not
// read here, so only a stated limit of zero is rejected.
func (v *DelegationValidator) Validate(record *business.DelegationRecord, now time.Time) business.ValidationResult {
	d, err := ParseDelegation(record.Payload)
	if err != nil {
		return invalid("unparsable delegation: %v", err)
	}
	if !helpers.SameAddress(d.Delegate, v.operator) {
		return invalid("delegate %s is not the operator %s", d.Delegate, v.operator)
	}
	if !helpers.SameAddress(d.Delegator, record.AccountAddress) {
		return invalid("delegator %s does not match account %s", d.Delegator, record.AccountAddress)
	}
	if record.Expired(now) {
		return invalid("delegation record expired at %s", record.ExpiresAt.UTC().Format(time.RFC3339))
	}

	for i, c := range d.Caveats {
		switch {
		case helpers.SameAddress(c.Enforcer, v.timestampEnforcer):
			window, err := ParseTimestampTerms(c.Terms)
			if err != nil {
				return invalid("caveat %d: %v", i, err)
			}
			if !window.Contains(now) {
				return invalid("outside delegation time window (after %d, before %d)", window.After, window.Before)
			}
		case helpers.SameAddress(c.Enforcer, v.limitedCallsEnforcer):
			limit, err := ParseLimitedCallsTerms(c.Terms)
			if err != nil {
				return invalid("caveat %d: %v", i, err)
			}
			if limit.Sign() == 0 {
				return invalid("delegation call limit exhausted")
			}
			v.logger.Debug("Delegation has a call limit, usage not verified",
				zap.String("account", record.AccountAddress),
				zap.String("limit", limit.String()))
		default:
			v.logger.Debug("Ignoring unknown caveat enforcer",
				zap.String("account", record.AccountAddress),
				zap.String("enforcer", c.Enforcer))
		}
	}

	return business.ValidationResult{Valid: true, Delegation: d}
}
