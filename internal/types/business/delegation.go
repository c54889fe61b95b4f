package business

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DelegationStruct is the parsed view of a signed delegation.
// This structure matches the format used by the MetaMask delegation toolkit; fields
// outside it are ignored.
type DelegationStruct struct {
	Delegate  string         `json:"delegate"`
	Delegator string         `json:"delegator"`
	Authority string         `json:"authority"`
	Caveats   []CaveatStruct `json:"caveats"`
	Salt      string         `json:"salt"`
	Signature string         `json:"signature"`
}

// CaveatStruct represents a single caveat in a delegation
// Based on MetaMask delegation toolkit: https://docs.metamask.io/delegation-toolkit/concepts/caveat-enforcers/
type CaveatStruct struct {
	Enforcer string `json:"enforcer"` // Address of the caveat enforcer contract
	Terms    string `json:"terms"`    // Encoded parameters defining the specific restrictions (hex string)
	Args     string `json:"args,omitempty"`
}

// FactoryParams are the counterfactual deployment inputs captured at enrollment.
type FactoryParams struct {
	Address  string
	InitCode []byte
	Salt     [32]byte
}

// IsSet reports whether enrollment stored enough data to deploy the account.
func (f FactoryParams) IsSet() bool {
	return f.Address != "" && len(f.InitCode) > 0
}

// DelegationRecord is one enrolled account as read from the store. Payload is the
// signed delegation exactly as the owner produced it.
type DelegationRecord struct {
	ID             uuid.UUID
	OwnerID        string
	AccountAddress string
	Payload        []byte
	MaxAmountUSD   decimal.Decimal
	ExpiresAt      time.Time
	TargetToken    string
	Factory        FactoryParams
}

// Expired reports whether the record's own expiry has passed.
func (r *DelegationRecord) Expired(now time.Time) bool {
	return !r.ExpiresAt.IsZero() && !now.Before(r.ExpiresAt)
}

// ValidationResult is the outcome of checking a record before use.
type ValidationResult struct {
	Valid      bool
	Reason     string
	Delegation *DelegationStruct
}
