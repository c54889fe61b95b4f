package services

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cyphera/cyphera-rebalancer/internal/constants"
	"github.com/cyphera/cyphera-rebalancer/internal/types/business"
)

const (
	testOperator = "0x1111111111111111111111111111111111111111"
	testAccount  = "0x2222222222222222222222222222222222222222"
)

func timestampTerms(after, before uint64) string {
	return fmt.Sprintf("0x%032x%032x", after, before)
}

func limitTerms(limit uint64) string {
	return fmt.Sprintf("0x%064x", limit)
}

func delegationPayload(t *testing.T, delegate, delegator string, caveats ...business.CaveatStruct) []byte {
	t.Helper()
	raw, err := json.Marshal(map[string]interface{}{
		"delegate":  delegate,
		"delegator": delegator,
		"authority": "0xffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff",
		"caveats":   caveats,
		"salt":      "0x01",
		"signature": "0xdeadbeef",
		"extra":     map[string]string{"ignored": "yes"},
	})
	require.NoError(t, err)
	return raw
}

func TestParseDelegation(t *testing.T) {
	d, err := ParseDelegation(delegationPayload(t, testOperator, testAccount))
	require.NoError(t, err)
	assert.Equal(t, testOperator, d.Delegate)
	assert.Equal(t, testAccount, d.Delegator)

	_, err = ParseDelegation(nil)
	assert.Error(t, err)
	_, err = ParseDelegation([]byte("{not json"))
	assert.Error(t, err)
	_, err = ParseDelegation([]byte(`{"delegate":"0x1","delegator":"0x2","signature":"0x"}`))
	assert.Error(t, err)
}

func TestParseTimestampTerms(t *testing.T) {
	w, err := ParseTimestampTerms(timestampTerms(100, 200))
	require.NoError(t, err)
	assert.Equal(t, TimestampWindow{After: 100, Before: 200}, w)

	assert.False(t, w.Contains(time.Unix(100, 0)))
	assert.True(t, w.Contains(time.Unix(150, 0)))
	assert.False(t, w.Contains(time.Unix(200, 0)))
	assert.True(t, TimestampWindow{}.Contains(time.Unix(1, 0)))

	_, err = ParseTimestampTerms("0x1234")
	assert.Error(t, err)
}

func TestDelegationValidator_Validate(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	v := NewDelegationValidator(testOperator, constants.DefaultTimestampEnforcer, constants.DefaultLimitedCallsEnforcer, zap.NewNop())

	tests := []struct {
		name      string
		record    business.DelegationRecord
		wantValid bool
		reason    string
	}{
		{
			name:      "valid without caveats",
			record:    business.DelegationRecord{AccountAddress: testAccount, Payload: delegationPayload(t, testOperator, testAccount)},
			wantValid: true,
		},
		{
			name: "address case does not matter",
			record: business.DelegationRecord{
				AccountAddress: testAccount,
				Payload:        delegationPayload(t, "0x1111111111111111111111111111111111111111", "0x2222222222222222222222222222222222222222"),
			},
			wantValid: true,
		},
		{
			name:   "wrong grantee",
			record: business.DelegationRecord{AccountAddress: testAccount, Payload: delegationPayload(t, "0x9999999999999999999999999999999999999999", testAccount)},
			reason: "is not the operator",
		},
		{
			name:   "wrong grantor",
			record: business.DelegationRecord{AccountAddress: testAccount, Payload: delegationPayload(t, testOperator, "0x3333333333333333333333333333333333333333")},
			reason: "does not match account",
		},
		{
			name:   "unparsable",
			record: business.DelegationRecord{AccountAddress: testAccount, Payload: []byte("garbage")},
			reason: "unparsable",
		},
		{
			name: "record expired",
			record: business.DelegationRecord{
				AccountAddress: testAccount,
				Payload:        delegationPayload(t, testOperator, testAccount),
				ExpiresAt:      now.Add(-time.Hour),
			},
			reason: "expired",
		},
		{
			name: "inside time window",
			record: business.DelegationRecord{AccountAddress: testAccount, Payload: delegationPayload(t, testOperator, testAccount,
				business.CaveatStruct{Enforcer: constants.DefaultTimestampEnforcer, Terms: timestampTerms(uint64(now.Add(-time.Hour).Unix()), uint64(now.Add(time.Hour).Unix()))})},
			wantValid: true,
		},
		{
			name: "window closed",
			record: business.DelegationRecord{AccountAddress: testAccount, Payload: delegationPayload(t, testOperator, testAccount,
				business.CaveatStruct{Enforcer: constants.DefaultTimestampEnforcer, Terms: timestampTerms(0, uint64(now.Add(-time.Minute).Unix()))})},
			reason: "time window",
		},
		{
			name: "window not open yet",
			record: business.DelegationRecord{AccountAddress: testAccount, Payload: delegationPayload(t, testOperator, testAccount,
				business.CaveatStruct{Enforcer: constants.DefaultTimestampEnforcer, Terms: timestampTerms(uint64(now.Add(time.Minute).Unix()), 0)})},
			reason: "time window",
		},
		{
			name: "call limit zero",
			record: business.DelegationRecord{AccountAddress: testAccount, Payload: delegationPayload(t, testOperator, testAccount,
				business.CaveatStruct{Enforcer: constants.DefaultLimitedCallsEnforcer, Terms: limitTerms(0)})},
			reason: "call limit",
		},
		{
			name: "call limit positive is logged only",
			record: business.DelegationRecord{AccountAddress: testAccount, Payload: delegationPayload(t, testOperator, testAccount,
				business.CaveatStruct{Enforcer: constants.DefaultLimitedCallsEnforcer, Terms: limitTerms(365)})},
			wantValid: true,
		},
		{
			name: "unknown enforcer ignored",
			record: business.DelegationRecord{AccountAddress: testAccount, Payload: delegationPayload(t, testOperator, testAccount,
				business.CaveatStruct{Enforcer: "0x5555555555555555555555555555555555555555", Terms: "0x01"})},
			wantValid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := tt.record
			res := v.Validate(&record, now)
			assert.Equal(t, tt.wantValid, res.Valid, res.Reason)
			if tt.wantValid {
				require.NotNil(t, res.Delegation)
			} else {
				assert.Contains(t, res.Reason, tt.reason)
			}
		})
	}
}
