package services

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/cyphera/cyphera-rebalancer/internal/db"
	"github.com/cyphera/cyphera-rebalancer/internal/helpers"
	"github.com/cyphera/cyphera-rebalancer/internal/types/business"
)

// RecordFromRow converts a stored delegation into the engine's view of it.
func RecordFromRow(row db.RebalanceDelegation) *business.DelegationRecord {
	record := &business.DelegationRecord{
		ID:             row.ID,
		OwnerID:        row.OwnerID,
		AccountAddress: row.AccountAddress,
		Payload:        row.DelegationData,
		MaxAmountUSD:   helpers.NumericToDecimal(row.MaxAmountUsd),
		TargetToken:    row.TargetToken.String,
	}
	if row.ExpiresAt.Valid {
		record.ExpiresAt = row.ExpiresAt.Time
	}
	if row.FactoryAddress.Valid {
		record.Factory = business.FactoryParams{
			Address:  row.FactoryAddress.String,
			InitCode: row.FactoryInitCode,
			Salt:     [32]byte(common.BytesToHash(row.DeploySalt)),
		}
	}
	return record
}

func executionParams(res *business.ExecutionResult) db.CreateExecutionParams {
	params := db.CreateExecutionParams{
		RunID:             res.RunID,
		ParentExecutionID: helpers.UUIDToPg(res.ParentID),
		OwnerID:           res.OwnerID,
		AccountAddress:    res.Account,
		Action:            string(res.Action),
		Stage:             string(res.Stage),
		Success:           res.Success,
		OpHash:            helpers.StringToNullableText(res.OpHash),
		TxHash:            helpers.StringToNullableText(res.TxHash),
		ErrorCategory:     helpers.StringToNullableText(string(res.ErrorCategory)),
		ErrorMessage:      helpers.StringToNullableText(res.ErrorMessage),
		RetryCount:        int32(res.RetryCount),
		GrossAmount:       helpers.BigIntToNumeric(res.Gross),
		FeeAmount:         helpers.BigIntToNumeric(res.Fee),
		NetAmount:         helpers.BigIntToNumeric(res.Net),
		ExpectedOutput:    helpers.BigIntToNumeric(res.ExpectedOut),
		MinOutput:         helpers.BigIntToNumeric(res.MinOut),
		VolumeUsd:         helpers.DecimalToNumeric(res.VolumeUSD),
		FeeUsd:            helpers.DecimalToNumeric(res.FeeUSD),
		SentimentScore:    helpers.Int32ToNullableInt4(int32(res.SentimentScore)),
	}
	if res.Record != nil {
		params.DelegationID = helpers.UUIDToPg(res.Record.ID)
	}
	if w := res.Wallet; w != nil {
		params.SellToken = helpers.StringToNullableText(w.SellToken.Address)
		params.BuyToken = helpers.StringToNullableText(w.BuyToken.Address)
	}
	return params
}
