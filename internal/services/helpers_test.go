package services

import (
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cyphera/cyphera-rebalancer/internal/config"
	"github.com/cyphera/cyphera-rebalancer/internal/constants"
	"github.com/cyphera/cyphera-rebalancer/internal/logger"
	"github.com/cyphera/cyphera-rebalancer/internal/types/business"
)

func init() {
	logger.InitLogger("test")
}

const (
	testUSDC   = "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"
	testWETH   = "0x4200000000000000000000000000000000000006"
	testRouter = "0x3fC91A3afd70395Cd496C647d5a6CC9D4B2b7FAD"
)

func testEngineConfig() config.EngineConfig {
	return config.EngineConfig{
		ChainID:                  8453,
		BatchSize:                10,
		BatchDelay:               0,
		QuoteValidity:            3 * time.Minute,
		ConfirmTimeout:           time.Minute,
		SubmitTimeout:            10 * time.Second,
		RetryMaxAttempts:         3,
		RetryBaseDelay:           time.Millisecond,
		RetryMaxDelay:            5 * time.Millisecond,
		MaxEndOfRunRetries:       10,
		FeeBps:                   20,
		MinAccountValueUSD:       decimal.NewFromInt(10),
		MinTradeUSD:              decimal.NewFromInt(1),
		PriceCacheTTL:            5 * time.Minute,
		OperatorAccount:          testOperator,
		FundingToken:             business.TokenInfo{Address: testUSDC, Symbol: "USDC", Decimals: 6},
		TargetTokens:             []business.TokenInfo{{Address: testWETH, Symbol: "WETH", Decimals: 18}},
		Permit2Address:           constants.DefaultPermit2Address,
		DelegationManagerAddress: constants.DefaultDelegationManagerAddress,
		TimestampEnforcer:        constants.DefaultTimestampEnforcer,
		LimitedCallsEnforcer:     constants.DefaultLimitedCallsEnforcer,
		AllowedRouters:           []string{testRouter},
	}
}

func usdc(whole int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(whole), big.NewInt(1_000_000))
}

func testRecord(account string, maxUSD int64) *business.DelegationRecord {
	return &business.DelegationRecord{
		ID:             uuid.New(),
		OwnerID:        "owner-" + account[len(account)-4:],
		AccountAddress: account,
		MaxAmountUSD:   decimal.NewFromInt(maxUSD),
	}
}

func testDelegationStruct(account string) *business.DelegationStruct {
	return &business.DelegationStruct{
		Delegate:  testOperator,
		Delegator: account,
		Salt:      "0x01",
		Signature: "0xdeadbeef",
	}
}

func testWallet(account string, index uint32, gross *big.Int) *business.WalletData {
	amounts := ComputeAmounts(gross, 10000, nil, 20)
	return &business.WalletData{
		Record:     testRecord(account, 1000),
		Delegation: testDelegationStruct(account),
		Index:      index,
		Action:     business.ActionAccumulate,
		SellToken:  business.TokenInfo{Address: testUSDC, Symbol: "USDC", Decimals: 6},
		BuyToken:   business.TokenInfo{Address: testWETH, Symbol: "WETH", Decimals: 18},
		Balance:    new(big.Int).Mul(gross, big.NewInt(20)),
		Gross:      amounts.Gross,
		Fee:        amounts.Fee,
		Net:        amounts.Net,
		GrossUSD:   decimal.NewFromBigInt(amounts.Gross, -6),
		FeeUSD:     decimal.NewFromBigInt(amounts.Fee, -6),
	}
}

func accountAddr(i int) string {
	return fmt.Sprintf("0x%040x", 0xa0000+i)
}
