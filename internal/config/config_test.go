package config_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cyphera/cyphera-rebalancer/internal/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	usdc   = "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"
	weth   = "0x4200000000000000000000000000000000000006"
	router = "0x3fC91A3afd70395Cd496C647d5a6CC9D4B2b7FAD"
	opAcct = "0x1111111111111111111111111111111111111111"
)

type stubSecrets struct {
	values map[string]string
	json   error
}

func (s stubSecrets) GetSecretString(_ context.Context, _ string, fallback string) (string, error) {
	if v, ok := s.values[fallback]; ok {
		return v, nil
	}
	return "", errors.New("not found")
}

func (s stubSecrets) GetOptionalSecretString(ctx context.Context, arn string, fallback string) string {
	v, _ := s.GetSecretString(ctx, arn, fallback)
	return v
}

func (s stubSecrets) GetSecretJSON(_ context.Context, _ string, _ interface{}) error {
	return s.json
}

func setBaseEnv(t *testing.T) {
	t.Setenv("OPERATOR_ACCOUNT_ADDRESS", opAcct)
	t.Setenv("FUNDING_TOKEN_ADDRESS", usdc)
	t.Setenv("TARGET_TOKENS", "WETH:"+weth+":18")
	t.Setenv("ALLOWED_ROUTERS", router)
}

func TestLoadEngine_Defaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := config.LoadEngine()
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.BatchSize)
	assert.Equal(t, 2*time.Second, cfg.BatchDelay)
	assert.Equal(t, 3*time.Minute, cfg.QuoteValidity)
	assert.Equal(t, 3*time.Minute, cfg.ConfirmTimeout)
	assert.Equal(t, 3, cfg.RetryMaxAttempts)
	assert.Equal(t, 10, cfg.MaxEndOfRunRetries)
	assert.Equal(t, int64(20), cfg.FeeBps)
	assert.True(t, cfg.MinAccountValueUSD.Equal(decimal.NewFromInt(10)))
	assert.True(t, cfg.MinTradeUSD.Equal(decimal.NewFromInt(1)))
	assert.Equal(t, "USDC", cfg.FundingToken.Symbol)
	assert.Equal(t, int32(6), cfg.FundingToken.Decimals)
	assert.Equal(t, router, cfg.ExecutionRouter())

	target, ok := cfg.TargetToken("")
	require.True(t, ok)
	assert.Equal(t, "WETH", target.Symbol)

	target, ok = cfg.TargetToken("0x4200000000000000000000000000000000000006")
	require.True(t, ok)
	assert.Equal(t, int32(18), target.Decimals)

	_, ok = cfg.TargetToken("0x9999999999999999999999999999999999999999")
	assert.False(t, ok)
}

func TestLoadEngine_Overrides(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("BATCH_SIZE", "25")
	t.Setenv("BATCH_DELAY", "1500")
	t.Setenv("QUOTE_VALIDITY", "90s")
	t.Setenv("MIN_OPERATOR_BALANCE_WEI", "1000000000000000")

	cfg, err := config.LoadEngine()
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.BatchSize)
	assert.Equal(t, 1500*time.Millisecond, cfg.BatchDelay)
	assert.Equal(t, 90*time.Second, cfg.QuoteValidity)
	assert.Equal(t, "1000000000000000", cfg.MinOperatorBalanceWei.String())
}

func TestLoadEngine_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"bad batch size", "BATCH_SIZE", "ten"},
		{"zero batch size", "BATCH_SIZE", "0"},
		{"fee too high", "FEE_BPS", "10000"},
		{"bad duration", "BATCH_DELAY", "soon"},
		{"bad token list", "TARGET_TOKENS", "WETH"},
		{"bad router", "ALLOWED_ROUTERS", "0x12"},
		{"missing operator", "OPERATOR_ACCOUNT_ADDRESS", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setBaseEnv(t)
			t.Setenv(tt.key, tt.val)
			_, err := config.LoadEngine()
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("RPC_URL", "http://localhost:8545")
	t.Setenv("RELAY_URL", "http://localhost:4337")
	t.Setenv("SUMMARY_EMAIL_TO", "ops@example.com, risk@example.com")

	secrets := stubSecrets{values: map[string]string{
		"DATABASE_URL":            "postgres://localhost/rebalancer",
		"OPERATOR_PRIVATE_KEY":    "0x4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318",
		"UNISWAP_API_KEY":         "uni-key",
		"COIN_MARKET_CAP_API_KEY": "cmc-key",
	}}

	cfg, err := config.Load(context.Background(), "local", secrets)
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/rebalancer", cfg.DatabaseURL)
	assert.Equal(t, []string{"ops@example.com", "risk@example.com"}, cfg.SummaryEmailTo)
	assert.Equal(t, float64(5), cfg.RouterRPS)
	assert.Empty(t, cfg.ResendAPIKey)
	assert.Equal(t, config.DefaultSentimentURL, cfg.SentimentURL)

	delete(secrets.values, "OPERATOR_PRIVATE_KEY")
	_, err = config.Load(context.Background(), "local", secrets)
	assert.Error(t, err)
}

func TestLoadDatabaseURL_Deployed(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal:5432")
	t.Setenv("DB_NAME", "rebalancer")

	_, err := config.LoadDatabaseURL(context.Background(), "prod", stubSecrets{json: errors.New("no secret")})
	assert.Error(t, err)

	t.Setenv("DB_HOST", "")
	_, err = config.LoadDatabaseURL(context.Background(), "prod", stubSecrets{})
	assert.Error(t, err)
}
