package config

import (
	"context"
	"fmt"
	"math/big"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cyphera/cyphera-rebalancer/internal/constants"
	"github.com/cyphera/cyphera-rebalancer/internal/helpers"
	"github.com/cyphera/cyphera-rebalancer/internal/types/business"
	"github.com/shopspring/decimal"
)

// SecretSource resolves secrets by ARN env var with a plain env fallback.
type SecretSource interface {
	GetSecretString(ctx context.Context, secretArnEnvVar string, fallbackEnvVar string) (string, error)
	GetOptionalSecretString(ctx context.Context, secretArnEnvVar string, fallbackEnvVar string) string
	GetSecretJSON(ctx context.Context, secretArnEnvVar string, target interface{}) error
}

// EngineConfig holds the tunables of the execution engine.
type EngineConfig struct {
	ChainID int64

	BatchSize      int
	BatchDelay     time.Duration
	QuoteValidity  time.Duration
	ConfirmTimeout time.Duration
	SubmitTimeout  time.Duration

	RetryMaxAttempts   int
	RetryBaseDelay     time.Duration
	RetryMaxDelay      time.Duration
	MaxEndOfRunRetries int

	FeeBps             int64
	FeeRecipient       string
	MinAccountValueUSD decimal.Decimal
	MinTradeUSD        decimal.Decimal
	PriceCacheTTL      time.Duration

	OperatorAccount       string
	MinOperatorBalanceWei *big.Int

	FundingToken business.TokenInfo
	TargetTokens []business.TokenInfo

	Permit2Address           string
	DelegationManagerAddress string
	TimestampEnforcer        string
	LimitedCallsEnforcer     string
	AllowedRouters           []string
}

// DefaultTargetToken is the first configured target asset.
func (c EngineConfig) DefaultTargetToken() business.TokenInfo {
	if len(c.TargetTokens) == 0 {
		return business.TokenInfo{}
	}
	return c.TargetTokens[0]
}

// TargetToken resolves a record's preferred target asset, falling back to the default.
func (c EngineConfig) TargetToken(address string) (business.TokenInfo, bool) {
	if address == "" {
		return c.DefaultTargetToken(), len(c.TargetTokens) > 0
	}
	for _, t := range c.TargetTokens {
		if helpers.SameAddress(t.Address, address) {
			return t, true
		}
	}
	return business.TokenInfo{}, false
}

// ExecutionRouter is the router Permit2 allowances are granted to.
func (c EngineConfig) ExecutionRouter() string {
	if len(c.AllowedRouters) == 0 {
		return ""
	}
	return c.AllowedRouters[0]
}

// Config is the full process configuration.
type Config struct {
	Stage  string
	Engine EngineConfig

	DatabaseURL        string
	RPCURL             string
	RelayURL           string
	EntryPointAddress  string
	SentimentURL       string
	UniswapBaseURL     string
	UniswapAPIKey      string
	CoinMarketCapKey   string
	OperatorPrivateKey string

	RouterRPS float64
	RelayRPS  float64

	ResendAPIKey     string
	SummaryEmailFrom string
	SummaryEmailTo   []string

	SQSQueueURL string
	SQSEndpoint string
	AWSRegion   string
}

// Default tunables.
const (
	DefaultBatchSize          = 10
	DefaultBatchDelay         = 2 * time.Second
	DefaultQuoteValidity      = 3 * time.Minute
	DefaultConfirmTimeout     = 3 * time.Minute
	DefaultSubmitTimeout      = 30 * time.Second
	DefaultRetryMaxAttempts   = 3
	DefaultRetryBaseDelay     = time.Second
	DefaultRetryMaxDelay      = 10 * time.Second
	DefaultMaxEndOfRunRetries = 10
	DefaultFeeBps             = 20
	DefaultPriceCacheTTL      = 5 * time.Minute
	DefaultRouterRPS          = 5
	DefaultRelayRPS           = 10
	DefaultChainID            = 8453
	DefaultSentimentURL       = "https://api.alternative.me/fng/?limit=1"
	DefaultUniswapBaseURL     = "https://trade-api.gateway.uniswap.org/v1"
)

// LoadEngine reads engine tunables from the environment.
func LoadEngine() (EngineConfig, error) {
	cfg := EngineConfig{}

	p := &parser{}
	cfg.ChainID = p.intVar("CHAIN_ID", DefaultChainID)
	cfg.BatchSize = int(p.intVar("BATCH_SIZE", DefaultBatchSize))
	cfg.BatchDelay = p.durationVar("BATCH_DELAY", DefaultBatchDelay)
	cfg.QuoteValidity = p.durationVar("QUOTE_VALIDITY", DefaultQuoteValidity)
	cfg.ConfirmTimeout = p.durationVar("CONFIRM_TIMEOUT", DefaultConfirmTimeout)
	cfg.SubmitTimeout = p.durationVar("SUBMIT_TIMEOUT", DefaultSubmitTimeout)
	cfg.RetryMaxAttempts = int(p.intVar("RETRY_MAX_ATTEMPTS", DefaultRetryMaxAttempts))
	cfg.RetryBaseDelay = p.durationVar("RETRY_BASE_DELAY", DefaultRetryBaseDelay)
	cfg.RetryMaxDelay = p.durationVar("RETRY_MAX_DELAY", DefaultRetryMaxDelay)
	cfg.MaxEndOfRunRetries = int(p.intVar("MAX_END_OF_RUN_RETRIES", DefaultMaxEndOfRunRetries))
	cfg.FeeBps = p.intVar("FEE_BPS", DefaultFeeBps)
	cfg.FeeRecipient = os.Getenv("FEE_RECIPIENT_ADDRESS")
	cfg.MinAccountValueUSD = p.decimalVar("MIN_ACCOUNT_VALUE_USD", decimal.NewFromInt(10))
	cfg.MinTradeUSD = p.decimalVar("MIN_TRADE_USD", decimal.NewFromInt(1))
	cfg.PriceCacheTTL = p.durationVar("PRICE_CACHE_TTL", DefaultPriceCacheTTL)
	cfg.OperatorAccount = os.Getenv("OPERATOR_ACCOUNT_ADDRESS")
	cfg.MinOperatorBalanceWei = p.bigIntVar("MIN_OPERATOR_BALANCE_WEI")

	cfg.FundingToken = business.TokenInfo{
		Address:  os.Getenv("FUNDING_TOKEN_ADDRESS"),
		Symbol:   getEnvWithDefault("FUNDING_TOKEN_SYMBOL", "USDC"),
		Decimals: int32(p.intVar("FUNDING_TOKEN_DECIMALS", 6)),
	}
	cfg.TargetTokens = p.tokensVar("TARGET_TOKENS")

	cfg.Permit2Address = getEnvWithDefault("PERMIT2_ADDRESS", constants.DefaultPermit2Address)
	cfg.DelegationManagerAddress = getEnvWithDefault("DELEGATION_MANAGER_ADDRESS", constants.DefaultDelegationManagerAddress)
	cfg.TimestampEnforcer = getEnvWithDefault("TIMESTAMP_ENFORCER_ADDRESS", constants.DefaultTimestampEnforcer)
	cfg.LimitedCallsEnforcer = getEnvWithDefault("LIMITED_CALLS_ENFORCER_ADDRESS", constants.DefaultLimitedCallsEnforcer)
	cfg.AllowedRouters = splitList(os.Getenv("ALLOWED_ROUTERS"))

	if p.err != nil {
		return cfg, p.err
	}
	return cfg, cfg.Validate()
}

// Validate checks the engine configuration for values the engine cannot run with.
func (c EngineConfig) Validate() error {
	if c.BatchSize <= 0 {
		return fmt.Errorf("BATCH_SIZE must be positive, got %d", c.BatchSize)
	}
	if c.RetryMaxAttempts <= 0 {
		return fmt.Errorf("RETRY_MAX_ATTEMPTS must be positive, got %d", c.RetryMaxAttempts)
	}
	if c.FeeBps < 0 || c.FeeBps >= 10000 {
		return fmt.Errorf("FEE_BPS must be in [0, 10000), got %d", c.FeeBps)
	}
	if c.QuoteValidity <= 0 {
		return fmt.Errorf("QUOTE_VALIDITY must be positive")
	}
	if !helpers.IsAddressValid(c.OperatorAccount) {
		return fmt.Errorf("OPERATOR_ACCOUNT_ADDRESS is missing or invalid")
	}
	if !helpers.IsAddressValid(c.FundingToken.Address) {
		return fmt.Errorf("FUNDING_TOKEN_ADDRESS is missing or invalid")
	}
	if len(c.TargetTokens) == 0 {
		return fmt.Errorf("TARGET_TOKENS must name at least one token")
	}
	if len(c.AllowedRouters) == 0 {
		return fmt.Errorf("ALLOWED_ROUTERS must name at least one router")
	}
	for _, addr := range append([]string{c.Permit2Address, c.DelegationManagerAddress}, c.AllowedRouters...) {
		if !helpers.IsAddressValid(addr) {
			return fmt.Errorf("invalid contract address %q", addr)
		}
	}
	if c.FeeRecipient != "" && !helpers.IsAddressValid(c.FeeRecipient) {
		return fmt.Errorf("FEE_RECIPIENT_ADDRESS is invalid")
	}
	return nil
}

// Load reads the full configuration. Secrets come from Secrets Manager with env fallback.
func Load(ctx context.Context, stage string, secrets SecretSource) (*Config, error) {
	engine, err := LoadEngine()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Stage:             stage,
		Engine:            engine,
		RPCURL:            os.Getenv("RPC_URL"),
		RelayURL:          os.Getenv("RELAY_URL"),
		EntryPointAddress: getEnvWithDefault("ENTRY_POINT_ADDRESS", constants.DefaultEntryPointAddress),
		SentimentURL:      getEnvWithDefault("SENTIMENT_URL", DefaultSentimentURL),
		UniswapBaseURL:    getEnvWithDefault("UNISWAP_API_URL", DefaultUniswapBaseURL),
		SummaryEmailFrom:  os.Getenv("SUMMARY_EMAIL_FROM"),
		SummaryEmailTo:    splitList(os.Getenv("SUMMARY_EMAIL_TO")),
		SQSQueueURL:       os.Getenv("SUMMARY_QUEUE_URL"),
		SQSEndpoint:       os.Getenv("SQS_ENDPOINT"),
		AWSRegion:         os.Getenv("AWS_REGION"),
	}

	p := &parser{}
	cfg.RouterRPS = p.floatVar("ROUTER_RPS", DefaultRouterRPS)
	cfg.RelayRPS = p.floatVar("RELAY_RPS", DefaultRelayRPS)
	if p.err != nil {
		return nil, p.err
	}

	if cfg.RPCURL == "" || cfg.RelayURL == "" {
		return nil, fmt.Errorf("RPC_URL and RELAY_URL are required")
	}
	if !helpers.IsAddressValid(cfg.EntryPointAddress) {
		return nil, fmt.Errorf("ENTRY_POINT_ADDRESS is invalid")
	}

	if cfg.DatabaseURL, err = LoadDatabaseURL(ctx, stage, secrets); err != nil {
		return nil, err
	}
	if cfg.OperatorPrivateKey, err = secrets.GetSecretString(ctx, "OPERATOR_PRIVATE_KEY_ARN", "OPERATOR_PRIVATE_KEY"); err != nil {
		return nil, fmt.Errorf("failed to get operator key: %w", err)
	}
	if !helpers.IsPrivateKeyValid(cfg.OperatorPrivateKey) {
		return nil, fmt.Errorf("operator private key is not a 0x-prefixed 32 byte hex string")
	}
	if cfg.UniswapAPIKey, err = secrets.GetSecretString(ctx, "UNISWAP_API_KEY_ARN", "UNISWAP_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to get routing api key: %w", err)
	}
	if cfg.CoinMarketCapKey, err = secrets.GetSecretString(ctx, "COIN_MARKET_CAP_API_KEY_ARN", "COIN_MARKET_CAP_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to get coinmarketcap api key: %w", err)
	}
	cfg.ResendAPIKey = secrets.GetOptionalSecretString(ctx, "RESEND_API_KEY_ARN", "RESEND_API_KEY")

	return cfg, nil
}

// LoadDatabaseURL builds the DSN: RDS credentials in deployed stages, DATABASE_URL locally.
func LoadDatabaseURL(ctx context.Context, stage string, secrets SecretSource) (string, error) {
	if stage == constants.StageProd || stage == constants.StageDev {
		dbEndpoint := os.Getenv("DB_HOST")
		dbName := os.Getenv("DB_NAME")
		dbSSLMode := getEnvWithDefault("DB_SSLMODE", "require")
		if dbEndpoint == "" || dbName == "" {
			return "", fmt.Errorf("missing required DB environment variables for deployed environment (DB_HOST, DB_NAME, RDS_SECRET_ARN)")
		}

		var secretData struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := secrets.GetSecretJSON(ctx, "RDS_SECRET_ARN", &secretData); err != nil {
			return "", fmt.Errorf("failed to retrieve or parse RDS secret: %w", err)
		}
		if secretData.Username == "" || secretData.Password == "" {
			return "", fmt.Errorf("username or password not found in RDS secret data")
		}

		return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=%s",
			url.QueryEscape(secretData.Username), url.QueryEscape(secretData.Password),
			dbEndpoint, dbName, dbSSLMode), nil
	}

	dsn, err := secrets.GetSecretString(ctx, "DATABASE_URL_ARN", "DATABASE_URL")
	if err != nil {
		return "", fmt.Errorf("failed to get DATABASE_URL: %w", err)
	}
	return dsn, nil
}

type parser struct {
	err error
}

func (p *parser) fail(key, value string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
}

func (p *parser) intVar(key string, def int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		p.fail(key, v, err)
		return def
	}
	return n
}

func (p *parser) floatVar(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.fail(key, v, err)
		return def
	}
	return f
}

// durationVar accepts Go durations ("2s") or bare milliseconds ("2000").
func (p *parser) durationVar(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.fail(key, v, err)
		return def
	}
	return d
}

func (p *parser) decimalVar(key string, def decimal.Decimal) decimal.Decimal {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		p.fail(key, v, err)
		return def
	}
	return d
}

func (p *parser) bigIntVar(key string) *big.Int {
	v := os.Getenv(key)
	if v == "" {
		return new(big.Int)
	}
	n, ok := new(big.Int).SetString(v, 10)
	if !ok {
		p.fail(key, v, fmt.Errorf("not a base-10 integer"))
		return new(big.Int)
	}
	return n
}

// tokensVar parses "SYMBOL:ADDRESS:DECIMALS,..." entries.
func (p *parser) tokensVar(key string) []business.TokenInfo {
	var out []business.TokenInfo
	for _, entry := range splitList(os.Getenv(key)) {
		parts := strings.Split(entry, ":")
		if len(parts) != 3 {
			p.fail(key, entry, fmt.Errorf("expected SYMBOL:ADDRESS:DECIMALS"))
			continue
		}
		decimals, err := strconv.ParseInt(parts[2], 10, 32)
		if err != nil {
			p.fail(key, entry, err)
			continue
		}
		if !helpers.IsAddressValid(parts[1]) {
			p.fail(key, entry, fmt.Errorf("invalid token address"))
			continue
		}
		out = append(out, business.TokenInfo{Symbol: parts[0], Address: parts[1], Decimals: int32(decimals)})
	}
	return out
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
