package coinmarketcap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	httpClient "github.com/cyphera/cyphera-rebalancer/internal/client/http"
	"github.com/cyphera/cyphera-rebalancer/internal/logger"
	"github.com/cyphera/cyphera-rebalancer/internal/types/business"
)

const (
	DefaultBaseURL = "https://pro-api.coinmarketcap.com"
	defaultTimeout = 10 * time.Second
)

// Client manages communication with the CoinMarketCap API.
type Client struct {
	apiKey     string
	httpClient *httpClient.HTTPClient
}

// NewClient creates a new CoinMarketCap API client.
func NewClient(apiKey string, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiKey: apiKey,
		httpClient: httpClient.NewHTTPClient(
			httpClient.WithBaseURL(baseURL),
			httpClient.WithName("coinmarketcap"),
			httpClient.WithTimeout(defaultTimeout),
			httpClient.WithMiddleware(httpClient.LoggingMiddleware(logger.Log)),
		),
	}
}

// --- CMC API Response Structs ---

type CmcQuote struct {
	Price       decimal.Decimal `json:"price"`
	LastUpdated string          `json:"last_updated"`
}

type CmcQuoteMap map[string]CmcQuote // Keyed by fiat symbol (e.g., "USD")

type CmcTokenData struct {
	ID     int         `json:"id"`
	Name   string      `json:"name"`
	Symbol string      `json:"symbol"`
	Quote  CmcQuoteMap `json:"quote"`
}

// V2 uses an array even for a single symbol query
type CmcResponseData map[string][]CmcTokenData // Keyed by token symbol (e.g., "BTC")

type CmcStatus struct {
	Timestamp    string `json:"timestamp"`
	ErrorCode    int    `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

type CmcAPIResponse struct {
	Status CmcStatus       `json:"status"`
	Data   CmcResponseData `json:"data"`
}

// GetLatestQuotes fetches the latest quotes for given token symbols.
func (c *Client) GetLatestQuotes(ctx context.Context, tokenSymbols []string, convertSymbols []string) (*CmcAPIResponse, error) {
	if len(tokenSymbols) == 0 {
		return nil, fmt.Errorf("tokenSymbols cannot be empty")
	}

	requestOptions := []httpClient.RequestOption{
		httpClient.WithQueryParam("symbol", strings.ToUpper(strings.Join(tokenSymbols, ","))),
		httpClient.WithHeader("X-CMC_PRO_API_KEY", c.apiKey),
	}
	if len(convertSymbols) > 0 {
		requestOptions = append(requestOptions, httpClient.WithQueryParam("convert", strings.ToUpper(strings.Join(convertSymbols, ","))))
	}

	var apiResponse CmcAPIResponse
	if err := c.httpClient.GetJSON(ctx, "/v2/cryptocurrency/quotes/latest", &apiResponse, requestOptions...); err != nil {
		logger.Error("CoinMarketCap API request failed", zap.Error(err))
		return nil, fmt.Errorf("failed to get latest quotes from CoinMarketCap: %w", err)
	}

	// Check for error code within the successful (200 OK) response status
	if apiResponse.Status.ErrorCode != 0 {
		return nil, business.NewRejected("coinmarketcap error %d: %s", apiResponse.Status.ErrorCode, apiResponse.Status.ErrorMessage)
	}

	return &apiResponse, nil
}

// GetUSDPrice returns the latest USD price of symbol.
func (c *Client) GetUSDPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	resp, err := c.GetLatestQuotes(ctx, []string{symbol}, []string{"USD"})
	if err != nil {
		return decimal.Zero, err
	}

	tokens := resp.Data[strings.ToUpper(symbol)]
	if len(tokens) == 0 {
		return decimal.Zero, business.NewRejected("no coinmarketcap quote for %s", symbol)
	}
	quote, ok := tokens[0].Quote["USD"]
	if !ok || !quote.Price.IsPositive() {
		return decimal.Zero, business.NewRejected("no USD price for %s", symbol)
	}
	return quote.Price, nil
}
