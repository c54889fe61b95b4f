package uniswap

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"

	httpClient "github.com/cyphera/cyphera-rebalancer/internal/client/http"
	"github.com/cyphera/cyphera-rebalancer/internal/interfaces"
	"github.com/cyphera/cyphera-rebalancer/internal/types/business"
)

// Client talks to the Uniswap Trading API.
type Client struct {
	httpClient *httpClient.HTTPClient
	logger     *zap.Logger
}

// NewClient builds a rate-limited Trading API client. Retries are left to the caller.
func NewClient(baseURL, apiKey string, rps float64, logger *zap.Logger) *Client {
	return &Client{
		httpClient: httpClient.NewHTTPClient(
			httpClient.WithBaseURL(baseURL),
			httpClient.WithName("uniswap"),
			httpClient.WithDefaultHeader("x-api-key", apiKey),
			httpClient.WithTimeout(20*time.Second),
			httpClient.WithRetryConfig(nil),
			httpClient.WithRateLimit(rps, 1),
			httpClient.WithMiddleware(httpClient.LoggingMiddleware(logger)),
		),
		logger: logger,
	}
}

type quoteRequest struct {
	Type              string   `json:"type"`
	Amount            string   `json:"amount"`
	TokenInChainID    int64    `json:"tokenInChainId"`
	TokenOutChainID   int64    `json:"tokenOutChainId"`
	TokenIn           string   `json:"tokenIn"`
	TokenOut          string   `json:"tokenOut"`
	Swapper           string   `json:"swapper"`
	RoutingPreference string   `json:"routingPreference"`
	Protocols         []string `json:"protocols"`
	SlippageTolerance float64  `json:"slippageTolerance,omitempty"`
}

type quoteResponse struct {
	RequestID string          `json:"requestId"`
	Routing   string          `json:"routing"`
	Quote     json.RawMessage `json:"quote"`
}

type classicQuote struct {
	Input struct {
		Amount string `json:"amount"`
	} `json:"input"`
	Output struct {
		Amount string `json:"amount"`
	} `json:"output"`
}

type swapRequest struct {
	Quote               json.RawMessage `json:"quote"`
	SimulateTransaction bool            `json:"simulateTransaction"`
}

type swapResponse struct {
	RequestID string `json:"requestId"`
	Swap      struct {
		To    string `json:"to"`
		From  string `json:"from"`
		Data  string `json:"data"`
		Value string `json:"value"`
	} `json:"swap"`
}

// GetQuote requests an exact-input classic quote.
func (c *Client) GetQuote(ctx context.Context, params interfaces.QuoteParams) (*interfaces.RoutedQuote, error) {
	req := quoteRequest{
		Type:              "EXACT_INPUT",
		Amount:            params.Amount.String(),
		TokenInChainID:    params.ChainID,
		TokenOutChainID:   params.ChainID,
		TokenIn:           params.TokenIn,
		TokenOut:          params.TokenOut,
		Swapper:           params.Swapper,
		RoutingPreference: "CLASSIC",
		Protocols:         []string{"V2", "V3", "V4"},
	}
	if params.SlippageBps > 0 {
		// the API takes a percentage
		req.SlippageTolerance = float64(params.SlippageBps) / 100
	}

	var resp quoteResponse
	if err := c.httpClient.PostJSON(ctx, "/quote", req, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch quote: %w", err)
	}
	if len(resp.Quote) == 0 {
		return nil, business.NewRejected("quote response has no quote")
	}

	var parsed classicQuote
	if err := json.Unmarshal(resp.Quote, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse quote: %w", err)
	}

	amountOut, err := parseAmount(parsed.Output.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid quote output amount: %w", err)
	}
	amountIn, err := parseAmount(parsed.Input.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid quote input amount: %w", err)
	}

	c.logger.Debug("Fetched quote",
		zap.String("request_id", resp.RequestID),
		zap.String("swapper", params.Swapper),
		zap.String("amount_in", amountIn.String()),
		zap.String("amount_out", amountOut.String()))

	return &interfaces.RoutedQuote{
		RequestID: resp.RequestID,
		AmountIn:  amountIn,
		AmountOut: amountOut,
		Routing:   resp.Routing,
		Raw:       resp.Quote,
	}, nil
}

// BuildSwap turns a quote into calldata for the router.
func (c *Client) BuildSwap(ctx context.Context, quote *interfaces.RoutedQuote) (*interfaces.SwapCall, error) {
	var resp swapResponse
	if err := c.httpClient.PostJSON(ctx, "/swap", swapRequest{Quote: quote.Raw}, &resp); err != nil {
		return nil, fmt.Errorf("failed to build swap: %w", err)
	}

	data, err := hexutil.Decode(resp.Swap.Data)
	if err != nil || len(data) == 0 {
		return nil, business.NewRejected("swap response has no calldata")
	}

	value := new(big.Int)
	if resp.Swap.Value != "" {
		if value, err = parseAmount(resp.Swap.Value); err != nil {
			return nil, fmt.Errorf("invalid swap value: %w", err)
		}
	}

	return &interfaces.SwapCall{
		To:    resp.Swap.To,
		Data:  data,
		Value: value,
	}, nil
}

// parseAmount accepts decimal strings and 0x quantities. Zero-padded hex such as
// "0x00" is valid here; the API pads native values.
func parseAmount(s string) (*big.Int, error) {
	base, digits := 10, s
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		base, digits = 16, s[2:]
	}
	if digits == "" || strings.HasPrefix(digits, "-") || strings.HasPrefix(digits, "+") {
		return nil, business.NewRejected("invalid amount %q", s)
	}
	v, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return nil, business.NewRejected("invalid amount %q", s)
	}
	return v, nil
}
