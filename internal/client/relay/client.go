package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/cyphera/cyphera-rebalancer/internal/client/transport"
	"github.com/cyphera/cyphera-rebalancer/internal/types/business"
)

const defaultPollInterval = 2 * time.Second

// Client submits operator operations to an ERC-4337 bundler that also prepares and
// sponsors them. The relay fills gas, paymaster and the nonce for the given key; the
// engine only signs the resulting hash.
type Client struct {
	rpc          *rpc.Client
	sender       string
	entryPoint   string
	limiter      *rate.Limiter
	pollInterval time.Duration
	logger       *zap.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithPollInterval changes how often receipts are polled.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) {
		c.pollInterval = d
	}
}

// WithRateLimit caps relay calls at rps. rps <= 0 disables it.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// Dial connects to the relay at url.
func Dial(ctx context.Context, url, sender, entryPoint string, logger *zap.Logger, opts ...Option) (*Client, error) {
	client, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to relay: %w", err)
	}
	return NewClient(client, sender, entryPoint, logger, opts...), nil
}

// NewClient wraps an existing rpc client.
func NewClient(client *rpc.Client, sender, entryPoint string, logger *zap.Logger, opts ...Option) *Client {
	c := &Client{
		rpc:          client,
		sender:       sender,
		entryPoint:   entryPoint,
		pollInterval: defaultPollInterval,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type call struct {
	To    string        `json:"to"`
	Data  hexutil.Bytes `json:"data"`
	Value *hexutil.Big  `json:"value"`
}

type prepareRequest struct {
	Sender     string       `json:"sender"`
	EntryPoint string       `json:"entryPoint"`
	NonceKey   *hexutil.Big `json:"nonceKey"`
	Calls      []call       `json:"calls"`
}

type prepareResponse struct {
	UserOperation json.RawMessage `json:"userOperation"`
	UserOpHash    string          `json:"userOpHash"`
}

type receiptResponse struct {
	UserOpHash string `json:"userOpHash"`
	Success    bool   `json:"success"`
	Reason     string `json:"reason"`
	Receipt    struct {
		TransactionHash string `json:"transactionHash"`
	} `json:"receipt"`
}

func (c *Client) invoke(ctx context.Context, op string, result interface{}, method string, args ...interface{}) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &business.TimeoutError{Op: op + " rate limiter", Err: err}
		}
	}
	if err := c.rpc.CallContext(ctx, result, method, args...); err != nil {
		return transport.Translate(op, fmt.Errorf("%s: %w", method, err))
	}
	return nil
}

// PrepareOperation asks the relay to build a sponsored operation for req.
func (c *Client) PrepareOperation(ctx context.Context, req business.OperationRequest) (*business.PreparedOperation, error) {
	value := req.Value
	if value == nil {
		value = new(big.Int)
	}
	if req.NonceKey == nil {
		return nil, fmt.Errorf("operation has no nonce key")
	}

	var resp prepareResponse
	err := c.invoke(ctx, "relay prepare", &resp, "relay_prepareOperation", prepareRequest{
		Sender:     c.sender,
		EntryPoint: c.entryPoint,
		NonceKey:   (*hexutil.Big)(req.NonceKey),
		Calls:      []call{{To: req.To, Data: req.Data, Value: (*hexutil.Big)(value)}},
	})
	if err != nil {
		return nil, err
	}
	if resp.UserOpHash == "" || len(resp.UserOperation) == 0 {
		return nil, business.NewRejected("relay returned an empty operation")
	}

	return &business.PreparedOperation{
		Hash:     resp.UserOpHash,
		Raw:      resp.UserOperation,
		NonceKey: req.NonceKey,
	}, nil
}

// SendOperation attaches signature to op and submits it. Returns the relay's tracking hash.
func (c *Client) SendOperation(ctx context.Context, op *business.PreparedOperation, signature []byte) (string, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(op.Raw, &fields); err != nil {
		return "", fmt.Errorf("prepared operation is not a JSON object: %w", err)
	}
	sig, err := json.Marshal(hexutil.Encode(signature))
	if err != nil {
		return "", err
	}
	fields["signature"] = sig

	var opHash string
	if err := c.invoke(ctx, "relay send", &opHash, "eth_sendUserOperation", fields, c.entryPoint); err != nil {
		return "", err
	}

	c.logger.Debug("Operation submitted", zap.String("op_hash", opHash), zap.String("prepared_hash", op.Hash))
	return opHash, nil
}

// WaitForReceipt polls until the operation is included or timeout elapses.
func (c *Client) WaitForReceipt(ctx context.Context, opHash string, timeout time.Duration) (*business.OperationReceipt, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		var resp *receiptResponse
		err := c.invoke(ctx, "relay receipt", &resp, "eth_getUserOperationReceipt", opHash)
		switch {
		case err == nil && resp != nil:
			return &business.OperationReceipt{
				OpHash:  opHash,
				TxHash:  resp.Receipt.TransactionHash,
				Success: resp.Success,
				Reason:  resp.Reason,
			}, nil
		case err != nil:
			c.logger.Debug("Receipt poll failed", zap.String("op_hash", opHash), zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return nil, &business.TimeoutError{Op: "relay receipt " + opHash, Err: ctx.Err()}
		case <-ticker.C:
		}
	}
}
