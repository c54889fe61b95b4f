// Package transport turns raw transport and JSON-RPC failures into the typed
// collaborator errors the engine classifies.
package transport

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/cyphera/cyphera-rebalancer/internal/types/business"
	"github.com/ethereum/go-ethereum/rpc"
)

// JSON-RPC error codes used by nodes and ERC-4337 bundlers.
const (
	codeExecutionReverted     = 3
	codeLimitExceeded         = -32005
	codeInternal              = -32603
	codeInvalidParams         = -32602
	codeUserOpRejected        = -32500
	codePaymasterRejected     = -32501
	codeBannedOpcode          = -32502
	codeOutOfTimeRange        = -32503
	codeThrottled             = -32504
	codeStakeTooLow           = -32505
	codeUnsupportedAggregator = -32506
	codeInvalidSignature      = -32507
	codeUserOpReverted        = -32521
)

// Translate maps err to a business error for operation op. Errors that are already
// categorized pass through unchanged; unknown shapes are returned as-is.
func Translate(op string, err error) error {
	if err == nil {
		return nil
	}

	var categorized business.CategorizedError
	if errors.As(err, &categorized) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &business.TimeoutError{Op: op, Err: err}
	}
	if errors.Is(err, context.Canceled) {
		return &business.TimeoutError{Op: op, Err: err}
	}

	var httpErr rpc.HTTPError
	if errors.As(err, &httpErr) {
		return FromStatus(op, httpErr.StatusCode, 0, err)
	}

	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		return fromRPCCode(op, rpcErr.ErrorCode(), err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return &business.TimeoutError{Op: op, Err: err}
		}
		return &business.NetworkError{Op: op, Err: err}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return &business.NetworkError{Op: op, Err: err}
	}

	return err
}

// FromStatus maps an HTTP status code to a business error.
func FromStatus(op string, status int, retryAfter time.Duration, err error) error {
	switch {
	case status == http.StatusTooManyRequests:
		return &business.RateLimitError{Op: op, RetryAfter: retryAfter, Err: err}
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return &business.TimeoutError{Op: op, Err: err}
	case status >= 500:
		return &business.NetworkError{Op: op, Err: err}
	case status >= 400:
		return &business.RejectedError{Reason: op + " returned " + strconv.Itoa(status), Err: err}
	default:
		return err
	}
}

func fromRPCCode(op string, code int, err error) error {
	switch code {
	case codeExecutionReverted, codeUserOpReverted, codeUserOpRejected, codePaymasterRejected,
		codeBannedOpcode, codeOutOfTimeRange, codeStakeTooLow, codeUnsupportedAggregator,
		codeInvalidSignature, codeInvalidParams:
		return &business.RejectedError{Reason: op + " rejected (code " + strconv.Itoa(code) + ")", Err: err}
	case codeLimitExceeded, codeThrottled:
		return &business.RateLimitError{Op: op, Err: err}
	case codeInternal:
		return &business.NetworkError{Op: op, Err: err}
	default:
		return err
	}
}

// RetryAfter parses a Retry-After header given in seconds.
func RetryAfter(header http.Header) time.Duration {
	v := header.Get("Retry-After")
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
