package business

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
)

// ErrorCategory is the failure taxonomy carried on every ExecutionResult.
type ErrorCategory string

const (
	CategoryNetwork      ErrorCategory = "network"
	CategoryTimeout      ErrorCategory = "timeout"
	CategoryRateLimit    ErrorCategory = "rate_limit"
	CategoryQuoteExpired ErrorCategory = "quote_expired"
	CategoryRevert       ErrorCategory = "revert"
	CategoryUnknown      ErrorCategory = "unknown"
)

// Retryable reports whether a failure of this category may succeed if tried again.
func (c ErrorCategory) Retryable() bool {
	switch c {
	case CategoryNetwork, CategoryTimeout, CategoryRateLimit, CategoryQuoteExpired, CategoryUnknown:
		return true
	default:
		return false
	}
}

// CategorizedError is implemented by every error a collaborator adapter returns on purpose.
type CategorizedError interface {
	error
	Category() ErrorCategory
}

// NetworkError is a transport failure: connection refused, reset, 5xx.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error           { return e.Err }
func (e *NetworkError) Category() ErrorCategory { return CategoryNetwork }

// TimeoutError is a call that did not answer in time.
type TimeoutError struct {
	Op  string
	Err error
}

func (e *TimeoutError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: timed out", e.Op)
	}
	return fmt.Sprintf("%s: timed out: %v", e.Op, e.Err)
}

func (e *TimeoutError) Unwrap() error           { return e.Err }
func (e *TimeoutError) Category() ErrorCategory { return CategoryTimeout }

// RateLimitError is a 429 or equivalent. RetryAfter is zero when the provider gave no hint.
type RateLimitError struct {
	Op         string
	RetryAfter time.Duration
	Err        error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s: rate limited: %v", e.Op, e.Err)
}

func (e *RateLimitError) Unwrap() error           { return e.Err }
func (e *RateLimitError) Category() ErrorCategory { return CategoryRateLimit }

// QuoteExpiredError is raised when a quote is too old to be submitted.
type QuoteExpiredError struct {
	Age      time.Duration
	Validity time.Duration
}

func (e *QuoteExpiredError) Error() string {
	return fmt.Sprintf("quote expired: age %s exceeds validity %s", e.Age.Round(time.Millisecond), e.Validity)
}

func (e *QuoteExpiredError) Category() ErrorCategory { return CategoryQuoteExpired }

// RejectedError is a deterministic refusal: on-chain revert, insufficient balance,
// caveat violation, disallowed router. Trying again will fail the same way.
type RejectedError struct {
	Reason string
	Err    error
}

func (e *RejectedError) Error() string {
	if e.Err == nil {
		return "rejected: " + e.Reason
	}
	return fmt.Sprintf("rejected: %s: %v", e.Reason, e.Err)
}

func (e *RejectedError) Unwrap() error           { return e.Err }
func (e *RejectedError) Category() ErrorCategory { return CategoryRevert }

// NewRejected builds a RejectedError without an underlying cause.
func NewRejected(format string, args ...interface{}) error {
	return &RejectedError{Reason: fmt.Sprintf(format, args...)}
}

// Stage names the step of an account's pipeline a failure happened in.
type Stage string

const (
	StageDelegation    Stage = "delegation"
	StageBalance       Stage = "balance"
	StageEligibility   Stage = "eligibility"
	StageDeploy        Stage = "deploy"
	StageApproval      Stage = "approval"
	StageQuoteFetch    Stage = "quote_fetch"
	StageQuoteValidate Stage = "quote_validate"
	StageBuild         Stage = "build"
	StageSubmit        Stage = "submit"
	StageConfirm       Stage = "confirm"
	StageDone          Stage = "done"
)

// InSwapPipeline reports whether the stage belongs to quote-to-confirm processing.
func (s Stage) InSwapPipeline() bool {
	switch s {
	case StageQuoteFetch, StageQuoteValidate, StageBuild, StageSubmit, StageConfirm:
		return true
	default:
		return false
	}
}

// StageError tags a failure with the pipeline stage it happened in.
type StageError struct {
	Stage Stage
	cause error
}

// NewStageError wraps err with stage. A nil err yields nil.
func NewStageError(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Stage: stage, cause: err}
}

func (e *StageError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Stage, e.cause.Error())
}

// Cause lets errors.Cause reach the collaborator error underneath.
func (e *StageError) Cause() error  { return e.cause }
func (e *StageError) Unwrap() error { return e.cause }

// StageOf returns the outermost stage recorded on err, if any.
func StageOf(err error) (Stage, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return "", false
}
