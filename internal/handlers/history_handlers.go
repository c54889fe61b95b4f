package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/cyphera/cyphera-rebalancer/internal/db"
	"github.com/cyphera/cyphera-rebalancer/internal/helpers"
)

// HistoryHandler serves the read-only run and execution history
type HistoryHandler struct {
	common *CommonServices
}

// NewHistoryHandler creates a new HistoryHandler
func NewHistoryHandler(common *CommonServices) *HistoryHandler {
	return &HistoryHandler{common: common}
}

// RunResponse represents one daily run
type RunResponse struct {
	ID             string `json:"id"`
	Object         string `json:"object"`
	RunDate        string `json:"run_date"`
	Forced         bool   `json:"forced"`
	Status         string `json:"status"`
	SentimentScore *int32 `json:"sentiment_score,omitempty"`
	Classification string `json:"classification,omitempty"`
	Action         string `json:"action,omitempty"`
	PercentageBps  *int32 `json:"percentage_bps,omitempty"`
	ProcessedCount int32  `json:"processed_count"`
	SucceededCount int32  `json:"succeeded_count"`
	FailedCount    int32  `json:"failed_count"`
	RetriedCount   int32  `json:"retried_count"`
	TotalVolumeUSD string `json:"total_volume_usd"`
	TotalFeeUSD    string `json:"total_fee_usd"`
	CreatedAt      int64  `json:"created_at"`
	CompletedAt    int64  `json:"completed_at,omitempty"`
}

// ExecutionResponse represents one account's trade attempt. Amounts are base units of the
// sold asset; outputs are base units of the bought asset.
type ExecutionResponse struct {
	ID                string `json:"id"`
	Object            string `json:"object"`
	RunID             string `json:"run_id"`
	ParentExecutionID string `json:"parent_execution_id,omitempty"`
	OwnerID           string `json:"owner_id"`
	AccountAddress    string `json:"account_address"`
	Action            string `json:"action"`
	Stage             string `json:"stage"`
	Status            string `json:"status"`
	OpHash            string `json:"op_hash,omitempty"`
	TxHash            string `json:"tx_hash,omitempty"`
	ErrorCategory     string `json:"error_category,omitempty"`
	ErrorMessage      string `json:"error_message,omitempty"`
	RetryCount        int32  `json:"retry_count"`
	SellToken         string `json:"sell_token,omitempty"`
	BuyToken          string `json:"buy_token,omitempty"`
	InputAmount       string `json:"input_amount"`
	FeeAmount         string `json:"fee_amount"`
	NetAmount         string `json:"net_amount"`
	ExpectedOutput    string `json:"expected_output,omitempty"`
	MinOutput         string `json:"min_output,omitempty"`
	VolumeUSD         string `json:"volume_usd"`
	FeeUSD            string `json:"fee_usd"`
	SentimentScore    *int32 `json:"sentiment_score,omitempty"`
	CreatedAt         int64  `json:"created_at"`
}

// ListRuns returns the most recent runs, newest first
func (h *HistoryHandler) ListRuns(c *gin.Context) {
	limit, err := helpers.ParseLimit(c)
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid limit parameter", err)
		return
	}

	runs, err := h.common.db.ListRuns(c.Request.Context(), limit)
	if err != nil {
		handleDBError(c, err, "Runs not found")
		return
	}

	out := make([]RunResponse, len(runs))
	for i, run := range runs {
		out[i] = toRunResponse(run)
	}
	sendList(c, out)
}

// GetLatestRun returns the newest run
func (h *HistoryHandler) GetLatestRun(c *gin.Context) {
	run, err := h.common.db.GetLatestRun(c.Request.Context())
	if err != nil {
		handleDBError(c, err, "No runs recorded yet")
		return
	}
	sendSuccess(c, http.StatusOK, toRunResponse(run))
}

// ListRunExecutions returns every execution recorded for a run
func (h *HistoryHandler) ListRunExecutions(c *gin.Context) {
	runID, err := uuid.Parse(c.Param("run_id"))
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid run ID format", err)
		return
	}

	executions, err := h.common.db.ListExecutionsByRun(c.Request.Context(), runID)
	if err != nil {
		handleDBError(c, err, "Run not found")
		return
	}
	sendList(c, toExecutionResponses(executions))
}

// ListOwnerExecutions returns an owner's most recent executions, newest first
func (h *HistoryHandler) ListOwnerExecutions(c *gin.Context) {
	owner := strings.TrimSpace(c.Param("owner_id"))
	if owner == "" {
		sendError(c, http.StatusBadRequest, "Owner ID is required", nil)
		return
	}

	limit, err := helpers.ParseLimit(c)
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid limit parameter", err)
		return
	}

	executions, err := h.common.db.ListExecutionsByOwner(c.Request.Context(), db.ListExecutionsByOwnerParams{
		OwnerID: owner,
		Limit:   limit,
	})
	if err != nil {
		handleDBError(c, err, "Executions not found")
		return
	}
	sendList(c, toExecutionResponses(executions))
}

func toRunResponse(run db.RebalanceRun) RunResponse {
	resp := RunResponse{
		ID:             run.ID.String(),
		Object:         "rebalance_run",
		Forced:         run.Forced,
		Status:         run.Status,
		SentimentScore: int4Ptr(run.SentimentScore),
		Classification: run.Classification.String,
		Action:         run.Action.String,
		PercentageBps:  int4Ptr(run.PercentageBps),
		ProcessedCount: run.ProcessedCount,
		SucceededCount: run.SucceededCount,
		FailedCount:    run.FailedCount,
		RetriedCount:   run.RetriedCount,
		TotalVolumeUSD: helpers.NumericToDecimal(run.TotalVolumeUsd).StringFixed(2),
		TotalFeeUSD:    helpers.NumericToDecimal(run.TotalFeeUsd).StringFixed(2),
		CreatedAt:      run.CreatedAt.Time.Unix(),
	}
	if run.RunDate.Valid {
		resp.RunDate = run.RunDate.Time.Format("2006-01-02")
	}
	if run.CompletedAt.Valid {
		resp.CompletedAt = run.CompletedAt.Time.Unix()
	}
	return resp
}

func toExecutionResponses(executions []db.RebalanceExecution) []ExecutionResponse {
	out := make([]ExecutionResponse, len(executions))
	for i, e := range executions {
		out[i] = toExecutionResponse(e)
	}
	return out
}

func toExecutionResponse(e db.RebalanceExecution) ExecutionResponse {
	status := "failed"
	if e.Success {
		status = "success"
	}

	resp := ExecutionResponse{
		ID:             e.ID.String(),
		Object:         "rebalance_execution",
		RunID:          e.RunID.String(),
		OwnerID:        e.OwnerID,
		AccountAddress: e.AccountAddress,
		Action:         e.Action,
		Stage:          e.Stage,
		Status:         status,
		OpHash:         e.OpHash.String,
		TxHash:         e.TxHash.String,
		ErrorCategory:  e.ErrorCategory.String,
		ErrorMessage:   e.ErrorMessage.String,
		RetryCount:     e.RetryCount,
		SellToken:      e.SellToken.String,
		BuyToken:       e.BuyToken.String,
		InputAmount:    numericString(e.GrossAmount),
		FeeAmount:      numericString(e.FeeAmount),
		NetAmount:      numericString(e.NetAmount),
		VolumeUSD:      helpers.NumericToDecimal(e.VolumeUsd).StringFixed(2),
		FeeUSD:         helpers.NumericToDecimal(e.FeeUsd).StringFixed(2),
		SentimentScore: int4Ptr(e.SentimentScore),
		CreatedAt:      e.CreatedAt.Time.Unix(),
	}
	if e.ParentExecutionID.Valid {
		resp.ParentExecutionID = helpers.PgToUUID(e.ParentExecutionID).String()
	}
	if e.ExpectedOutput.Valid {
		resp.ExpectedOutput = numericString(e.ExpectedOutput)
	}
	if e.MinOutput.Valid {
		resp.MinOutput = numericString(e.MinOutput)
	}
	return resp
}

func numericString(n pgtype.Numeric) string {
	return helpers.NumericToBigInt(n).String()
}

func int4Ptr(v pgtype.Int4) *int32 {
	if !v.Valid {
		return nil
	}
	return &v.Int32
}
