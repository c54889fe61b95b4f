package handlers

import (
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/cyphera/cyphera-rebalancer/internal/db"
	"github.com/cyphera/cyphera-rebalancer/internal/helpers"
	"github.com/cyphera/cyphera-rebalancer/internal/logger"
	"github.com/cyphera/cyphera-rebalancer/internal/mocks"
)

func init() {
	logger.InitLogger("test")
	gin.SetMode(gin.TestMode)
}

var historyTime = time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)

func newHistoryRouter(t *testing.T) (*gin.Engine, *mocks.MockQuerier) {
	ctrl := gomock.NewController(t)
	queries := mocks.NewMockQuerier(ctrl)
	h := NewHistoryHandler(NewCommonServices(queries))

	r := gin.New()
	r.GET("/runs", h.ListRuns)
	r.GET("/runs/latest", h.GetLatestRun)
	r.GET("/runs/:run_id/executions", h.ListRunExecutions)
	r.GET("/owners/:owner_id/executions", h.ListOwnerExecutions)
	return r, queries
}

func sampleRun() db.RebalanceRun {
	return db.RebalanceRun{
		ID:             uuid.MustParse("7f0c1c1e-9d2a-4a43-9d8e-0b7a6f3b5e01"),
		RunDate:        helpers.DateOf(historyTime),
		Status:         "completed",
		SentimentScore: helpers.Int32ToNullableInt4(15),
		Classification: helpers.StringToNullableText("extreme_fear"),
		Action:         helpers.StringToNullableText("accumulate"),
		PercentageBps:  helpers.Int32ToNullableInt4(500),
		ProcessedCount: 3,
		SucceededCount: 2,
		FailedCount:    1,
		TotalVolumeUsd: helpers.DecimalToNumeric(decimal.RequireFromString("100.5")),
		TotalFeeUsd:    helpers.DecimalToNumeric(decimal.RequireFromString("0.201")),
		CreatedAt:      helpers.TimeToNullableTimestamptz(historyTime),
		CompletedAt:    helpers.TimeToNullableTimestamptz(historyTime.Add(time.Minute)),
	}
}

func sampleExecution(runID uuid.UUID, success bool) db.RebalanceExecution {
	e := db.RebalanceExecution{
		ID:             uuid.New(),
		RunID:          runID,
		OwnerID:        "owner-1",
		AccountAddress: "0x2222222222222222222222222222222222222222",
		Action:         "accumulate",
		Stage:          "done",
		Success:        success,
		GrossAmount:    helpers.BigIntToNumeric(big.NewInt(50_000_000)),
		FeeAmount:      helpers.BigIntToNumeric(big.NewInt(100_000)),
		NetAmount:      helpers.BigIntToNumeric(big.NewInt(49_900_000)),
		VolumeUsd:      helpers.DecimalToNumeric(decimal.NewFromInt(50)),
		FeeUsd:         helpers.DecimalToNumeric(decimal.RequireFromString("0.1")),
		SentimentScore: helpers.Int32ToNullableInt4(15),
		CreatedAt:      helpers.TimeToNullableTimestamptz(historyTime),
	}
	if success {
		e.TxHash = helpers.StringToNullableText("0xtx")
		e.ExpectedOutput = helpers.BigIntToNumeric(big.NewInt(20_000_000_000_000_000))
	} else {
		e.Stage = "quote_fetch"
		e.ErrorCategory = helpers.StringToNullableText("network")
		e.ErrorMessage = helpers.StringToNullableText("[quote_fetch] quote: network error")
	}
	return e
}

func decodeList[T any](t *testing.T, w *httptest.ResponseRecorder) []T {
	var body struct {
		Object string `json:"object"`
		Data   []T    `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "list", body.Object)
	return body.Data
}

func TestHistoryHandler_ListRuns(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		setupMocks func(q *mocks.MockQuerier)
		wantStatus int
		wantLen    int
	}{
		{
			name:  "default limit",
			query: "",
			setupMocks: func(q *mocks.MockQuerier) {
				q.EXPECT().ListRuns(gomock.Any(), int32(10)).Return([]db.RebalanceRun{sampleRun()}, nil).Times(1)
			},
			wantStatus: http.StatusOK,
			wantLen:    1,
		},
		{
			name:  "limit is capped",
			query: "?limit=500",
			setupMocks: func(q *mocks.MockQuerier) {
				q.EXPECT().ListRuns(gomock.Any(), int32(100)).Return([]db.RebalanceRun{}, nil).Times(1)
			},
			wantStatus: http.StatusOK,
			wantLen:    0,
		},
		{
			name:       "bad limit",
			query:      "?limit=ten",
			setupMocks: func(q *mocks.MockQuerier) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:  "database failure",
			query: "",
			setupMocks: func(q *mocks.MockQuerier) {
				q.EXPECT().ListRuns(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection refused")).Times(1)
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, queries := newHistoryRouter(t)
			tt.setupMocks(queries)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/runs"+tt.query, nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Len(t, decodeList[RunResponse](t, w), tt.wantLen)
			}
		})
	}
}

func TestHistoryHandler_GetLatestRun(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		r, queries := newHistoryRouter(t)
		queries.EXPECT().GetLatestRun(gomock.Any()).Return(sampleRun(), nil).Times(1)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/runs/latest", nil))
		require.Equal(t, http.StatusOK, w.Code)

		var run RunResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &run))
		assert.Equal(t, "rebalance_run", run.Object)
		assert.Equal(t, "2026-03-02", run.RunDate)
		assert.Equal(t, "accumulate", run.Action)
		require.NotNil(t, run.SentimentScore)
		assert.Equal(t, int32(15), *run.SentimentScore)
		assert.Equal(t, "100.50", run.TotalVolumeUSD)
		assert.Equal(t, "0.20", run.TotalFeeUSD)
		assert.Equal(t, historyTime.Add(time.Minute).Unix(), run.CompletedAt)
	})

	t.Run("none yet", func(t *testing.T) {
		r, queries := newHistoryRouter(t)
		queries.EXPECT().GetLatestRun(gomock.Any()).Return(db.RebalanceRun{}, pgx.ErrNoRows).Times(1)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/runs/latest", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHistoryHandler_ListRunExecutions(t *testing.T) {
	runID := sampleRun().ID

	t.Run("mixed outcomes", func(t *testing.T) {
		r, queries := newHistoryRouter(t)
		queries.EXPECT().ListExecutionsByRun(gomock.Any(), runID).
			Return([]db.RebalanceExecution{sampleExecution(runID, true), sampleExecution(runID, false)}, nil).Times(1)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/runs/"+runID.String()+"/executions", nil))
		require.Equal(t, http.StatusOK, w.Code)

		executions := decodeList[ExecutionResponse](t, w)
		require.Len(t, executions, 2)

		ok := executions[0]
		assert.Equal(t, "success", ok.Status)
		assert.Equal(t, "50000000", ok.InputAmount)
		assert.Equal(t, "100000", ok.FeeAmount)
		assert.Equal(t, "49900000", ok.NetAmount)
		assert.Equal(t, "20000000000000000", ok.ExpectedOutput)
		assert.Empty(t, ok.MinOutput)
		assert.Equal(t, "0xtx", ok.TxHash)
		assert.Equal(t, "50.00", ok.VolumeUSD)

		failed := executions[1]
		assert.Equal(t, "failed", failed.Status)
		assert.Equal(t, "quote_fetch", failed.Stage)
		assert.Equal(t, "network", failed.ErrorCategory)
		assert.Empty(t, failed.TxHash)
	})

	t.Run("invalid id", func(t *testing.T) {
		r, _ := newHistoryRouter(t)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/runs/not-a-uuid/executions", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHistoryHandler_ListOwnerExecutions(t *testing.T) {
	r, queries := newHistoryRouter(t)
	parent := uuid.New()
	retry := sampleExecution(uuid.New(), true)
	retry.ParentExecutionID = pgtype.UUID{Bytes: parent, Valid: true}
	retry.RetryCount = 1

	queries.EXPECT().ListExecutionsByOwner(gomock.Any(), db.ListExecutionsByOwnerParams{OwnerID: "owner-1", Limit: 5}).
		Return([]db.RebalanceExecution{retry}, nil).Times(1)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/owners/owner-1/executions?limit=5", nil))
	require.Equal(t, http.StatusOK, w.Code)

	executions := decodeList[ExecutionResponse](t, w)
	require.Len(t, executions, 1)
	assert.Equal(t, parent.String(), executions[0].ParentExecutionID)
	assert.Equal(t, int32(1), executions[0].RetryCount)
	require.NotNil(t, executions[0].SentimentScore)
}

func TestHealthHandler(t *testing.T) {
	r := gin.New()
	r.GET("/health", NewHealthHandler().Health)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
