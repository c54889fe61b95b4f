package email_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cyphera/cyphera-rebalancer/internal/client/email"
	"github.com/cyphera/cyphera-rebalancer/internal/types/business"
)

func TestSummaryNotifier_SendRunSummary(t *testing.T) {
	var got map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/emails", r.URL.Path)
		assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"id":"email-1"}`))
	}))
	defer server.Close()

	notifier, err := email.NewSummaryNotifier("re_test", "ops@cypherapay.com", []string{"team@cypherapay.com"}, server.URL+"/", zap.NewNop())
	require.NoError(t, err)

	summary := &business.RunSummary{
		RunID:     uuid.New(),
		RunDate:   "2025-01-01",
		Status:    "completed",
		Action:    business.ActionAccumulate,
		Processed: 2,
		Succeeded: 1,
		Failed:    1,
		VolumeUSD: decimal.RequireFromString("49.9"),
		FeeUSD:    decimal.RequireFromString("0.1"),
		Failures: []business.FailureLine{
			{Account: "0xabc", Stage: business.StageQuoteFetch, Category: business.CategoryNetwork, Message: "connection reset"},
		},
	}

	require.NoError(t, notifier.SendRunSummary(context.Background(), summary))
	assert.Equal(t, "Rebalance 2025-01-01: 1/2 succeeded, volume $49.90", got["subject"])
	assert.Contains(t, got["html"], "quote_fetch/network")
	assert.Contains(t, got["html"], "0.10")
}

func TestSummaryNotifier_NoRecipients(t *testing.T) {
	notifier, err := email.NewSummaryNotifier("re_test", "ops@cypherapay.com", nil, "", zap.NewNop())
	require.NoError(t, err)
	assert.NoError(t, notifier.SendRunSummary(context.Background(), &business.RunSummary{}))
}
