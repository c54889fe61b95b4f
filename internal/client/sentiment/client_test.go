package sentiment_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cyphera/cyphera-rebalancer/internal/client/sentiment"
)

func TestClient_FetchSentiment(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantScore int
		wantErr   bool
	}{
		{
			name:      "extreme fear",
			status:    http.StatusOK,
			body:      `{"name":"Fear and Greed Index","data":[{"value":"10","value_classification":"Extreme Fear","timestamp":"1735689600"}],"metadata":{"error":null}}`,
			wantScore: 10,
		},
		{name: "empty data", status: http.StatusOK, body: `{"data":[],"metadata":{"error":null}}`, wantErr: true},
		{name: "metadata error", status: http.StatusOK, body: `{"data":[],"metadata":{"error":"maintenance"}}`, wantErr: true},
		{name: "non numeric", status: http.StatusOK, body: `{"data":[{"value":"high"}]}`, wantErr: true},
		{name: "out of range", status: http.StatusOK, body: `{"data":[{"value":"140"}]}`, wantErr: true},
		{name: "server down", status: http.StatusBadGateway, body: ``, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "1", r.URL.Query().Get("limit"))
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := sentiment.NewClient(server.URL+"/fng/?limit=1", zap.NewNop())
			got, err := client.FetchSentiment(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantScore, got.Score)
			assert.Equal(t, "Extreme Fear", got.Classification)
			assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), got.Timestamp)
		})
	}
}

func TestClient_LogsRoundTrips(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"value":"60","value_classification":"Greed","timestamp":"1735689600"}]}`))
	}))
	defer server.Close()

	core, logs := observer.New(zapcore.DebugLevel)
	client := sentiment.NewClient(server.URL+"/fng/?limit=1", zap.New(core))
	_, err := client.FetchSentiment(context.Background())
	require.NoError(t, err)

	responses := logs.FilterMessage("HTTP response received").All()
	require.Len(t, responses, 1)
	assert.Equal(t, int64(http.StatusOK), responses[0].ContextMap()["status"])
}
