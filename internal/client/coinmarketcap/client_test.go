package coinmarketcap_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyphera/cyphera-rebalancer/internal/client/coinmarketcap"
	"github.com/cyphera/cyphera-rebalancer/internal/types/business"
)

func TestClient_GetUSDPrice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/cryptocurrency/quotes/latest", r.URL.Path)
		assert.Equal(t, "cmc-key", r.Header.Get("X-CMC_PRO_API_KEY"))
		assert.Equal(t, "ETH", r.URL.Query().Get("symbol"))
		assert.Equal(t, "USD", r.URL.Query().Get("convert"))

		_, _ = w.Write([]byte(`{
			"status": {"error_code": 0},
			"data": {"ETH": [{"id": 1027, "symbol": "ETH", "quote": {"USD": {"price": 3012.456789}}}]}
		}`))
	}))
	defer server.Close()

	client := coinmarketcap.NewClient("cmc-key", server.URL)
	price, err := client.GetUSDPrice(context.Background(), "eth")
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.RequireFromString("3012.456789")))
}

func TestClient_GetUSDPrice_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want business.ErrorCategory
	}{
		{"api error", `{"status": {"error_code": 400, "error_message": "Invalid value for symbol"}}`, business.CategoryRevert},
		{"missing symbol", `{"status": {"error_code": 0}, "data": {}}`, business.CategoryRevert},
		{"zero price", `{"status": {"error_code": 0}, "data": {"ETH": [{"quote": {"USD": {"price": 0}}}]}}`, business.CategoryRevert},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := coinmarketcap.NewClient("k", server.URL).GetUSDPrice(context.Background(), "ETH")
			require.Error(t, err)

			var categorized business.CategorizedError
			require.True(t, errors.As(err, &categorized))
			assert.Equal(t, tt.want, categorized.Category())
		})
	}
}
