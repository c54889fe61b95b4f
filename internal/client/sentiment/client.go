package sentiment

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	httpClient "github.com/cyphera/cyphera-rebalancer/internal/client/http"
	"github.com/cyphera/cyphera-rebalancer/internal/types/business"
)

// Client reads the Fear & Greed index.
type Client struct {
	httpClient *httpClient.HTTPClient
	logger     *zap.Logger
}

// NewClient builds a client against url, which must return the latest reading first.
func NewClient(url string, logger *zap.Logger) *Client {
	return &Client{
		httpClient: httpClient.NewHTTPClient(
			httpClient.WithBaseURL(url),
			httpClient.WithName("sentiment"),
			httpClient.WithTimeout(15*time.Second),
			httpClient.WithMiddleware(httpClient.LoggingMiddleware(logger)),
		),
		logger: logger,
	}
}

type fngResponse struct {
	Name string `json:"name"`
	Data []struct {
		Value               string `json:"value"`
		ValueClassification string `json:"value_classification"`
		Timestamp           string `json:"timestamp"`
	} `json:"data"`
	Metadata struct {
		Error *string `json:"error"`
	} `json:"metadata"`
}

// FetchSentiment returns the latest index value.
func (c *Client) FetchSentiment(ctx context.Context) (*business.Sentiment, error) {
	var resp fngResponse
	if err := c.httpClient.GetJSON(ctx, "", &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch sentiment index: %w", err)
	}
	if resp.Metadata.Error != nil && *resp.Metadata.Error != "" {
		return nil, fmt.Errorf("sentiment index error: %s", *resp.Metadata.Error)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("sentiment index returned no data")
	}

	latest := resp.Data[0]
	score, err := strconv.Atoi(latest.Value)
	if err != nil {
		return nil, fmt.Errorf("invalid sentiment value %q: %w", latest.Value, err)
	}
	if score < 0 || score > 100 {
		return nil, fmt.Errorf("sentiment value %d out of range", score)
	}

	sentiment := &business.Sentiment{
		Score:          score,
		Classification: latest.ValueClassification,
	}
	if ts, err := strconv.ParseInt(latest.Timestamp, 10, 64); err == nil {
		sentiment.Timestamp = time.Unix(ts, 0).UTC()
	}

	c.logger.Info("Fetched sentiment",
		zap.Int("score", sentiment.Score),
		zap.String("classification", sentiment.Classification),
		zap.Time("timestamp", sentiment.Timestamp))

	return sentiment, nil
}
