package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/cyphera/cyphera-rebalancer/internal/client/transport"
	"github.com/cyphera/cyphera-rebalancer/internal/logger"
	"github.com/cyphera/cyphera-rebalancer/internal/types/business"
)

// RequestOption represents a function that can modify an HTTP request
type RequestOption func(*http.Request)

// ClientOption represents a function that can modify the HTTP client
type ClientOption func(*HTTPClient)

// Middleware represents a function that wraps an http.RoundTripper
type Middleware func(http.RoundTripper) http.RoundTripper

// HTTPError represents an error returned from an HTTP request
type HTTPError struct {
	StatusCode int
	Status     string
	URL        string
	Method     string
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s %s failed with status %d %s: %s", e.Method, e.URL, e.StatusCode, e.Status, e.Body)
}

// HTTPClient is the shared client for the engine's HTTP collaborators.
// Failures come back as typed business errors (see transport.FromStatus).
type HTTPClient struct {
	httpClient     *http.Client
	baseURL        string
	name           string
	defaultHeaders map[string]string
	retryConfig    *RetryConfig
	limiter        *rate.Limiter
	middlewares    []Middleware
}

// RetryConfig configures the retry behavior
type RetryConfig struct {
	MaxRetries           int
	InitialInterval      time.Duration
	MaxInterval          time.Duration
	Multiplier           float64
	MaxElapsedTime       time.Duration
	RetryableStatusCodes []int
}

// DefaultRetryConfig provides sensible defaults for retries
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries:           3,
		InitialInterval:      100 * time.Millisecond,
		MaxInterval:          10 * time.Second,
		Multiplier:           2.0,
		MaxElapsedTime:       30 * time.Second,
		RetryableStatusCodes: []int{408, 429, 500, 502, 503, 504},
	}
}

// NewHTTPClient creates a new HTTPClient with the given options
func NewHTTPClient(options ...ClientOption) *HTTPClient {
	client := &HTTPClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		name:       "http",
		defaultHeaders: map[string]string{
			"Content-Type": "application/json",
			"Accept":       "application/json",
		},
		retryConfig: DefaultRetryConfig(),
	}

	for _, option := range options {
		option(client)
	}

	if len(client.middlewares) > 0 {
		transport := client.httpClient.Transport
		if transport == nil {
			transport = http.DefaultTransport
		}

		// Apply middlewares in reverse order so the first one is outermost
		for i := len(client.middlewares) - 1; i >= 0; i-- {
			transport = client.middlewares[i](transport)
		}
		client.httpClient.Transport = transport
	}

	return client
}

// WithBaseURL sets the base URL for all requests
func WithBaseURL(baseURL string) ClientOption {
	return func(c *HTTPClient) {
		c.baseURL = baseURL
	}
}

// WithName labels the collaborator in logs and typed errors.
func WithName(name string) ClientOption {
	return func(c *HTTPClient) {
		c.name = name
	}
}

// WithDefaultHeader adds a default header to all requests
func WithDefaultHeader(key, value string) ClientOption {
	return func(c *HTTPClient) {
		c.defaultHeaders[key] = value
	}
}

// WithTimeout sets the timeout for all requests
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.httpClient.Timeout = timeout
	}
}

// WithRetryConfig sets the retry configuration. nil disables client-side retries.
func WithRetryConfig(config *RetryConfig) ClientOption {
	return func(c *HTTPClient) {
		c.retryConfig = config
	}
}

// WithRateLimit caps outgoing requests at rps with the given burst. rps <= 0 disables it.
func WithRateLimit(rps float64, burst int) ClientOption {
	return func(c *HTTPClient) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithMiddleware adds a middleware to the client
func WithMiddleware(middleware Middleware) ClientOption {
	return func(c *HTTPClient) {
		c.middlewares = append(c.middlewares, middleware)
	}
}

// WithHeader adds a header to the request
func WithHeader(key, value string) RequestOption {
	return func(req *http.Request) {
		req.Header.Set(key, value)
	}
}

// WithQueryParam adds a query parameter to the request
func WithQueryParam(key, value string) RequestOption {
	return func(req *http.Request) {
		q := req.URL.Query()
		q.Add(key, value)
		req.URL.RawQuery = q.Encode()
	}
}

// Get performs an HTTP GET request
func (c *HTTPClient) Get(ctx context.Context, path string, options ...RequestOption) (*http.Response, error) {
	return c.DoRequest(ctx, http.MethodGet, path, nil, options...)
}

// Post performs an HTTP POST request with a JSON body
func (c *HTTPClient) Post(ctx context.Context, path string, body interface{}, options ...RequestOption) (*http.Response, error) {
	return c.DoRequest(ctx, http.MethodPost, path, body, options...)
}

func (c *HTTPClient) resolveURL(path string) (string, error) {
	if c.baseURL == "" {
		if _, err := url.ParseRequestURI(path); err != nil {
			return "", fmt.Errorf("invalid path used without base URL: %s, error: %w", path, err)
		}
		return path, nil
	}
	if path == "" {
		return c.baseURL, nil
	}
	if !strings.HasPrefix(path, "/") && !strings.HasPrefix(path, "?") {
		path = "/" + path
	}
	return strings.TrimSuffix(c.baseURL, "/") + path, nil
}

// DoRequest is the generic method that performs all HTTP requests.
// Error responses are returned as typed business errors wrapping *HTTPError.
func (c *HTTPClient) DoRequest(ctx context.Context, method, path string, body interface{}, options ...RequestOption) (*http.Response, error) {
	start := time.Now()

	fullURL, err := c.resolveURL(path)
	if err != nil {
		return nil, err
	}

	var bodyJSON []byte
	if body != nil {
		bodyJSON, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	newRequest := func() (*http.Request, error) {
		var bodyReader io.Reader
		if bodyJSON != nil {
			bodyReader = bytes.NewReader(bodyJSON)
		}
		req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		for key, value := range c.defaultHeaders {
			req.Header.Set(key, value)
		}
		for _, option := range options {
			option(req)
		}
		return req, nil
	}

	var resp *http.Response
	attempt := func() error {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return backoff.Permanent(&business.TimeoutError{Op: c.name + " rate limiter", Err: err})
			}
		}
		req, err := newRequest()
		if err != nil {
			return backoff.Permanent(err)
		}

		// nolint:bodyclose // closed below for retryable statuses, otherwise by the caller
		resp, err = c.httpClient.Do(req)
		if err != nil {
			return err
		}
		if c.retryable(resp.StatusCode) {
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
			return &HTTPError{StatusCode: resp.StatusCode, Status: resp.Status, URL: fullURL, Method: method}
		}
		return nil
	}

	var requestErr error
	if c.retryConfig != nil && c.retryConfig.MaxRetries > 0 {
		expBackoff := backoff.NewExponentialBackOff()
		expBackoff.InitialInterval = c.retryConfig.InitialInterval
		expBackoff.MaxInterval = c.retryConfig.MaxInterval
		expBackoff.Multiplier = c.retryConfig.Multiplier
		expBackoff.MaxElapsedTime = c.retryConfig.MaxElapsedTime

		requestErr = backoff.Retry(attempt, backoff.WithContext(backoff.WithMaxRetries(expBackoff, uint64(c.retryConfig.MaxRetries)), ctx))
	} else {
		requestErr = attempt()
	}

	duration := time.Since(start)

	if requestErr != nil {
		if httpErr, ok := requestErr.(*HTTPError); ok {
			logger.Warn("HTTP error response",
				zap.String("client", c.name),
				zap.String("method", method),
				zap.String("url", fullURL),
				zap.Int("status", httpErr.StatusCode),
				zap.Duration("duration", duration))
			return nil, transport.FromStatus(c.name, httpErr.StatusCode, 0, httpErr)
		}
		logger.Error("HTTP request failed",
			zap.String("client", c.name),
			zap.String("method", method),
			zap.String("url", fullURL),
			zap.Error(requestErr),
			zap.Duration("duration", duration))
		return nil, transport.Translate(c.name, fmt.Errorf("http request failed: %w", requestErr))
	}

	if resp.StatusCode >= 400 {
		var bodyBytes []byte
		if resp.Body != nil {
			bodyBytes, _ = io.ReadAll(resp.Body)
			resp.Body.Close()
		}

		httpErr := &HTTPError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			URL:        fullURL,
			Method:     method,
			Body:       string(bodyBytes),
		}

		logger.Warn("HTTP error response",
			zap.String("client", c.name),
			zap.String("method", method),
			zap.String("url", fullURL),
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(bodyBytes)),
			zap.Duration("duration", duration))

		return nil, transport.FromStatus(c.name, resp.StatusCode, transport.RetryAfter(resp.Header), httpErr)
	}

	logger.Debug("HTTP request successful",
		zap.String("client", c.name),
		zap.String("method", method),
		zap.String("url", fullURL),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", duration))

	return resp, nil
}

func (c *HTTPClient) retryable(status int) bool {
	if c.retryConfig == nil {
		return false
	}
	for _, code := range c.retryConfig.RetryableStatusCodes {
		if status == code {
			return true
		}
	}
	return false
}

// ProcessJSONResponse decodes a JSON response into the provided target
func (c *HTTPClient) ProcessJSONResponse(resp *http.Response, target interface{}) error {
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("%s: failed to decode response: %w", c.name, err)
	}
	return nil
}

// GetJSON performs a GET and decodes the JSON response into target.
func (c *HTTPClient) GetJSON(ctx context.Context, path string, target interface{}, options ...RequestOption) error {
	resp, err := c.Get(ctx, path, options...)
	if err != nil {
		return err
	}
	return c.ProcessJSONResponse(resp, target)
}

// PostJSON performs a POST with a JSON body and decodes the JSON response into target.
func (c *HTTPClient) PostJSON(ctx context.Context, path string, body interface{}, target interface{}, options ...RequestOption) error {
	resp, err := c.Post(ctx, path, body, options...)
	if err != nil {
		return err
	}
	return c.ProcessJSONResponse(resp, target)
}

// LoggingMiddleware logs every round trip at debug level, including each retry attempt.
// A nil logger falls back to the global one.
func LoggingMiddleware(log *zap.Logger) Middleware {
	if log == nil {
		log = logger.Log
	}
	return func(next http.RoundTripper) http.RoundTripper {
		return &loggingRoundTripper{next: next, logger: log}
	}
}

type loggingRoundTripper struct {
	next   http.RoundTripper
	logger *zap.Logger
}

func (l *loggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	l.logger.Debug("HTTP request started",
		zap.String("method", req.Method),
		zap.String("url", req.URL.Redacted()))

	resp, err := l.next.RoundTrip(req)

	duration := time.Since(start)
	if err != nil {
		l.logger.Debug("HTTP round trip failed",
			zap.String("method", req.Method),
			zap.String("url", req.URL.Redacted()),
			zap.Error(err),
			zap.Duration("duration", duration))
		return resp, err
	}

	l.logger.Debug("HTTP response received",
		zap.String("method", req.Method),
		zap.String("url", req.URL.Redacted()),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", duration))

	return resp, nil
}
