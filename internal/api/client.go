package api

import (
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Client provides access to the market catalog REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	limiter    *rate.Limiter

	maxRetries   int
	retryBackoff time.Duration
	maxPages     int
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a new catalog client.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger:       slog.Default(),
		limiter:      rate.NewLimiter(rate.Inf, 1),
		maxRetries:   3,
		retryBackoff: time.Second,
		maxPages:     10000,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithRetries sets the retry configuration.
func WithRetries(max int, backoff time.Duration) ClientOption {
	return func(c *Client) {
		c.maxRetries = max
		c.retryBackoff = backoff
	}
}

// WithRateLimit caps outgoing requests, retries included. rps <= 0 removes
// the limit.
func WithRateLimit(rps float64, burst int) ClientOption {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithMaxPages bounds how many pages a search may fetch.
func WithMaxPages(n int) ClientOption {
	return func(c *Client) {
		c.maxPages = n
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}
