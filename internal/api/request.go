package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// maxRetryAfter caps how long a server may ask us to back off.
const maxRetryAfter = time.Minute

// APIError is a non-2xx catalog response.
type APIError struct {
	StatusCode int
	Message    string        // Server's "error" field, or the status text
	RetryAfter time.Duration // From the Retry-After header, 0 if absent
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("catalog api error %d: %s", e.StatusCode, e.Message)
}

// IsRetryable reports whether the request may succeed if repeated:
// throttling and server-side failures.
func (e *APIError) IsRetryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// newAPIError builds an APIError from a failed response.
func newAPIError(resp *http.Response, body []byte) *APIError {
	e := &APIError{
		StatusCode: resp.StatusCode,
		Message:    http.StatusText(resp.StatusCode),
		RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		Body:       body,
	}

	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil && strings.TrimSpace(payload.Error) != "" {
		e.Message = payload.Error
	}
	return e
}

// parseRetryAfter reads a Retry-After value in seconds. HTTP dates and
// garbage yield 0.
func parseRetryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs <= 0 {
		return 0
	}
	return min(time.Duration(secs)*time.Second, maxRetryAfter)
}

// fetch issues one rate-limited GET and returns the body of a 2xx response.
func (c *Client) fetch(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(resp, body)
	}
	return body, nil
}

// fetchRetrying repeats fetch on retryable API errors, doubling the delay
// each time. Transport errors and other statuses are returned at once.
func (c *Client) fetchRetrying(ctx context.Context, path string, query url.Values) ([]byte, error) {
	backoff := c.retryBackoff

	for attempt := 0; ; attempt++ {
		body, err := c.fetch(ctx, path, query)
		if err == nil {
			return body, nil
		}

		var apiErr *APIError
		if !errors.As(err, &apiErr) || !apiErr.IsRetryable() {
			return nil, err
		}
		if attempt >= c.maxRetries {
			return nil, fmt.Errorf("max retries exceeded: %w", err)
		}

		wait := retryDelay(backoff, apiErr.RetryAfter)
		c.logger.Debug("retrying catalog request",
			"path", path,
			"attempt", attempt+1,
			"status", apiErr.StatusCode,
			"wait", wait,
		)

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
		backoff *= 2
	}
}

// retryDelay jitters backoff into [backoff/2, 3*backoff/2] and never waits
// less than the server asked for.
func retryDelay(backoff, retryAfter time.Duration) time.Duration {
	d := backoff / 2
	if backoff > 0 {
		d += time.Duration(rand.Int64N(int64(backoff) + 1))
	}
	return max(d, retryAfter)
}

// getJSON fetches path with retries and decodes the body into out.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	body, err := c.fetchRetrying(ctx, path, query)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
