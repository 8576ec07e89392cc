package upload

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

	"github.com/claude/replens/internal/ingest"
)

// maxAttempts bounds retries per capture.
const maxAttempts = 3

// Client sends captures to the RepLens server over HTTP.
type Client struct {
	serverURL  string
	apiKey     string
	httpClient *http.Client
	sleep      func(time.Duration)
}

// NewClient creates a new HTTP client for the RepLens server.
func NewClient(serverURL, apiKey string) *Client {
	return &Client{
		serverURL: strings.TrimRight(serverURL, "/"),
		apiKey:    apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		sleep: time.Sleep,
	}
}

// SendJSON POSTs a JSON capture to the ingest endpoint.
func (c *Client) SendJSON(ctx context.Context, data []byte) (*ingest.Result, error) {
	return c.send(ctx, c.serverURL+"/api/v1/ingest/", "application/json", data)
}

// SendCSV POSTs a CSV capture. exercise and equipment are passed as query
// parameters since the CSV format carries no metadata.
func (c *Client) SendCSV(ctx context.Context, data []byte, exercise, equipment string) (*ingest.Result, error) {
	q := url.Values{}
	if exercise != "" {
		q.Set("exercise", exercise)
	}
	if equipment != "" {
		q.Set("equipment", equipment)
	}
	u := c.serverURL + "/api/v1/ingest/csv"
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return c.send(ctx, u, "text/csv", data)
}

// send retries up to maxAttempts times with exponential backoff. Client
// errors (4xx) are not retried.
func (c *Client) send(ctx context.Context, target, contentType string, data []byte) (*ingest.Result, error) {
	var lastErr error
	for attempt := range maxAttempts {
		if attempt > 0 {
			c.sleep(time.Duration(1<<uint(attempt-1)) * time.Second)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("X-API-Key", c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			var result ingest.Result
			if err := json.Unmarshal(body, &result); err != nil {
				return nil, fmt.Errorf("decoding ingest result: %w", err)
			}
			return &result, nil
		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			return nil, fmt.Errorf("ingest rejected (status %d): %s", resp.StatusCode, body)
		}
		lastErr = fmt.Errorf("ingest failed (status %d): %s", resp.StatusCode, body)
	}

	return nil, fmt.Errorf("after %d attempts: %w", maxAttempts, lastErr)
}
