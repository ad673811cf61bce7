// Package client provides a Go client for a remote wayfarer server over
// its HTTP API.
//
// Usage:
//
//	c := client.New("http://localhost:8080")
//
//	jobID, err := c.Generate(ctx, "Kyoto", 5)
//	j, err := c.Wait(ctx, jobID)
//
// Job fetches the current record once; Wait polls until the record is
// terminal. Lookups for unknown IDs return [wayfarer.ErrJobNotFound];
// other rejections surface as an [*APIError] carrying the HTTP status and
// the server's message.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/xraph/wayfarer/backoff"
)

// Client talks to a wayfarer server over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	poll       backoff.Strategy
	logger     *slog.Logger
}

// New creates a Client for the server at baseURL, such as
// "http://localhost:8080". A trailing slash is stripped.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		poll:       backoff.DefaultStrategy(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIError is an unexpected HTTP response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("wayfarer/client: server returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("wayfarer/client: server returned %d", e.StatusCode)
}

// getJSON performs a GET against path and decodes the response body into
// out. Non-200 responses come back as an *APIError.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("wayfarer/client: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("wayfarer/client: get %s: %w", path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("wayfarer client request",
		slog.String("method", http.MethodGet),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
	)

	if resp.StatusCode != http.StatusOK {
		var payload struct {
			Error string `json:"error"`
		}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		_ = json.Unmarshal(data, &payload)
		return &APIError{StatusCode: resp.StatusCode, Message: payload.Error}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("wayfarer/client: decode %s response: %w", path, err)
	}
	return nil
}
