package client

import (
	"log/slog"
	"net/http"

	"github.com/xraph/wayfarer/backoff"
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. The replacement
// keeps its own timeout and transport settings.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// WithPollStrategy replaces the wait strategy Wait uses between status
// polls. Fleets of workers watching the same server should prefer
// [backoff.ExponentialWithJitter].
func WithPollStrategy(s backoff.Strategy) Option {
	return func(c *Client) {
		if s != nil {
			c.poll = s
		}
	}
}

// WithLogger sets the structured logger. Requests are logged at debug
// level.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}
