package client

import (
	"context"

	"github.com/xraph/wayfarer/engine"
)

// Stats returns the server's job counters and pool snapshot.
func (c *Client) Stats(ctx context.Context) (*engine.Stats, error) {
	var st engine.Stats
	if err := c.getJSON(ctx, "/api/v1/stats", &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// Health is the server's health report. Store is "ok" when the backing
// store answered a ping and "unreachable" otherwise.
type Health struct {
	Status string `json:"status"`
	Store  string `json:"store"`
}

// Health fetches the server's health report.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var h Health
	if err := c.getJSON(ctx, "/health", &h); err != nil {
		return nil, err
	}
	return &h, nil
}
