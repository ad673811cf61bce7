package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/xraph/wayfarer"
	"github.com/xraph/wayfarer/job"
)

// Generate submits a generation request and returns the new job ID. The
// server answers with a redirect to the itinerary page; the ID is taken
// from that location. Input is validated locally first so invalid requests
// fail with wayfarer.ErrInvalidInput before any network traffic.
func (c *Client) Generate(ctx context.Context, destination string, durationDays int) (string, error) {
	if err := job.ValidateInput(destination, durationDays); err != nil {
		return "", err
	}

	form := url.Values{
		"destination":  {destination},
		"durationDays": {strconv.Itoa(durationDays)},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/generate", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("wayfarer/client: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	// Keep the redirect instead of following it; the job ID lives in the
	// Location header.
	hc := *c.httpClient
	hc.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }

	resp, err := hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("wayfarer/client: generate: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusSeeOther {
		return "", &APIError{StatusCode: resp.StatusCode, Message: "generation request was not accepted"}
	}

	loc := resp.Header.Get("Location")
	jobID := strings.TrimPrefix(loc, "/itineraries/")
	if jobID == "" || jobID == loc {
		return "", fmt.Errorf("wayfarer/client: generate: unexpected redirect %q", loc)
	}
	return jobID, nil
}

// Job fetches a job record by ID. Unknown IDs return wayfarer.ErrJobNotFound.
func (c *Client) Job(ctx context.Context, jobID string) (*job.Job, error) {
	var j job.Job
	err := c.getJSON(ctx, "/api/v1/jobs/"+url.PathEscape(jobID), &j)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("wayfarer/client: job %s: %w", jobID, wayfarer.ErrJobNotFound)
		}
		return nil, err
	}
	return &j, nil
}

// Wait polls the job until it reaches a terminal status and returns the
// final record. The poll cadence comes from the configured strategy; the
// context bounds the total wait.
func (c *Client) Wait(ctx context.Context, jobID string) (*job.Job, error) {
	for attempt := 1; ; attempt++ {
		j, err := c.Job(ctx, jobID)
		if err != nil {
			return nil, err
		}
		if j.Status.Terminal() {
			return j, nil
		}

		select {
		case <-time.After(c.poll.Delay(attempt)):
		case <-ctx.Done():
			return nil, fmt.Errorf("wayfarer/client: wait for job %s: %w", jobID, ctx.Err())
		}
	}
}
