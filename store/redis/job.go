package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/xraph/wayfarer"
	"github.com/xraph/wayfarer/id"
	"github.com/xraph/wayfarer/itinerary"
	"github.com/xraph/wayfarer/job"
)

// CreateJob stores the job as a Hash and adds it to the processing status
// set in one transaction. createdAt is read from the Redis server clock and
// reflected back into the caller's record.
func (s *Store) CreateJob(ctx context.Context, j *job.Job) error {
	jID := j.ID.String()
	key := jobKey(jID)

	// Check for duplicate.
	exists, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("wayfarer/redis: create job check exists: %w", err)
	}
	if exists > 0 {
		return wayfarer.ErrJobAlreadyExists
	}

	now, err := s.serverNow(ctx)
	if err != nil {
		return fmt.Errorf("wayfarer/redis: create job server time: %w", err)
	}

	fields := map[string]any{
		"id":            jID,
		"status":        string(job.StatusProcessing),
		"destination":   j.Destination,
		"duration_days": strconv.Itoa(j.DurationDays),
		"created_at":    now.Format(time.RFC3339Nano),
	}

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, fields)
	pipe.SAdd(ctx, statusKey(job.StatusProcessing), jID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("wayfarer/redis: create job: %w", err)
	}

	j.CreatedAt = now
	return nil
}

// GetJob retrieves a job by ID.
func (s *Store) GetJob(ctx context.Context, jobID id.JobID) (*job.Job, error) {
	return s.getJobByKey(ctx, jobKey(jobID.String()))
}

// FinishJob applies a terminal update to a processing job. The stored status
// is checked before the write, so a record that already reached completed or
// failed reports ErrInvalidTransition. completedAt comes from the server
// clock, and the ID moves between status sets in the same transaction as the
// Hash update.
func (s *Store) FinishJob(ctx context.Context, jobID id.JobID, terminal job.Terminal) (*job.Job, error) {
	if err := terminal.Validate(); err != nil {
		return nil, err
	}

	jID := jobID.String()
	key := jobKey(jID)

	cur, err := s.client.HGet(ctx, key, "status").Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, wayfarer.ErrJobNotFound
		}
		return nil, fmt.Errorf("wayfarer/redis: finish job read status: %w", err)
	}
	if job.Status(cur) != job.StatusProcessing {
		return nil, wayfarer.ErrInvalidTransition
	}

	now, err := s.serverNow(ctx)
	if err != nil {
		return nil, fmt.Errorf("wayfarer/redis: finish job server time: %w", err)
	}

	fields := map[string]any{
		"status":       string(terminal.Status),
		"completed_at": now.Format(time.RFC3339Nano),
	}
	switch terminal.Status {
	case job.StatusCompleted:
		fields["itinerary"] = marshalJSON(terminal.Itinerary)
	case job.StatusFailed:
		fields["error"] = terminal.Error
	}

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, fields)
	pipe.SMove(ctx, statusKey(job.StatusProcessing), statusKey(terminal.Status), jID)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("wayfarer/redis: finish job: %w", err)
	}

	return s.getJobByKey(ctx, key)
}

// ListJobsByStatus returns jobs matching the given status, newest first.
func (s *Store) ListJobsByStatus(ctx context.Context, status job.Status, opts job.ListOpts) ([]*job.Job, error) {
	ids, err := s.client.SMembers(ctx, statusKey(status)).Result()
	if err != nil {
		return nil, fmt.Errorf("wayfarer/redis: list jobs smembers: %w", err)
	}

	jobs := make([]*job.Job, 0, len(ids))
	for _, jID := range ids {
		j, getErr := s.getJobByKey(ctx, jobKey(jID))
		if getErr != nil {
			continue // skip records removed between SMEMBERS and HGETALL
		}
		jobs = append(jobs, j)
	}

	sort.Slice(jobs, func(i, k int) bool {
		return jobs[i].CreatedAt.After(jobs[k].CreatedAt)
	})

	// Apply offset/limit.
	if opts.Offset > 0 && opts.Offset < len(jobs) {
		jobs = jobs[opts.Offset:]
	} else if opts.Offset >= len(jobs) && opts.Offset > 0 {
		return nil, nil
	}
	if opts.Limit > 0 && opts.Limit < len(jobs) {
		jobs = jobs[:opts.Limit]
	}
	return jobs, nil
}

// CountJobs returns the number of jobs matching the given options. Counts
// come from the status set cardinalities.
func (s *Store) CountJobs(ctx context.Context, opts job.CountOpts) (int64, error) {
	if opts.Status != "" {
		n, err := s.client.SCard(ctx, statusKey(opts.Status)).Result()
		if err != nil {
			return 0, fmt.Errorf("wayfarer/redis: count jobs: %w", err)
		}
		return n, nil
	}

	var total int64
	for _, st := range []job.Status{job.StatusProcessing, job.StatusCompleted, job.StatusFailed} {
		n, err := s.client.SCard(ctx, statusKey(st)).Result()
		if err != nil {
			return 0, fmt.Errorf("wayfarer/redis: count jobs: %w", err)
		}
		total += n
	}
	return total, nil
}

// ── helpers ──

func (s *Store) getJobByKey(ctx context.Context, key string) (*job.Job, error) {
	vals, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("wayfarer/redis: get job: %w", err)
	}
	if len(vals) == 0 {
		return nil, wayfarer.ErrJobNotFound
	}
	return mapToJob(vals)
}

func mapToJob(m map[string]string) (*job.Job, error) {
	jID, err := id.ParseJobID(m["id"])
	if err != nil {
		return nil, fmt.Errorf("wayfarer/redis: parse job id: %w", err)
	}

	durationDays, _ := strconv.Atoi(m["duration_days"])           //nolint:errcheck // best-effort parse from trusted Redis data
	createdAt, _ := time.Parse(time.RFC3339Nano, m["created_at"]) //nolint:errcheck // best-effort parse from trusted Redis data

	j := &job.Job{
		ID:           jID,
		Status:       job.Status(m["status"]),
		Destination:  m["destination"],
		DurationDays: durationDays,
		CreatedAt:    createdAt,
		Error:        m["error"],
	}

	if v := m["completed_at"]; v != "" {
		t, _ := time.Parse(time.RFC3339Nano, v) //nolint:errcheck // best-effort parse from trusted Redis data
		j.CompletedAt = &t
	}
	if v := m["itinerary"]; v != "" {
		var days []itinerary.Day
		if uErr := json.Unmarshal([]byte(v), &days); uErr != nil {
			return nil, fmt.Errorf("wayfarer/redis: decode itinerary: %w", uErr)
		}
		j.Itinerary = days
	}
	return j, nil
}

// marshalJSON is a helper to marshal to JSON string.
func marshalJSON(v any) string {
	b, _ := json.Marshal(v) //nolint:errcheck // marshal should not fail for basic types
	return string(b)
}
