package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/xraph/wayfarer"
	"github.com/xraph/wayfarer/id"
	"github.com/xraph/wayfarer/itinerary"
	"github.com/xraph/wayfarer/job"
)

const jobColumns = `id, status, destination, duration_days, itinerary, error, created_at, completed_at`

// CreateJob persists a new job in processing status. created_at comes from
// the database clock (DEFAULT NOW()) and is returned to the caller.
func (s *Store) CreateJob(ctx context.Context, j *job.Job) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO itinerary_jobs (id, status, destination, duration_days)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`,
		j.ID.String(), string(j.Status), j.Destination, j.DurationDays,
	).Scan(&j.CreatedAt)
	if err != nil {
		// Check for unique violation (duplicate ID).
		if isDuplicateKey(err) {
			return wayfarer.ErrJobAlreadyExists
		}
		return fmt.Errorf("wayfarer/postgres: create job: %w", err)
	}
	return nil
}

// GetJob retrieves a job by ID.
func (s *Store) GetJob(ctx context.Context, jobID id.JobID) (*job.Job, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+jobColumns+`
		FROM itinerary_jobs
		WHERE id = $1`,
		jobID.String(),
	)

	j, err := scanJob(row)
	if err != nil {
		if isNoRows(err) {
			return nil, wayfarer.ErrJobNotFound
		}
		return nil, fmt.Errorf("wayfarer/postgres: get job: %w", err)
	}
	return j, nil
}

// FinishJob atomically applies a terminal update to a processing job.
// The status predicate makes the transition atomic: a record that already
// reached completed or failed matches no row, so terminal fields are written
// at most once. completed_at comes from the database clock.
func (s *Store) FinishJob(ctx context.Context, jobID id.JobID, terminal job.Terminal) (*job.Job, error) {
	if err := terminal.Validate(); err != nil {
		return nil, err
	}

	var (
		itinJSON []byte
		errText  *string
	)
	if terminal.Status == job.StatusCompleted {
		data, err := json.Marshal(terminal.Itinerary)
		if err != nil {
			return nil, fmt.Errorf("wayfarer/postgres: marshal itinerary: %w", err)
		}
		itinJSON = data
	}
	if terminal.Status == job.StatusFailed {
		errText = &terminal.Error
	}

	row := s.pool.QueryRow(ctx, `
		UPDATE itinerary_jobs
		SET status = $2, itinerary = $3, error = $4, completed_at = NOW()
		WHERE id = $1 AND status = 'processing'
		RETURNING `+jobColumns,
		jobID.String(), string(terminal.Status), itinJSON, errText,
	)

	j, err := scanJob(row)
	if err != nil {
		if isNoRows(err) {
			return nil, s.finishMiss(ctx, jobID)
		}
		return nil, fmt.Errorf("wayfarer/postgres: finish job: %w", err)
	}
	return j, nil
}

// finishMiss distinguishes the two reasons a guarded terminal write can
// match nothing: the record is absent, or it already left processing.
func (s *Store) finishMiss(ctx context.Context, jobID id.JobID) error {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM itinerary_jobs WHERE id = $1)`,
		jobID.String(),
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("wayfarer/postgres: finish job lookup: %w", err)
	}
	if !exists {
		return wayfarer.ErrJobNotFound
	}
	return wayfarer.ErrInvalidTransition
}

// ListJobsByStatus returns jobs matching the given status, newest first.
func (s *Store) ListJobsByStatus(ctx context.Context, status job.Status, opts job.ListOpts) ([]*job.Job, error) {
	query := `
		SELECT ` + jobColumns + `
		FROM itinerary_jobs
		WHERE status = $1
		ORDER BY created_at DESC`
	args := []interface{}{string(status)}
	argIdx := 2

	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, opts.Limit)
		argIdx++
	}
	if opts.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIdx)
		args = append(args, opts.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("wayfarer/postgres: list jobs by status: %w", err)
	}
	defer rows.Close()

	return collectJobs(rows)
}

// CountJobs returns the number of jobs matching the given options.
func (s *Store) CountJobs(ctx context.Context, opts job.CountOpts) (int64, error) {
	query := `SELECT COUNT(*) FROM itinerary_jobs WHERE 1=1`
	args := []interface{}{}

	if opts.Status != "" {
		query += " AND status = $1"
		args = append(args, string(opts.Status))
	}

	var count int64
	err := s.pool.QueryRow(ctx, query, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("wayfarer/postgres: count jobs: %w", err)
	}
	return count, nil
}

// scanJob scans a single job row.
func scanJob(row pgx.Row) (*job.Job, error) {
	var (
		j         job.Job
		idStr     string
		statusStr string
		itinJSON  []byte
		errText   *string
	)
	err := row.Scan(
		&idStr, &statusStr, &j.Destination, &j.DurationDays,
		&itinJSON, &errText, &j.CreatedAt, &j.CompletedAt,
	)
	if err != nil {
		return nil, err
	}

	j.Status = job.Status(statusStr)
	if errText != nil {
		j.Error = *errText
	}
	if itinJSON != nil {
		var days []itinerary.Day
		if unmarshalErr := json.Unmarshal(itinJSON, &days); unmarshalErr != nil {
			return nil, fmt.Errorf("wayfarer/postgres: decode itinerary: %w", unmarshalErr)
		}
		j.Itinerary = days
	}

	parsedID, parseErr := id.ParseJobID(idStr)
	if parseErr != nil {
		return nil, fmt.Errorf("wayfarer/postgres: parse job id %q: %w", idStr, parseErr)
	}
	j.ID = parsedID

	return &j, nil
}

// collectJobs collects all jobs from query rows.
func collectJobs(rows pgx.Rows) ([]*job.Job, error) {
	var jobs []*job.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("wayfarer/postgres: scan job row: %w", err)
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("wayfarer/postgres: iterate job rows: %w", err)
	}
	return jobs, nil
}
