package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/xraph/wayfarer"
	"github.com/xraph/wayfarer/id"
	"github.com/xraph/wayfarer/itinerary"
	"github.com/xraph/wayfarer/job"
)

const jobColumns = `id, status, destination, duration_days, itinerary, error, created_at, completed_at`

// CreateJob persists a new job in processing status and assigns CreatedAt.
func (s *Store) CreateJob(ctx context.Context, j *job.Job) error {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO itinerary_jobs (id, status, destination, duration_days, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		j.ID.String(), string(j.Status), j.Destination, j.DurationDays, encodeTime(now),
	)
	if err != nil {
		if isDuplicateKey(err) {
			return wayfarer.ErrJobAlreadyExists
		}
		return fmt.Errorf("wayfarer/sqlite: create job: %w", err)
	}
	j.CreatedAt = now
	return nil
}

// GetJob retrieves a job by ID.
func (s *Store) GetJob(ctx context.Context, jobID id.JobID) (*job.Job, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+jobColumns+`
		FROM itinerary_jobs
		WHERE id = ?`,
		jobID.String(),
	)

	j, err := scanJob(row)
	if err != nil {
		if isNoRows(err) {
			return nil, wayfarer.ErrJobNotFound
		}
		return nil, fmt.Errorf("wayfarer/sqlite: get job: %w", err)
	}
	return j, nil
}

// FinishJob atomically applies a terminal update to a processing job.
// The status predicate makes the transition atomic: a record that already
// reached completed or failed matches no row, so terminal fields are
// written at most once.
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
			return nil, fmt.Errorf("wayfarer/sqlite: marshal itinerary: %w", err)
		}
		itinJSON = data
	}
	if terminal.Status == job.StatusFailed {
		errText = &terminal.Error
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE itinerary_jobs
		SET status = ?, itinerary = ?, error = ?, completed_at = ?
		WHERE id = ? AND status = 'processing'`,
		string(terminal.Status), itinJSON, errText, encodeTime(time.Now()), jobID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("wayfarer/sqlite: finish job: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("wayfarer/sqlite: finish job rows affected: %w", err)
	}
	if n == 0 {
		return nil, s.finishMiss(ctx, jobID)
	}

	// The record is terminal now and cannot change again, so a plain
	// re-read returns exactly what the update wrote.
	return s.GetJob(ctx, jobID)
}

// finishMiss distinguishes the two reasons a guarded terminal write can
// match nothing: the record is absent, or it already left processing.
func (s *Store) finishMiss(ctx context.Context, jobID id.JobID) error {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM itinerary_jobs WHERE id = ?)`,
		jobID.String(),
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("wayfarer/sqlite: finish job lookup: %w", err)
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
		WHERE status = ?
		ORDER BY created_at DESC`
	args := []interface{}{string(status)}

	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}
	if opts.Offset > 0 {
		// SQLite requires a LIMIT clause before OFFSET; -1 means no cap.
		if opts.Limit <= 0 {
			query += " LIMIT -1"
		}
		query += " OFFSET ?"
		args = append(args, opts.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("wayfarer/sqlite: list jobs by status: %w", err)
	}
	defer rows.Close()

	return collectJobs(rows)
}

// CountJobs returns the number of jobs matching the given options.
func (s *Store) CountJobs(ctx context.Context, opts job.CountOpts) (int64, error) {
	query := `SELECT COUNT(*) FROM itinerary_jobs WHERE 1=1`
	args := []interface{}{}

	if opts.Status != "" {
		query += " AND status = ?"
		args = append(args, string(opts.Status))
	}

	var count int64
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("wayfarer/sqlite: count jobs: %w", err)
	}
	return count, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanJob scans a single job row.
func scanJob(row scanner) (*job.Job, error) {
	var (
		j            job.Job
		idStr        string
		statusStr    string
		itinJSON     []byte
		errText      sql.NullString
		createdStr   string
		completedStr sql.NullString
	)
	err := row.Scan(
		&idStr, &statusStr, &j.Destination, &j.DurationDays,
		&itinJSON, &errText, &createdStr, &completedStr,
	)
	if err != nil {
		return nil, err
	}

	j.Status = job.Status(statusStr)
	if errText.Valid {
		j.Error = errText.String
	}
	if itinJSON != nil {
		var days []itinerary.Day
		if unmarshalErr := json.Unmarshal(itinJSON, &days); unmarshalErr != nil {
			return nil, fmt.Errorf("wayfarer/sqlite: decode itinerary: %w", unmarshalErr)
		}
		j.Itinerary = days
	}

	created, err := decodeTime(createdStr)
	if err != nil {
		return nil, err
	}
	j.CreatedAt = created

	if completedStr.Valid {
		completed, decodeErr := decodeTime(completedStr.String)
		if decodeErr != nil {
			return nil, decodeErr
		}
		j.CompletedAt = &completed
	}

	parsedID, parseErr := id.ParseJobID(idStr)
	if parseErr != nil {
		return nil, fmt.Errorf("wayfarer/sqlite: parse job id %q: %w", idStr, parseErr)
	}
	j.ID = parsedID

	return &j, nil
}

// collectJobs collects all jobs from query rows.
func collectJobs(rows *sql.Rows) ([]*job.Job, error) {
	var jobs []*job.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("wayfarer/sqlite: scan job row: %w", err)
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("wayfarer/sqlite: iterate job rows: %w", err)
	}
	return jobs, nil
}
