package job

import (
	"context"

	"github.com/xraph/wayfarer/id"
)

// ListOpts controls pagination for job list queries.
type ListOpts struct {
	// Limit is the maximum number of jobs to return. Zero means no limit.
	Limit int
	// Offset is the number of jobs to skip.
	Offset int
}

// CountOpts controls filtering for job count queries.
type CountOpts struct {
	// Status filters by job status. Empty means all statuses.
	Status Status
}

// Store defines the persistence contract for itinerary jobs.
type Store interface {
	// CreateJob persists a new job in processing status. The store assigns
	// CreatedAt. A duplicate ID returns wayfarer.ErrJobAlreadyExists.
	CreateJob(ctx context.Context, j *Job) error

	// GetJob retrieves a job by ID. An unknown ID returns
	// wayfarer.ErrJobNotFound, never a default record.
	GetJob(ctx context.Context, jobID id.JobID) (*Job, error)

	// FinishJob atomically applies a terminal update to a processing job and
	// assigns CompletedAt. It returns the updated record. A job already in a
	// terminal status returns wayfarer.ErrInvalidTransition and is left
	// unchanged; an unknown ID returns wayfarer.ErrJobNotFound.
	FinishJob(ctx context.Context, jobID id.JobID, terminal Terminal) (*Job, error)

	// ListJobsByStatus returns jobs matching the given status, newest first.
	ListJobsByStatus(ctx context.Context, status Status, opts ListOpts) ([]*Job, error)

	// CountJobs returns the number of jobs matching the given options.
	CountJobs(ctx context.Context, opts CountOpts) (int64, error)
}
