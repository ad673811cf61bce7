package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/xraph/wayfarer"
	"github.com/xraph/wayfarer/id"
	"github.com/xraph/wayfarer/job"
)

// Ensure Store implements store.Store at compile time.
// We can't import store here (import cycle), so we verify each part.
var _ job.Store = (*Store)(nil)

// Store is a fully in-memory implementation of store.Store.
// Safe for concurrent access. Intended for unit testing and development.
type Store struct {
	mu sync.RWMutex

	jobs map[string]*job.Job
}

// New returns a new empty Store.
func New() *Store {
	return &Store{
		jobs: make(map[string]*job.Job),
	}
}

// ──────────────────────────────────────────────────
// Lifecycle: Migrate / Ping / Close
// ──────────────────────────────────────────────────

// Migrate is a no-op for the memory store.
func (m *Store) Migrate(_ context.Context) error { return nil }

// Ping always succeeds for the memory store.
func (m *Store) Ping(_ context.Context) error { return nil }

// Close is a no-op for the memory store.
func (m *Store) Close() error { return nil }

// ──────────────────────────────────────────────────
// Job Store
// ──────────────────────────────────────────────────

// CreateJob persists a new job in processing status and assigns CreatedAt.
func (m *Store) CreateJob(_ context.Context, j *job.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := j.ID.String()
	if _, exists := m.jobs[key]; exists {
		return wayfarer.ErrJobAlreadyExists
	}

	cp := j.Clone()
	cp.CreatedAt = time.Now().UTC()
	m.jobs[key] = cp

	// Reflect the assigned timestamp back to the caller, as the database
	// backends do.
	j.CreatedAt = cp.CreatedAt
	return nil
}

// GetJob retrieves a job by ID.
func (m *Store) GetJob(_ context.Context, jobID id.JobID) (*job.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	j, ok := m.jobs[jobID.String()]
	if !ok {
		return nil, wayfarer.ErrJobNotFound
	}
	return j.Clone(), nil
}

// FinishJob atomically applies a terminal update to a processing job and
// assigns CompletedAt.
func (m *Store) FinishJob(_ context.Context, jobID id.JobID, terminal job.Terminal) (*job.Job, error) {
	if err := terminal.Validate(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	j, ok := m.jobs[jobID.String()]
	if !ok {
		return nil, wayfarer.ErrJobNotFound
	}
	if j.Status != job.StatusProcessing {
		return nil, wayfarer.ErrInvalidTransition
	}

	terminal.Apply(j)
	now := time.Now().UTC()
	j.CompletedAt = &now

	return j.Clone(), nil
}

// ListJobsByStatus returns jobs matching the given status, newest first.
func (m *Store) ListJobsByStatus(_ context.Context, status job.Status, opts job.ListOpts) ([]*job.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*job.Job, 0, len(m.jobs))
	for _, j := range m.jobs {
		if j.Status != status {
			continue
		}
		result = append(result, j.Clone())
	}

	// Sort by CreatedAt descending for deterministic output.
	sort.Slice(result, func(i, k int) bool {
		return result[i].CreatedAt.After(result[k].CreatedAt)
	})

	// Apply offset / limit.
	if opts.Offset > 0 {
		if opts.Offset >= len(result) {
			return nil, nil
		}
		result = result[opts.Offset:]
	}
	if opts.Limit > 0 && len(result) > opts.Limit {
		result = result[:opts.Limit]
	}

	return result, nil
}

// CountJobs returns the number of jobs matching the given options.
func (m *Store) CountJobs(_ context.Context, opts job.CountOpts) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var count int64
	for _, j := range m.jobs {
		if opts.Status != "" && j.Status != opts.Status {
			continue
		}
		count++
	}
	return count, nil
}
