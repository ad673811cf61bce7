package store

import (
	"context"

	"github.com/xraph/wayfarer/job"
)

// Store is the aggregate persistence interface. A single backend need only
// implement Store to satisfy the job subsystem's persistence contract plus
// lifecycle operations.
type Store interface {
	job.Store

	// Migrate runs all schema migrations.
	Migrate(ctx context.Context) error

	// Ping checks backend connectivity.
	Ping(ctx context.Context) error

	// Close closes the store connection.
	Close() error
}
