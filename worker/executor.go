// Package worker provides the generation execution engine: an Executor that
// runs one job's itinerary generation through middleware and writes the
// terminal record, and a Pool of goroutines draining a bounded task queue.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xraph/wayfarer/itinerary"
	"github.com/xraph/wayfarer/job"
	"github.com/xraph/wayfarer/middleware"
)

// Generator produces an itinerary for a destination and duration.
// *planner.Planner satisfies it.
type Generator interface {
	Plan(ctx context.Context, destination string, days int) ([]itinerary.Day, error)
}

// Executor runs a single job's generation through the middleware chain and
// persists the outcome as the job's one terminal write.
type Executor struct {
	generator Generator
	store     job.Store
	mw        middleware.Middleware
	logger    *slog.Logger
}

// NewExecutor creates an Executor with the given dependencies.
func NewExecutor(
	generator Generator,
	store job.Store,
	logger *slog.Logger,
	mws ...middleware.Middleware,
) *Executor {
	return &Executor{
		generator: generator,
		store:     store,
		mw:        middleware.Chain(mws...),
		logger:    logger,
	}
}

// Execute runs one generation task end to end and returns the stored
// terminal record. On generation success the record finishes completed; on
// any generation error (including timeout and recovered panics) it finishes
// failed with the error message. A failed completed-write falls back to
// recording the job as failed, so the client always reaches a terminal
// state. Execute returns an error only when no terminal record could be
// written at all.
func (e *Executor) Execute(ctx context.Context, j *job.Job) (*job.Job, error) {
	var days []itinerary.Day

	// The terminal handler that calls the planner.
	terminal := func(ctx context.Context) error {
		var genErr error
		days, genErr = e.generator.Plan(ctx, j.Destination, j.DurationDays)
		return genErr
	}

	if err := e.mw(ctx, j, terminal); err != nil {
		return e.finishFailed(ctx, j, err)
	}

	final, err := e.store.FinishJob(ctx, j.ID, job.Completed(days))
	if err != nil {
		e.logger.Error("failed to record completed itinerary",
			slog.String("job_id", j.ID.String()),
			slog.String("error", err.Error()),
		)
		// The itinerary cannot be stored. Fail the record so the client
		// sees a terminal state instead of polling forever.
		return e.finishFailed(ctx, j, fmt.Errorf("store completed itinerary: %w", err))
	}
	return final, nil
}

// finishFailed records the job as failed with the cause's message.
func (e *Executor) finishFailed(ctx context.Context, j *job.Job, cause error) (*job.Job, error) {
	final, err := e.store.FinishJob(ctx, j.ID, job.Failed(cause))
	if err != nil {
		e.logger.Error("failed to record failed job",
			slog.String("job_id", j.ID.String()),
			slog.String("cause", cause.Error()),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("record failed job %s: %w", j.ID.String(), err)
	}
	return final, nil
}
