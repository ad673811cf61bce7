package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/xraph/wayfarer"
	"github.com/xraph/wayfarer/id"
	"github.com/xraph/wayfarer/job"
	mw "github.com/xraph/wayfarer/middleware"
	"github.com/xraph/wayfarer/worker"
)

// Engine coordinates job creation, background generation, and reads.
// Use New to create one from a store and a planner.
type Engine struct {
	store     job.Store
	generator worker.Generator
	cfg       wayfarer.Config
	logger    *slog.Logger
	mws       []mw.Middleware

	// OpenTelemetry providers (optional; nil means use global).
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider

	executor *worker.Executor
	pool     *worker.Pool
}

// Option configures an Engine.
type Option func(*Engine)

// WithPlanner sets the generator that produces itineraries.
// *planner.Planner is the canonical implementation.
func WithPlanner(g worker.Generator) Option {
	return func(eng *Engine) {
		eng.generator = g
	}
}

// WithConfig replaces the engine configuration wholesale. Later targeted
// options (WithWorkers, WithGenerationTimeout, ...) still apply on top.
func WithConfig(cfg wayfarer.Config) Option {
	return func(eng *Engine) {
		eng.cfg = cfg
	}
}

// WithWorkers sets the number of goroutines executing generation runs.
func WithWorkers(n int) Option {
	return func(eng *Engine) {
		eng.cfg.Workers = n
	}
}

// WithQueueCapacity sets the size of the pending-generation buffer.
func WithQueueCapacity(n int) Option {
	return func(eng *Engine) {
		eng.cfg.QueueCapacity = n
	}
}

// WithGenerationTimeout sets the deadline for a single generation run.
// Zero or negative disables the deadline.
func WithGenerationTimeout(d time.Duration) Option {
	return func(eng *Engine) {
		eng.cfg.GenerationTimeout = d
	}
}

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(eng *Engine) {
		eng.logger = logger
	}
}

// WithMiddleware appends middleware to the execution chain, after the
// built-in recover/tracing/metrics/logging/timeout stack.
func WithMiddleware(m mw.Middleware) Option {
	return func(eng *Engine) {
		eng.mws = append(eng.mws, m)
	}
}

// WithTracerProvider sets a custom OTel TracerProvider for the engine.
// If not set, the global otel.GetTracerProvider() is used.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(eng *Engine) {
		eng.tracerProvider = tp
	}
}

// WithMeterProvider sets a custom OTel MeterProvider for the engine.
// If not set, the global otel.GetMeterProvider() is used.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(eng *Engine) {
		eng.meterProvider = mp
	}
}

// New creates an Engine from a job store and options. A planner is
// required; everything else has defaults from wayfarer.DefaultConfig().
func New(store job.Store, opts ...Option) (*Engine, error) {
	if store == nil {
		return nil, wayfarer.ErrNoStore
	}

	eng := &Engine{
		store:  store,
		cfg:    wayfarer.DefaultConfig(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.generator == nil {
		return nil, wayfarer.ErrNoPlanner
	}

	// Build tracing middleware (custom provider or global).
	var tracingMw mw.Middleware
	if eng.tracerProvider != nil {
		tracingMw = mw.TracingWithTracer(eng.tracerProvider.Tracer("github.com/xraph/wayfarer"))
	} else {
		tracingMw = mw.Tracing()
	}

	// Build metrics middleware (custom provider or global).
	var metricsMw mw.Middleware
	if eng.meterProvider != nil {
		metricsMw = mw.MetricsWithMeter(eng.meterProvider.Meter("github.com/xraph/wayfarer"))
	} else {
		metricsMw = mw.Metrics()
	}

	// Default middleware stack: recover → tracing → metrics → logging → timeout.
	defaultMws := []mw.Middleware{
		mw.Recover(eng.logger),
		tracingMw,
		metricsMw,
		mw.Logging(eng.logger),
		mw.Timeout(eng.cfg.GenerationTimeout),
	}
	allMws := make([]mw.Middleware, 0, len(defaultMws)+len(eng.mws))
	allMws = append(allMws, defaultMws...)
	allMws = append(allMws, eng.mws...)

	eng.executor = worker.NewExecutor(eng.generator, eng.store, eng.logger, allMws...)
	eng.pool = worker.NewPool(eng.executor, eng.logger,
		worker.WithWorkers(eng.cfg.Workers),
		worker.WithQueueCapacity(eng.cfg.QueueCapacity),
	)

	return eng, nil
}

// CreateJob validates the request, persists a processing-status record, and
// submits the generation task to the pool. The record's terminal fields are
// unset; clients poll GetJob until the background run finishes it.
//
// If the pool rejects the task because the queue is full, the record is
// finished as failed right away and wayfarer.ErrQueueFull is returned. The
// failed record remains readable as the durable trace of the request.
func (eng *Engine) CreateJob(ctx context.Context, destination string, durationDays int) (*job.Job, error) {
	if err := job.ValidateInput(destination, durationDays); err != nil {
		return nil, err
	}

	j := job.New(destination, durationDays)
	if err := eng.store.CreateJob(ctx, j); err != nil {
		return nil, fmt.Errorf("create job %s: %w", j.ID.String(), err)
	}

	if err := eng.pool.Submit(worker.Task{Job: j.Clone()}); err != nil {
		if _, finishErr := eng.store.FinishJob(ctx, j.ID, job.Failed(err)); finishErr != nil {
			eng.logger.Error("failed to record rejected job",
				slog.String("job_id", j.ID.String()),
				slog.String("error", finishErr.Error()),
			)
		}

		return nil, err
	}

	eng.logger.Info("job created",
		slog.String("job_id", j.ID.String()),
		slog.String("destination", j.Destination),
		slog.Int("duration_days", j.DurationDays),
	)

	return j, nil
}

// GetJob retrieves a job record by ID. An unknown ID returns
// wayfarer.ErrJobNotFound.
func (eng *Engine) GetJob(ctx context.Context, jobID id.JobID) (*job.Job, error) {
	return eng.store.GetJob(ctx, jobID)
}

// Stats reports per-status job counts from the store plus a snapshot of the
// worker pool counters.
type Stats struct {
	Processing int64           `json:"processing"`
	Completed  int64           `json:"completed"`
	Failed     int64           `json:"failed"`
	Total      int64           `json:"total"`
	Pool       worker.Snapshot `json:"pool"`
}

// Stats returns current service statistics.
func (eng *Engine) Stats(ctx context.Context) (Stats, error) {
	processing, err := eng.store.CountJobs(ctx, job.CountOpts{Status: job.StatusProcessing})
	if err != nil {
		return Stats{}, fmt.Errorf("count processing jobs: %w", err)
	}
	completed, err := eng.store.CountJobs(ctx, job.CountOpts{Status: job.StatusCompleted})
	if err != nil {
		return Stats{}, fmt.Errorf("count completed jobs: %w", err)
	}
	failed, err := eng.store.CountJobs(ctx, job.CountOpts{Status: job.StatusFailed})
	if err != nil {
		return Stats{}, fmt.Errorf("count failed jobs: %w", err)
	}

	return Stats{
		Processing: processing,
		Completed:  completed,
		Failed:     failed,
		Total:      processing + completed + failed,
		Pool:       eng.pool.Snapshot(),
	}, nil
}

// Start begins background generation by starting the worker pool.
func (eng *Engine) Start(ctx context.Context) error {
	return eng.pool.Start(ctx)
}

// Stop gracefully shuts down the engine: the pool drains queued tasks and
// waits for active runs until ctx expires, then cancels them.
func (eng *Engine) Stop(ctx context.Context) error {
	return eng.pool.Stop(ctx)
}

// Pool returns the engine's worker pool.
func (eng *Engine) Pool() *worker.Pool { return eng.pool }

// Store returns the engine's job store.
func (eng *Engine) Store() job.Store { return eng.store }
