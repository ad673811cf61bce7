package worker

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/xraph/wayfarer"
	"github.com/xraph/wayfarer/job"
)

// Task is one unit of generation work.
type Task struct {
	Job *job.Job
}

// Pool manages a fixed set of worker goroutines draining a bounded task
// queue. Submit never blocks: a full queue rejects the task with
// wayfarer.ErrQueueFull and the caller decides what happens to the record.
type Pool struct {
	executor *Executor
	workers  int
	capacity int
	logger   *slog.Logger

	tasks  chan Task
	stopCh chan struct{}
	wg     sync.WaitGroup

	mu      sync.Mutex
	running bool

	activeJobs map[string]context.CancelFunc
	activeMu   sync.Mutex

	submitted atomic.Int64
	active    atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64
}

// PoolOption configures a Pool.
type PoolOption func(*Pool)

// WithWorkers sets the number of concurrent worker goroutines.
func WithWorkers(n int) PoolOption {
	return func(p *Pool) { p.workers = n }
}

// WithQueueCapacity sets the size of the bounded task queue.
func WithQueueCapacity(n int) PoolOption {
	return func(p *Pool) { p.capacity = n }
}

// NewPool creates a worker pool around the executor.
func NewPool(executor *Executor, logger *slog.Logger, opts ...PoolOption) *Pool {
	p := &Pool{
		executor:   executor,
		workers:    4,
		capacity:   64,
		logger:     logger,
		stopCh:     make(chan struct{}),
		activeJobs: make(map[string]context.CancelFunc),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.tasks = make(chan Task, p.capacity)
	return p
}

// Submit queues a task for execution without blocking. A full queue returns
// wayfarer.ErrQueueFull.
func (p *Pool) Submit(t Task) error {
	select {
	case p.tasks <- t:
		p.submitted.Add(1)
		return nil
	default:
		return wayfarer.ErrQueueFull
	}
}

// Start launches the worker goroutines. It returns immediately.
func (p *Pool) Start(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return nil
	}
	p.running = true

	p.logger.Info("worker pool starting",
		slog.Int("workers", p.workers),
		slog.Int("queue_capacity", p.capacity),
	)

	for range p.workers {
		p.wg.Add(1)
		go p.runLoop()
	}

	return nil
}

// Stop signals all workers to stop and waits for them to finish draining
// the queue. If the context expires first, active runs are cancelled.
func (p *Pool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = false
	p.mu.Unlock()

	p.logger.Info("worker pool stopping")

	// Signal all workers to stop.
	close(p.stopCh)

	// Wait for completion or context deadline.
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("worker pool stopped gracefully")
	case <-ctx.Done():
		p.logger.Warn("worker pool shutdown timed out, cancelling active runs")
		p.cancelActiveRuns()
		p.wg.Wait()
	}

	return nil
}

// Snapshot is a point-in-time view of pool activity.
type Snapshot struct {
	Workers       int   `json:"workers"`
	QueueCapacity int   `json:"queueCapacity"`
	QueueDepth    int   `json:"queueDepth"`
	Submitted     int64 `json:"submitted"`
	Active        int64 `json:"active"`
	Completed     int64 `json:"completed"`
	Failed        int64 `json:"failed"`
}

// Snapshot returns current pool counters.
func (p *Pool) Snapshot() Snapshot {
	return Snapshot{
		Workers:       p.workers,
		QueueCapacity: p.capacity,
		QueueDepth:    len(p.tasks),
		Submitted:     p.submitted.Load(),
		Active:        p.active.Load(),
		Completed:     p.completed.Load(),
		Failed:        p.failed.Load(),
	}
}

// runLoop is run by each worker goroutine. After stop is signalled the
// worker finishes whatever is already queued before exiting.
func (p *Pool) runLoop() {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopCh:
			for {
				select {
				case t := <-p.tasks:
					p.run(t)
				default:
					return
				}
			}
		case t := <-p.tasks:
			p.run(t)
		}
	}
}

// run executes one task. The run context is independent of the submitter's
// request context; cancellation comes only from pool shutdown.
func (p *Pool) run(t Task) {
	p.active.Add(1)
	defer p.active.Add(-1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	key := t.Job.ID.String()
	p.trackRun(key, cancel)
	defer p.untrackRun(key)

	final, err := p.executor.Execute(ctx, t.Job)
	if err != nil {
		p.failed.Add(1)
		p.logger.Error("task execution failed",
			slog.String("job_id", key),
			slog.String("error", err.Error()),
		)
		return
	}

	if final.Status == job.StatusCompleted {
		p.completed.Add(1)
	} else {
		p.failed.Add(1)
	}
}

func (p *Pool) trackRun(jobID string, cancel context.CancelFunc) {
	p.activeMu.Lock()
	p.activeJobs[jobID] = cancel
	p.activeMu.Unlock()
}

func (p *Pool) untrackRun(jobID string) {
	p.activeMu.Lock()
	delete(p.activeJobs, jobID)
	p.activeMu.Unlock()
}

func (p *Pool) cancelActiveRuns() {
	p.activeMu.Lock()
	defer p.activeMu.Unlock()
	for jobID, cancel := range p.activeJobs {
		p.logger.Warn("cancelling active run", slog.String("job_id", jobID))
		cancel()
	}
}
