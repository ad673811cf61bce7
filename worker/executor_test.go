package worker_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/xraph/wayfarer/id"
	"github.com/xraph/wayfarer/itinerary"
	"github.com/xraph/wayfarer/job"
	"github.com/xraph/wayfarer/middleware"
	"github.com/xraph/wayfarer/store/memory"
	"github.com/xraph/wayfarer/worker"
)

// ──────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleDays() []itinerary.Day {
	return []itinerary.Day{
		{
			Day:   1,
			Theme: "Arrival",
			Activities: []itinerary.Activity{
				{Time: "9:00 AM", Description: "Check in", Location: "Hotel Azul"},
			},
		},
	}
}

// stubPlanner returns canned days or a canned error, optionally after a
// delay that respects context cancellation.
type stubPlanner struct {
	days  []itinerary.Day
	err   error
	delay time.Duration

	calls atomic.Int64
}

func (s *stubPlanner) Plan(ctx context.Context, _ string, _ int) ([]itinerary.Day, error) {
	s.calls.Add(1)
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.days, nil
}

// panicPlanner blows up to exercise the recover middleware.
type panicPlanner struct{}

func (panicPlanner) Plan(context.Context, string, int) ([]itinerary.Day, error) {
	panic("planner exploded")
}

// createJob writes a fresh processing job into the store.
func createJob(t *testing.T, s *memory.Store) *job.Job {
	t.Helper()
	j := job.New("Lisbon", 3)
	if err := s.CreateJob(context.Background(), j); err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	return j
}

// flakyStore rejects completed terminal writes while letting failed ones
// through.
type flakyStore struct {
	job.Store
}

func (s *flakyStore) FinishJob(ctx context.Context, jobID id.JobID, terminal job.Terminal) (*job.Job, error) {
	if terminal.Status == job.StatusCompleted {
		return nil, errors.New("write rejected")
	}
	return s.Store.FinishJob(ctx, jobID, terminal)
}

// ──────────────────────────────────────────────────
// Executor
// ──────────────────────────────────────────────────

func TestExecutorCompletes(t *testing.T) {
	s := memory.New()
	gen := &stubPlanner{days: sampleDays()}
	ex := worker.NewExecutor(gen, s, testLogger(), middleware.Recover(testLogger()))
	j := createJob(t, s)

	final, err := ex.Execute(context.Background(), j)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if final.Status != job.StatusCompleted {
		t.Errorf("status = %q, want %q", final.Status, job.StatusCompleted)
	}
	if len(final.Itinerary) != 1 {
		t.Errorf("itinerary days = %d, want 1", len(final.Itinerary))
	}
	if final.CompletedAt == nil {
		t.Error("expected CompletedAt to be set")
	}

	got, err := s.GetJob(context.Background(), j.ID)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if got.Status != job.StatusCompleted {
		t.Errorf("stored status = %q, want %q", got.Status, job.StatusCompleted)
	}
}

func TestExecutorFailsOnPlannerError(t *testing.T) {
	s := memory.New()
	gen := &stubPlanner{err: errors.New("model unavailable")}
	ex := worker.NewExecutor(gen, s, testLogger())
	j := createJob(t, s)

	final, err := ex.Execute(context.Background(), j)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if final.Status != job.StatusFailed {
		t.Errorf("status = %q, want %q", final.Status, job.StatusFailed)
	}
	if !strings.Contains(final.Error, "model unavailable") {
		t.Errorf("error = %q, want the planner message recorded", final.Error)
	}
	if final.Itinerary != nil {
		t.Errorf("itinerary = %v, want nil on a failed record", final.Itinerary)
	}
}

func TestExecutorRecoversPanic(t *testing.T) {
	s := memory.New()
	ex := worker.NewExecutor(panicPlanner{}, s, testLogger(), middleware.Recover(testLogger()))
	j := createJob(t, s)

	final, err := ex.Execute(context.Background(), j)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if final.Status != job.StatusFailed {
		t.Errorf("status = %q, want %q", final.Status, job.StatusFailed)
	}
	if !strings.Contains(final.Error, "panic") {
		t.Errorf("error = %q, want the panic recorded", final.Error)
	}
}

func TestExecutorTimeout(t *testing.T) {
	s := memory.New()
	gen := &stubPlanner{days: sampleDays(), delay: 5 * time.Second}
	ex := worker.NewExecutor(gen, s, testLogger(),
		middleware.Recover(testLogger()),
		middleware.Timeout(30*time.Millisecond),
	)
	j := createJob(t, s)

	final, err := ex.Execute(context.Background(), j)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if final.Status != job.StatusFailed {
		t.Errorf("status = %q, want %q", final.Status, job.StatusFailed)
	}
	if !strings.Contains(final.Error, context.DeadlineExceeded.Error()) {
		t.Errorf("error = %q, want deadline exceeded recorded", final.Error)
	}
}

func TestExecutorCompletedWriteFallsBackToFailed(t *testing.T) {
	mem := memory.New()
	s := &flakyStore{Store: mem}
	gen := &stubPlanner{days: sampleDays()}
	ex := worker.NewExecutor(gen, s, testLogger())

	j := job.New("Porto", 2)
	if err := mem.CreateJob(context.Background(), j); err != nil {
		t.Fatalf("CreateJob: %v", err)
	}

	final, err := ex.Execute(context.Background(), j)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if final.Status != job.StatusFailed {
		t.Errorf("status = %q, want %q", final.Status, job.StatusFailed)
	}
	if !strings.Contains(final.Error, "store completed itinerary") {
		t.Errorf("error = %q, want the store failure recorded", final.Error)
	}

	got, err := mem.GetJob(context.Background(), j.ID)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if got.Status != job.StatusFailed {
		t.Errorf("stored status = %q, want %q", got.Status, job.StatusFailed)
	}
}

func TestExecutorUnwritableStore(t *testing.T) {
	mem := memory.New()
	s := &flakyStore{Store: mem}
	gen := &stubPlanner{days: sampleDays()}
	ex := worker.NewExecutor(gen, s, testLogger())

	// The job never existed, so even the failed-record write cannot land.
	j := job.New("Ghost Town", 1)

	if _, err := ex.Execute(context.Background(), j); err == nil {
		t.Fatal("expected error when no terminal record can be written")
	}
}
