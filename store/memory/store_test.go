package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xraph/wayfarer"
	"github.com/xraph/wayfarer/id"
	"github.com/xraph/wayfarer/itinerary"
	"github.com/xraph/wayfarer/job"
)

// ──────────────────────────────────────────────────
// Lifecycle tests
// ──────────────────────────────────────────────────

func TestLifecycle(t *testing.T) {
	t.Parallel()
	s := New()
	ctx := context.Background()

	tests := []struct {
		name string
		fn   func() error
	}{
		{"Migrate", func() error { return s.Migrate(ctx) }},
		{"Ping", func() error { return s.Ping(ctx) }},
		{"Close", func() error { return s.Close() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.fn(); err != nil {
				t.Fatalf("%s returned error: %v", tt.name, err)
			}
		})
	}
}

// ──────────────────────────────────────────────────
// Job Store tests
// ──────────────────────────────────────────────────

func sampleDays() []itinerary.Day {
	return []itinerary.Day{
		{Day: 1, Theme: "Arrival", Activities: []itinerary.Activity{
			{Time: "14:00", Description: "Check in", Location: "Hotel"},
		}},
	}
}

func TestCreateAndGet(t *testing.T) {
	t.Parallel()
	s := New()
	ctx := context.Background()

	j := job.New("Tokyo", 7)

	tests := []struct {
		name    string
		fn      func() error
		wantErr error
	}{
		{
			name:    "create new job",
			fn:      func() error { return s.CreateJob(ctx, j) },
			wantErr: nil,
		},
		{
			name:    "create duplicate job",
			fn:      func() error { return s.CreateJob(ctx, j) },
			wantErr: wayfarer.ErrJobAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.fn()
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("got error %v, want %v", err, tt.wantErr)
			}
		})
	}

	if j.CreatedAt.IsZero() {
		t.Fatal("CreateJob must assign CreatedAt")
	}

	// Verify Get.
	got, err := s.GetJob(ctx, j.ID)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if got.Destination != "Tokyo" || got.DurationDays != 7 {
		t.Fatalf("request fields mismatch: %+v", got)
	}
	if got.Status != job.StatusProcessing {
		t.Fatalf("got status %q, want processing", got.Status)
	}

	// Get non-existent.
	_, err = s.GetJob(ctx, id.NewJobID())
	if !errors.Is(err, wayfarer.ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound, got %v", err)
	}
}

func TestGetReturnsCopy(t *testing.T) {
	t.Parallel()
	s := New()
	ctx := context.Background()

	j := job.New("Rome", 3)
	if err := s.CreateJob(ctx, j); err != nil {
		t.Fatalf("CreateJob: %v", err)
	}

	got, err := s.GetJob(ctx, j.ID)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	got.Destination = "mutated"

	again, err := s.GetJob(ctx, j.ID)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if again.Destination != "Rome" {
		t.Fatal("store handed out its internal record instead of a copy")
	}
}

func TestFinishJobCompleted(t *testing.T) {
	t.Parallel()
	s := New()
	ctx := context.Background()

	j := job.New("Lisbon", 2)
	if err := s.CreateJob(ctx, j); err != nil {
		t.Fatalf("CreateJob: %v", err)
	}

	updated, err := s.FinishJob(ctx, j.ID, job.Completed(sampleDays()))
	if err != nil {
		t.Fatalf("FinishJob: %v", err)
	}

	if updated.Status != job.StatusCompleted {
		t.Fatalf("got status %q, want completed", updated.Status)
	}
	if updated.CompletedAt == nil {
		t.Fatal("FinishJob must assign CompletedAt")
	}
	if updated.CompletedAt.Before(updated.CreatedAt) {
		t.Fatalf("CompletedAt %v precedes CreatedAt %v", updated.CompletedAt, updated.CreatedAt)
	}
	if len(updated.Itinerary) != 1 {
		t.Fatalf("itinerary not stored: %+v", updated.Itinerary)
	}
	if updated.Error != "" {
		t.Fatalf("completed job carries error %q", updated.Error)
	}
}

func TestFinishJobFailed(t *testing.T) {
	t.Parallel()
	s := New()
	ctx := context.Background()

	j := job.New("Oslo", 4)
	if err := s.CreateJob(ctx, j); err != nil {
		t.Fatalf("CreateJob: %v", err)
	}

	updated, err := s.FinishJob(ctx, j.ID, job.Failed(errors.New("model returned prose")))
	if err != nil {
		t.Fatalf("FinishJob: %v", err)
	}

	if updated.Status != job.StatusFailed {
		t.Fatalf("got status %q, want failed", updated.Status)
	}
	if updated.Error != "model returned prose" {
		t.Fatalf("got error %q", updated.Error)
	}
	if updated.Itinerary != nil {
		t.Fatalf("failed job carries itinerary: %+v", updated.Itinerary)
	}
	if updated.CompletedAt == nil {
		t.Fatal("FinishJob must assign CompletedAt")
	}
}

func TestFinishJobGuards(t *testing.T) {
	t.Parallel()
	s := New()
	ctx := context.Background()

	j := job.New("Berlin", 5)
	if err := s.CreateJob(ctx, j); err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	if _, err := s.FinishJob(ctx, j.ID, job.Completed(sampleDays())); err != nil {
		t.Fatalf("first FinishJob: %v", err)
	}

	tests := []struct {
		name     string
		jobID    id.JobID
		terminal job.Terminal
		wantErr  error
	}{
		{
			name:     "already terminal",
			jobID:    j.ID,
			terminal: job.Failed(errors.New("late failure")),
			wantErr:  wayfarer.ErrInvalidTransition,
		},
		{
			name:     "unknown job",
			jobID:    id.NewJobID(),
			terminal: job.Completed(sampleDays()),
			wantErr:  wayfarer.ErrJobNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.FinishJob(ctx, tt.jobID, tt.terminal)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("got error %v, want %v", err, tt.wantErr)
			}
		})
	}

	// The terminal record is untouched by the rejected write.
	got, err := s.GetJob(ctx, j.ID)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if got.Status != job.StatusCompleted || got.Error != "" {
		t.Fatalf("rejected write mutated the record: %+v", got)
	}
}

func TestFinishJobRejectsMalformedTerminal(t *testing.T) {
	t.Parallel()
	s := New()
	ctx := context.Background()

	j := job.New("Madrid", 3)
	if err := s.CreateJob(ctx, j); err != nil {
		t.Fatalf("CreateJob: %v", err)
	}

	_, err := s.FinishJob(ctx, j.ID, job.Terminal{Status: job.StatusCompleted})
	if err == nil {
		t.Fatal("expected error for completed update without itinerary")
	}

	// Record stays processing.
	got, getErr := s.GetJob(ctx, j.ID)
	if getErr != nil {
		t.Fatalf("GetJob: %v", getErr)
	}
	if got.Status != job.StatusProcessing {
		t.Fatalf("malformed update mutated the record: %+v", got)
	}
}

func TestListJobsByStatus(t *testing.T) {
	t.Parallel()
	s := New()
	ctx := context.Background()

	var created []*job.Job
	for i := 0; i < 3; i++ {
		j := job.New("Porto", i+1)
		if err := s.CreateJob(ctx, j); err != nil {
			t.Fatalf("CreateJob: %v", err)
		}
		created = append(created, j)
		time.Sleep(time.Millisecond) // distinct CreatedAt for ordering
	}
	if _, err := s.FinishJob(ctx, created[0].ID, job.Completed(sampleDays())); err != nil {
		t.Fatalf("FinishJob: %v", err)
	}

	processing, err := s.ListJobsByStatus(ctx, job.StatusProcessing, job.ListOpts{})
	if err != nil {
		t.Fatalf("ListJobsByStatus: %v", err)
	}
	if len(processing) != 2 {
		t.Fatalf("expected 2 processing jobs, got %d", len(processing))
	}
	// Newest first.
	if processing[0].CreatedAt.Before(processing[1].CreatedAt) {
		t.Fatal("expected newest-first ordering")
	}

	completed, err := s.ListJobsByStatus(ctx, job.StatusCompleted, job.ListOpts{})
	if err != nil {
		t.Fatalf("ListJobsByStatus: %v", err)
	}
	if len(completed) != 1 {
		t.Fatalf("expected 1 completed job, got %d", len(completed))
	}

	// Limit and offset.
	limited, err := s.ListJobsByStatus(ctx, job.StatusProcessing, job.ListOpts{Limit: 1})
	if err != nil {
		t.Fatalf("ListJobsByStatus: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("expected 1 job with limit, got %d", len(limited))
	}
	none, err := s.ListJobsByStatus(ctx, job.StatusProcessing, job.ListOpts{Offset: 10})
	if err != nil {
		t.Fatalf("ListJobsByStatus: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected no jobs past offset, got %d", len(none))
	}
}

func TestCountJobs(t *testing.T) {
	t.Parallel()
	s := New()
	ctx := context.Background()

	a := job.New("Athens", 1)
	b := job.New("Athens", 2)
	for _, j := range []*job.Job{a, b} {
		if err := s.CreateJob(ctx, j); err != nil {
			t.Fatalf("CreateJob: %v", err)
		}
	}
	if _, err := s.FinishJob(ctx, a.ID, job.Failed(errors.New("boom"))); err != nil {
		t.Fatalf("FinishJob: %v", err)
	}

	tests := []struct {
		name string
		opts job.CountOpts
		want int64
	}{
		{"all", job.CountOpts{}, 2},
		{"processing", job.CountOpts{Status: job.StatusProcessing}, 1},
		{"failed", job.CountOpts{Status: job.StatusFailed}, 1},
		{"completed", job.CountOpts{Status: job.StatusCompleted}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.CountJobs(ctx, tt.opts)
			if err != nil {
				t.Fatalf("CountJobs: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestConcurrentAccess(t *testing.T) {
	t.Parallel()
	s := New()
	ctx := context.Background()

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for k := 0; k < 50; k++ {
				j := job.New("Rio", 3)
				if err := s.CreateJob(ctx, j); err != nil {
					t.Errorf("CreateJob: %v", err)
					return
				}
				if _, err := s.FinishJob(ctx, j.ID, job.Completed(sampleDays())); err != nil {
					t.Errorf("FinishJob: %v", err)
					return
				}
				if _, err := s.GetJob(ctx, j.ID); err != nil {
					t.Errorf("GetJob: %v", err)
					return
				}
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}

	count, err := s.CountJobs(ctx, job.CountOpts{Status: job.StatusCompleted})
	if err != nil {
		t.Fatalf("CountJobs: %v", err)
	}
	if count != 8*50 {
		t.Fatalf("expected %d completed jobs, got %d", 8*50, count)
	}
}
