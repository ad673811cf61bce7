package job

import (
	"fmt"
	"strings"
	"time"

	"github.com/xraph/wayfarer"
	"github.com/xraph/wayfarer/id"
	"github.com/xraph/wayfarer/itinerary"
)

// Status represents the lifecycle status of an itinerary job.
type Status string

const (
	// StatusProcessing means generation is queued or in flight.
	StatusProcessing Status = "processing"
	// StatusCompleted means generation succeeded and the itinerary is stored.
	StatusCompleted Status = "completed"
	// StatusFailed means generation failed and the error message is stored.
	StatusFailed Status = "failed"
)

// Terminal reports whether the status admits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Valid reports whether s is one of the defined statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusProcessing, StatusCompleted, StatusFailed:
		return true
	default:
		return false
	}
}

// Job is one itinerary-generation request and its outcome. The store owns
// the record after creation; CreatedAt and CompletedAt are assigned by the
// store, never by callers.
type Job struct {
	ID           id.JobID        `json:"jobId"`
	Status       Status          `json:"status"`
	Destination  string          `json:"destination"`
	DurationDays int             `json:"durationDays"`
	CreatedAt    time.Time       `json:"createdAt"`
	CompletedAt  *time.Time      `json:"completedAt,omitempty"`
	Itinerary    []itinerary.Day `json:"itinerary,omitempty"`
	Error        string          `json:"error,omitempty"`
}

// New builds a processing-state job for the given request with a freshly
// generated ID. Timestamps are left zero for the store to assign.
func New(destination string, durationDays int) *Job {
	return &Job{
		ID:           id.NewJobID(),
		Status:       StatusProcessing,
		Destination:  destination,
		DurationDays: durationDays,
	}
}

// Clone returns a deep copy of the job. Stores hand out clones so callers
// can never mutate a stored record in place.
func (j *Job) Clone() *Job {
	c := *j
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		c.CompletedAt = &t
	}
	if j.Itinerary != nil {
		c.Itinerary = make([]itinerary.Day, len(j.Itinerary))
		copy(c.Itinerary, j.Itinerary)
		for i, d := range j.Itinerary {
			acts := make([]itinerary.Activity, len(d.Activities))
			copy(acts, d.Activities)
			c.Itinerary[i].Activities = acts
		}
	}

	return &c
}

// Input bounds for trip duration.
const (
	MinDurationDays = 1
	MaxDurationDays = 30
)

// ValidateInput checks user-supplied generation parameters: destination must
// contain non-whitespace text and the duration must fall within
// [MinDurationDays, MaxDurationDays]. The HTTP layer rejects invalid input
// before a record is created; the engine validates again before persisting.
func ValidateInput(destination string, durationDays int) error {
	if strings.TrimSpace(destination) == "" {
		return fmt.Errorf("%w: destination must not be empty", wayfarer.ErrInvalidInput)
	}
	if durationDays < MinDurationDays || durationDays > MaxDurationDays {
		return fmt.Errorf("%w: duration must be between %d and %d days, got %d",
			wayfarer.ErrInvalidInput, MinDurationDays, MaxDurationDays, durationDays)
	}

	return nil
}
