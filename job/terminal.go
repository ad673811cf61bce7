package job

import (
	"fmt"

	"github.com/xraph/wayfarer/itinerary"
)

// Terminal describes the single atomic update that moves a processing job to
// its final status. It replaces ad-hoc field mutation: the store applies all
// terminal fields in one write and assigns CompletedAt itself.
type Terminal struct {
	Status    Status
	Itinerary []itinerary.Day
	Error     string
}

// Completed builds the terminal update for a successful generation.
func Completed(days []itinerary.Day) Terminal {
	if days == nil {
		days = []itinerary.Day{}
	}

	return Terminal{Status: StatusCompleted, Itinerary: days}
}

// Failed builds the terminal update for a failed generation.
func Failed(err error) Terminal {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}

	return Terminal{Status: StatusFailed, Error: msg}
}

// Validate checks the exactly-one invariant: a completed update carries an
// itinerary and no error, a failed update carries an error and no itinerary.
// Stores call this before writing.
func (t Terminal) Validate() error {
	switch t.Status {
	case StatusCompleted:
		if t.Itinerary == nil {
			return fmt.Errorf("job: completed update without itinerary")
		}
		if t.Error != "" {
			return fmt.Errorf("job: completed update carries error %q", t.Error)
		}
	case StatusFailed:
		if t.Error == "" {
			return fmt.Errorf("job: failed update without error message")
		}
		if t.Itinerary != nil {
			return fmt.Errorf("job: failed update carries an itinerary")
		}
	default:
		return fmt.Errorf("job: %q is not a terminal status", t.Status)
	}

	return nil
}

// Apply copies the terminal fields onto a job record. The store sets
// CompletedAt separately; Apply never touches timestamps.
func (t Terminal) Apply(j *Job) {
	j.Status = t.Status
	j.Itinerary = t.Itinerary
	j.Error = t.Error
}
