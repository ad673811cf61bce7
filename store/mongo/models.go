package mongo

import (
	"fmt"
	"time"

	"github.com/xraph/wayfarer/id"
	"github.com/xraph/wayfarer/itinerary"
	"github.com/xraph/wayfarer/job"
)

// ── Job document ──────────────────────────────────────────────────
//
// The job ID doubles as the Mongo document key. Terminal fields are
// pointers so that a processing record stores explicit nulls, matching
// the persisted contract.

type jobDoc struct {
	ID           string          `bson:"_id"`
	Status       string          `bson:"status"`
	Destination  string          `bson:"destination"`
	DurationDays int             `bson:"durationDays"`
	CreatedAt    time.Time       `bson:"createdAt"`
	CompletedAt  *time.Time      `bson:"completedAt"`
	Itinerary    []itinerary.Day `bson:"itinerary"`
	Error        *string         `bson:"error"`
}

func fromJobDoc(d *jobDoc) (*job.Job, error) {
	parsedID, err := id.ParseJobID(d.ID)
	if err != nil {
		return nil, fmt.Errorf("wayfarer/mongo: parse job id %q: %w", d.ID, err)
	}

	j := &job.Job{
		ID:           parsedID,
		Status:       job.Status(d.Status),
		Destination:  d.Destination,
		DurationDays: d.DurationDays,
		CreatedAt:    d.CreatedAt,
		CompletedAt:  d.CompletedAt,
		Itinerary:    d.Itinerary,
	}
	if d.Error != nil {
		j.Error = *d.Error
	}

	return j, nil
}
