package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/wayfarer"
	"github.com/xraph/wayfarer/id"
	"github.com/xraph/wayfarer/job"
)

// CreateJob persists a new job in processing status. The insert goes through
// an upsert with $currentDate so createdAt is assigned by the server clock,
// not the application's. The $exists guard keeps the filter from ever
// matching an existing record, so a duplicate ID surfaces as a key violation
// instead of silently touching the stored document.
func (s *Store) CreateJob(ctx context.Context, j *job.Job) error {
	col := s.db.Collection(colJobs)

	filter := bson.M{
		"_id":    j.ID.String(),
		"status": bson.M{"$exists": false},
	}
	update := bson.M{
		"$setOnInsert": bson.M{
			"status":       string(j.Status),
			"destination":  j.Destination,
			"durationDays": j.DurationDays,
			"completedAt":  nil,
			"itinerary":    nil,
			"error":        nil,
		},
		"$currentDate": bson.M{"createdAt": true},
	}

	_, err := col.UpdateOne(ctx, filter, update, options.UpdateOne().SetUpsert(true))
	if err != nil {
		if isDuplicateKey(err) {
			return wayfarer.ErrJobAlreadyExists
		}
		return fmt.Errorf("wayfarer/mongo: create job: %w", err)
	}

	// Read back the server-assigned timestamp so the caller's record
	// matches the stored one.
	var d jobDoc
	if err := col.FindOne(ctx, bson.M{"_id": j.ID.String()}).Decode(&d); err != nil {
		return fmt.Errorf("wayfarer/mongo: create job readback: %w", err)
	}
	j.CreatedAt = d.CreatedAt

	return nil
}

// GetJob retrieves a job by ID.
func (s *Store) GetJob(ctx context.Context, jobID id.JobID) (*job.Job, error) {
	col := s.db.Collection(colJobs)
	var d jobDoc
	err := col.FindOne(ctx, bson.M{"_id": jobID.String()}).Decode(&d)
	if err != nil {
		if isNoDocuments(err) {
			return nil, wayfarer.ErrJobNotFound
		}
		return nil, fmt.Errorf("wayfarer/mongo: get job: %w", err)
	}
	return fromJobDoc(&d)
}

// FinishJob atomically applies a terminal update to a processing job.
// The status guard in the filter makes the transition atomic: a record that
// already reached completed or failed never matches, so terminal fields are
// written at most once. completedAt comes from the server clock.
func (s *Store) FinishJob(ctx context.Context, jobID id.JobID, terminal job.Terminal) (*job.Job, error) {
	if err := terminal.Validate(); err != nil {
		return nil, err
	}

	col := s.db.Collection(colJobs)

	set := bson.M{"status": string(terminal.Status)}
	switch terminal.Status {
	case job.StatusCompleted:
		set["itinerary"] = terminal.Itinerary
		set["error"] = nil
	case job.StatusFailed:
		set["error"] = terminal.Error
		set["itinerary"] = nil
	}

	filter := bson.M{
		"_id":    jobID.String(),
		"status": string(job.StatusProcessing),
	}
	update := bson.M{
		"$set":         set,
		"$currentDate": bson.M{"completedAt": true},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var d jobDoc
	err := col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&d)
	if err != nil {
		if isNoDocuments(err) {
			return nil, s.finishMiss(ctx, jobID)
		}
		return nil, fmt.Errorf("wayfarer/mongo: finish job: %w", err)
	}

	return fromJobDoc(&d)
}

// finishMiss distinguishes the two reasons a guarded terminal write can
// match nothing: the record is absent, or it already left processing.
func (s *Store) finishMiss(ctx context.Context, jobID id.JobID) error {
	col := s.db.Collection(colJobs)
	err := col.FindOne(ctx, bson.M{"_id": jobID.String()}).Err()
	if err != nil {
		if isNoDocuments(err) {
			return wayfarer.ErrJobNotFound
		}
		return fmt.Errorf("wayfarer/mongo: finish job lookup: %w", err)
	}
	return wayfarer.ErrInvalidTransition
}

// ListJobsByStatus returns jobs matching the given status, newest first.
func (s *Store) ListJobsByStatus(ctx context.Context, status job.Status, opts job.ListOpts) ([]*job.Job, error) {
	col := s.db.Collection(colJobs)
	filter := bson.M{"status": string(status)}

	findOpts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if opts.Limit > 0 {
		findOpts.SetLimit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		findOpts.SetSkip(int64(opts.Offset))
	}

	cursor, err := col.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("wayfarer/mongo: list jobs by status: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []jobDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("wayfarer/mongo: list jobs decode: %w", err)
	}

	jobs := make([]*job.Job, 0, len(docs))
	for i := range docs {
		j, convErr := fromJobDoc(&docs[i])
		if convErr != nil {
			return nil, fmt.Errorf("wayfarer/mongo: list jobs convert: %w", convErr)
		}
		jobs = append(jobs, j)
	}
	return jobs, nil
}

// CountJobs returns the number of jobs matching the given options.
func (s *Store) CountJobs(ctx context.Context, opts job.CountOpts) (int64, error) {
	col := s.db.Collection(colJobs)
	filter := bson.M{}

	if opts.Status != "" {
		filter["status"] = string(opts.Status)
	}

	count, err := col.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("wayfarer/mongo: count jobs: %w", err)
	}
	return count, nil
}
