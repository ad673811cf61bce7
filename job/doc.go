// Package job defines the itinerary job entity, its status machine, and the
// store interface.
//
// # Job Entity
//
// A [Job] represents one itinerary-generation request. It is created in
// processing status and moves through exactly one terminal transition:
//
//	processing → completed
//	processing → failed
//
// Terminal statuses admit no further transitions. The store assigns both
// timestamps: CreatedAt at creation, CompletedAt at the terminal write.
//
// # Terminal Updates
//
// The terminal write is expressed as a [Terminal] value built with
// [Completed] or [Failed], never by mutating a record's fields directly.
// [Terminal.Validate] enforces that a completed update carries an itinerary
// and a failed update carries an error message, exclusively:
//
//	updated, err := store.FinishJob(ctx, jobID, job.Completed(days))
//
// # Store
//
// [Store] is the persistence contract. The store package composes it with
// lifecycle operations into the aggregate interface; backends live under
// store/memory, store/mongo, store/postgres, store/redis, and store/sqlite.
package job
