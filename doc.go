// Package wayfarer provides an AI travel-itinerary generation service for Go.
// It accepts a destination and trip duration, asks an LLM chat-completion API
// for a day-by-day plan in the background, validates the structured response,
// and persists the result as a job record that clients poll until it reaches
// a terminal status.
//
// Wayfarer is designed as a small set of composable packages. The engine
// coordinates the lifecycle; generation runs on a bounded worker pool; the
// job store is an interface with memory, MongoDB, PostgreSQL, Redis, and
// SQLite backends.
//
// # Quick Start
//
//	eng, err := engine.New(store,
//	    engine.WithPlanner(planner.New(openaiClient)),
//	    engine.WithWorkers(4),
//	)
//
// # Architecture
//
// Wayfarer follows a composable store pattern: the job subsystem defines its
// store interface and a single backend implements it. Records carry
// server-assigned timestamps and move through exactly one terminal
// transition, from processing to completed or failed.
//
// All job IDs use TypeID: type-prefixed, K-sortable, UUIDv7-based,
// compile-time safe identifiers.
package wayfarer
