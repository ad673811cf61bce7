// Package engine coordinates the itinerary-generation lifecycle and provides
// the primary application-level API: create a job, read it back, and report
// service statistics.
//
// The engine owns the execution wiring. It builds the middleware chain, the
// executor, and the worker pool from a store and a planner; the store itself
// is opened and closed by the entry point and injected, so the engine holds
// no connection lifecycle of its own.
//
// # Building an Engine
//
//	eng, err := engine.New(store,
//	    engine.WithPlanner(planner.New(openaiClient)),
//	    engine.WithWorkers(4),
//	    engine.WithGenerationTimeout(2*time.Minute),
//	)
//	if err != nil {
//	    return err
//	}
//
//	if err := eng.Start(ctx); err != nil {
//	    return err
//	}
//	defer eng.Stop(ctx)
//
// # Creating Jobs
//
//	j, err := eng.CreateJob(ctx, "Kyoto", 5)
//
// CreateJob persists the record in processing status and hands the
// generation task to the pool. Clients poll GetJob until the record reaches
// completed or failed. When the pool's queue is full the record is finished
// as failed immediately and wayfarer.ErrQueueFull is returned; the record
// remains as the durable trace of the rejected request.
//
// # Options
//
//   - [WithPlanner] — set the itinerary generator (required)
//   - [WithConfig] — replace the whole engine Config
//   - [WithWorkers] — number of generation goroutines
//   - [WithQueueCapacity] — pending-task buffer size
//   - [WithGenerationTimeout] — per-run deadline
//   - [WithLogger] — structured logger
//   - [WithMiddleware] — append middleware to the execution chain
//   - [WithTracerProvider] — set the OpenTelemetry tracer provider
//   - [WithMeterProvider] — set the OpenTelemetry meter provider
package engine
