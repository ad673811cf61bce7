// Package middleware provides composable middleware around itinerary
// generation runs.
//
// A [Middleware] is a function that wraps a generation handler. Middleware
// are composed into a chain using [Chain] and applied before each run
// executes. They are applied right-to-left: the first middleware in the
// slice is the outermost wrapper.
//
//	// recover → logging → handler
//	chain := middleware.Chain(middleware.Recover(logger), middleware.Logging(logger))
//
// # Built-in Middleware
//
//   - [Recover] — catches panics and converts them to errors
//   - [Logging] — logs job ID, destination, duration, and outcome per run
//   - [Timeout] — cancels the run context after a configured duration
//   - [Tracing] — wraps the run in an OpenTelemetry span
//   - [Metrics] — records per-run duration and outcome counters
//
// # Writing Custom Middleware
//
//	func MyMiddleware() middleware.Middleware {
//	    return func(ctx context.Context, j *job.Job, next middleware.Handler) error {
//	        // pre-processing
//	        err := next(ctx)
//	        // post-processing
//	        return err
//	    }
//	}
//
// Middleware MUST call next to continue the chain unless intentionally
// short-circuiting.
package middleware
