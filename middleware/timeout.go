package middleware

import (
	"context"
	"time"

	"github.com/xraph/wayfarer/job"
)

// Timeout returns middleware that enforces a per-run generation deadline.
// When the deadline is exceeded the context is cancelled and the handler
// should return context.DeadlineExceeded, which the executor records as a
// failed run. A zero or negative d disables the deadline.
func Timeout(d time.Duration) Middleware {
	return func(ctx context.Context, _ *job.Job, next Handler) error {
		if d > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, d)
			defer cancel()
		}
		return next(ctx)
	}
}
