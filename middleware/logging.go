package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/xraph/wayfarer/job"
)

// Logging returns middleware that logs the start and outcome of each
// generation run.
func Logging(logger *slog.Logger) Middleware {
	return func(ctx context.Context, j *job.Job, next Handler) error {
		logger.Info("generation started",
			slog.String("job_id", j.ID.String()),
			slog.String("destination", j.Destination),
			slog.Int("duration_days", j.DurationDays),
		)

		start := time.Now()
		err := next(ctx)
		elapsed := time.Since(start)

		if err != nil {
			logger.Error("generation failed",
				slog.String("job_id", j.ID.String()),
				slog.Duration("elapsed", elapsed),
				slog.String("error", err.Error()),
			)
		} else {
			logger.Info("generation completed",
				slog.String("job_id", j.ID.String()),
				slog.Duration("elapsed", elapsed),
			)
		}

		return err
	}
}
