package wayfarer

import "time"

// Config holds configuration for the generation engine.
type Config struct {
	// Workers is the number of goroutines executing generation runs.
	Workers int

	// QueueCapacity is the size of the pending-generation buffer. Submissions
	// beyond this return ErrQueueFull.
	QueueCapacity int

	// GenerationTimeout is the deadline for a single generation run. A run
	// that exceeds it is cancelled and its job marked failed.
	GenerationTimeout time.Duration

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	ShutdownTimeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Workers:           4,
		QueueCapacity:     64,
		GenerationTimeout: 2 * time.Minute,
		ShutdownTimeout:   30 * time.Second,
	}
}
