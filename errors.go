package wayfarer

import "errors"

var (
	// Store errors.
	ErrNoStore         = errors.New("wayfarer: no store configured")
	ErrStoreClosed     = errors.New("wayfarer: store closed")
	ErrMigrationFailed = errors.New("wayfarer: migration failed")

	// Wiring errors.
	ErrNoPlanner = errors.New("wayfarer: no planner configured")

	// Not found errors.
	ErrJobNotFound = errors.New("wayfarer: job not found")

	// Conflict errors.
	ErrJobAlreadyExists = errors.New("wayfarer: job already exists")

	// State errors.
	ErrInvalidTransition = errors.New("wayfarer: invalid status transition")

	// Input errors.
	ErrInvalidInput = errors.New("wayfarer: invalid input")

	// Generation errors.
	ErrParseFailed      = errors.New("wayfarer: failed to parse itinerary data")
	ErrInvalidItinerary = errors.New("wayfarer: invalid itinerary structure")
	ErrGenerationFailed = errors.New("wayfarer: failed to generate itinerary")

	// Capacity errors.
	ErrQueueFull = errors.New("wayfarer: generation queue is full")
)
