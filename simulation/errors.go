package simulation

import "errors"

var (
	// ErrMissingSurface is returned by New when no drawing surface is supplied.
	ErrMissingSurface = errors.New("simulation: missing surface")
	// ErrMissingScheduler is returned by New when no frame scheduler is supplied.
	ErrMissingScheduler = errors.New("simulation: missing frame scheduler")
	// ErrInvalidViewport is returned when the canvas has no area.
	ErrInvalidViewport = errors.New("simulation: invalid viewport size")
	// ErrNotInitialized is returned by Start before Init has completed.
	ErrNotInitialized = errors.New("simulation: not initialized")
	// ErrDestroyed is returned by operations on a destroyed controller.
	ErrDestroyed = errors.New("simulation: destroyed")
)
