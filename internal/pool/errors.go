package pool

import "errors"

var (
	// ErrInvalidWorkers is returned by New when the worker count is not positive.
	ErrInvalidWorkers = errors.New("worker count must be greater than 0")

	// ErrClosed is returned by a wait that was interrupted by Close.
	ErrClosed = errors.New("pool is closed")

	// ErrNotFound is returned by ResultAs for an unknown or unfinished task.
	ErrNotFound = errors.New("task result not found")

	// ErrTypeMismatch is returned by ResultAs when the stored task has another type.
	ErrTypeMismatch = errors.New("task result type mismatch")

	// ErrTaskPanicked wraps the value recovered from a panicking task body.
	ErrTaskPanicked = errors.New("task panicked")
)
