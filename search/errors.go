package search

import "errors"

var (
	// ErrUnsolvable is returned when the search space is fully exhausted (or
	// the root lower bound is already infinite) without reaching a goal
	// configuration.
	ErrUnsolvable = errors.New("search: board is unsolvable")

	// ErrResourceExhausted is returned when the solver's memory ceiling
	// (Options.MaxMemMiB) is reached before a solution is found.
	ErrResourceExhausted = errors.New("search: resource limit exceeded")

	// ErrTimeout is returned when ctx's deadline elapses before a solution
	// is found.
	ErrTimeout = errors.New("search: timed out")

	// ErrCancelled is returned when ctx is cancelled (not via deadline)
	// before a solution is found.
	ErrCancelled = errors.New("search: cancelled")
)
