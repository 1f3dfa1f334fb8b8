package optimizer

import (
	"errors"

	"github.com/sokostar/sokostar/search"
)

// Re-exported so optimizer callers can errors.Is against one sentinel
// value regardless of which package's cancellable phase produced it
// (SPEC_FULL.md §9).
var (
	ErrCancelled         = search.ErrCancelled
	ErrTimeout           = search.ErrTimeout
	ErrResourceExhausted = search.ErrResourceExhausted
)

// ErrUnreachableStand signals an internal inconsistency: a Phase 2 edge
// was accepted using board.PathTo, but Phase 3 stitching could not
// recover the same route via board.PathDirections. Both walk the same
// reach-restricted graph, so this should never fire in practice.
var ErrUnreachableStand = errors.New("optimizer: could not reconstruct move path to push stand square")
