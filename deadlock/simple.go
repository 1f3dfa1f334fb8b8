// Package deadlock computes the two deadlock data structures the solver
// leans on for pruning: per-cell simple deadlocks (C4) and the k-box
// mutual-deadlock bucket set (C5), including the freeze-deadlock check used
// by the pushes lower bound.
package deadlock

import "github.com/sokostar/sokostar/board"

// PrecomputeSimple marks every simple-deadlock cell on b: a cell from which
// a single box, ignoring every other box, could never be pushed onto any
// goal (spec.md §4.2). It must be called before b.FinalizeBoxIndex, and
// calls FinalizeBoxIndex itself once the marks are in place.
//
// The algorithm pulls a box backward from every goal, treating only walls
// as obstacles (a lone box on an otherwise empty board can always be walked
// around, so player reachability need not be simulated here); any
// non-wall cell never reached by a pull is a simple deadlock.
func PrecomputeSimple(b *board.Board) error {
	reached := make([]bool, b.RawSize())
	queue := make([]int, 0, b.RawSize())

	for raw := 0; raw < b.RawSize(); raw++ {
		if b.IsGoal(raw) && !b.IsWall(raw) {
			reached[raw] = true
			queue = append(queue, raw)
		}
	}

	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		for _, d := range board.Directions() {
			// Pulling the box one step backward in the push direction d
			// means: before some forward push in direction d took the box
			// from dst to p, it sat at dst = p - delta(d), and the player
			// stood at p - 2*delta(d) to perform that push.
			dst := back(b, p, d, 1)
			playerCell := back(b, p, d, 2)
			if dst < 0 || playerCell < 0 {
				continue
			}
			if b.IsWall(dst) || b.IsWall(playerCell) {
				continue
			}
			if reached[dst] {
				continue
			}
			reached[dst] = true
			queue = append(queue, dst)
		}
	}

	for raw := 0; raw < b.RawSize(); raw++ {
		if b.IsWall(raw) {
			continue
		}
		if !reached[raw] {
			b.SetSimpleDeadlock(raw)
		}
	}

	return b.FinalizeBoxIndex()
}

// back walks n steps from raw opposite to d, returning -1 if it would cross
// the board boundary (Neighbor is only meaningful for in-bounds cells, so
// a second Neighbor call off one already out of range would silently wrap
// via Go's arithmetic and must be rejected explicitly).
func back(b *board.Board, raw int, d board.Direction, n int) int {
	opp := board.Opposite(d)
	cur := raw
	for i := 0; i < n; i++ {
		cur = b.Neighbor(cur, opp)
		if cur < 0 || cur >= b.RawSize() {
			return -1
		}
	}
	return cur
}
