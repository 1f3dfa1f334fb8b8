// Package lowerbound implements C6: the admissible pushes-lower-bound
// heuristic used by the solver, computed as a minimum-cost bipartite
// matching of boxes to goals over precomputed single-box push distances.
package lowerbound

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/sokostar/sokostar/board"
	"github.com/sokostar/sokostar/boxconf"
	"github.com/sokostar/sokostar/deadlock"
)

// Table holds, for every (goal, box-cell) pair, the minimum number of
// pushes needed to push a single box from that cell to that goal, ignoring
// every other box and respecting simple-deadlock cells. It is computed
// once per board and is immutable afterwards.
type Table struct {
	numGoals int
	// dist[g] is indexed by box-internal index; -1 means unreachable.
	dist [][]int
}

// Precompute builds the Table for b. Must be called after
// deadlock.PrecomputeSimple (and hence after b.FinalizeBoxIndex).
func Precompute(b *board.Board) *Table {
	t := &Table{numGoals: len(b.GoalBoxIdx)}
	t.dist = make([][]int, t.numGoals)
	for g, goalBoxIdx := range b.GoalBoxIdx {
		t.dist[g] = DistancesFrom(b, b.RawOfBoxIndex(goalBoxIdx))
	}
	return t
}

// DistancesFrom runs a cost-tracking reverse-pull BFS from goalRaw over
// box-internal cells, mirroring deadlock.PrecomputeSimple's reachability
// walk but recording push counts instead of just a boolean.
func DistancesFrom(b *board.Board, goalRaw int) []int {
	dist := make([]int, b.NumBoxCells())
	for i := range dist {
		dist[i] = -1
	}
	if idx, ok := b.BoxIndex(goalRaw); ok {
		dist[idx] = 0
	}

	type item struct{ raw, cost int }
	queue := []item{{goalRaw, 0}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, d := range board.Directions() {
			boxOld := b.Neighbor(cur.raw, d)
			playerBefore := b.Neighbor(boxOld, d)
			if b.IsWall(boxOld) || b.IsWall(playerBefore) {
				continue
			}
			idx, ok := b.BoxIndex(boxOld)
			if !ok || dist[idx] != -1 {
				continue
			}
			dist[idx] = cur.cost + 1
			queue = append(queue, item{boxOld, cur.cost + 1})
		}
	}
	return dist
}

// PushesLowerBound computes the admissible heuristic for conf: the minimum
// assignment cost of boxes to goals, or +Inf if any box cannot reach any
// goal or the configuration contains a freeze deadlock (spec.md §4.4).
func (t *Table) PushesLowerBound(b *board.Board, conf boxconf.Configuration) float64 {
	if deadlock.HasFreezeDeadlock(b, conf) {
		return math.Inf(1)
	}

	boxes := conf.Slice()
	n := len(boxes)
	if n != t.numGoals {
		// A malformed configuration (box count drifted from goal count)
		// cannot be solved; treat as a deadlock rather than panicking deep
		// inside the assignment solver.
		return math.Inf(1)
	}

	cost := mat.NewDense(n, n, nil)
	for i, boxIdx := range boxes {
		reachesAny := false
		for g := 0; g < n; g++ {
			d := t.dist[g][boxIdx]
			if d < 0 {
				cost.Set(i, g, math.Inf(1))
				continue
			}
			reachesAny = true
			cost.Set(i, g, float64(d))
		}
		if !reachesAny {
			return math.Inf(1)
		}
	}

	total, ok := minCostAssignment(cost)
	if !ok {
		return math.Inf(1)
	}
	return total
}
