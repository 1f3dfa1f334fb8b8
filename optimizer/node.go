package optimizer

import (
	"container/heap"

	"github.com/sokostar/sokostar/board"
	"github.com/sokostar/sokostar/boxconf"
)

// node is the Dijkstra search node for Phase 2 (spec.md §4.7): unlike
// search.node, the priority is a composite cost tuple rather than a single
// float, and identity additionally depends on the most recent push (box,
// direction) since box-line/box-change/pushing-session costs are a
// function of push history, not just the current board state. Flattened
// parent-pointer shape grounded on search.node (itself grounded on the
// teacher's negamax node/result structs).
type node struct {
	conf       boxconf.Configuration
	playerRaw  int
	reachCanon int

	havePush  bool
	lastBox   int
	lastDir   board.Direction

	parent                    *node
	srcRaw, dstRaw, standRaw  int
	dir                       board.Direction

	total cost // accumulated cost from the root along this path

	seq int
}

// visitKey identifies a Dijkstra node for the purposes of "have we already
// found a cheaper way here": the board state plus the push-history context
// that future edge costs depend on. Collisions between distinct
// BoxConfigurations sharing a confHash are accepted as a vanishingly rare
// risk, the same tradeoff the solver's zobrist transposition key makes.
type visitKey struct {
	confHash   uint64
	reachCanon int
	lastBox    int
	lastDir    board.Direction
}

func keyOf(n *node) visitKey {
	return visitKey{
		confHash:   n.conf.Hash(),
		reachCanon: n.reachCanon,
		lastBox:    n.lastBox,
		lastDir:    n.lastDir,
	}
}

type priorityQueue struct {
	items  []*node
	metric Metric
}

func (pq *priorityQueue) Len() int { return len(pq.items) }

func (pq *priorityQueue) Less(i, j int) bool {
	a, b := pq.items[i], pq.items[j]
	if less(pq.metric, a.total, b.total) {
		return true
	}
	if less(pq.metric, b.total, a.total) {
		return false
	}
	return a.seq < b.seq
}

func (pq *priorityQueue) Swap(i, j int) { pq.items[i], pq.items[j] = pq.items[j], pq.items[i] }

func (pq *priorityQueue) Push(x any) {
	pq.items = append(pq.items, x.(*node))
}

func (pq *priorityQueue) Pop() any {
	old := pq.items
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	pq.items = old[:n-1]
	return item
}

func newFrontier(metric Metric) *priorityQueue {
	pq := &priorityQueue{items: make([]*node, 0, 256), metric: metric}
	heap.Init(pq)
	return pq
}
