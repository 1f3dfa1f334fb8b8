package search

import (
	"container/heap"

	"github.com/sokostar/sokostar/board"
	"github.com/sokostar/sokostar/boxconf"
)

// node is the flattened, non-inheritance search node spec.md's BoardPosition
// re-architecture calls for (§9): every node carries a parent pointer, the
// single push delta that produced it from its parent, and its own full box
// configuration (conf), mirroring the teacher's own negamax node/result
// structs. There is no delta-only node variant: every node holds a
// complete snapshot. The root node has parent == nil.
type node struct {
	conf       boxconf.Configuration
	playerRaw  int // player position immediately after this node's push
	reachCanon int // Reach.Canonical computed for (conf, playerRaw)

	parent *node
	// the push that produced this node from parent: box moved from
	// srcRaw to dstRaw by pushing in direction dir; the player stood at
	// standRaw to deliver it.
	srcRaw, dstRaw, standRaw int
	dir                      board.Direction

	g int     // pushes so far
	h float64 // PushesLowerBound at this node
	f float64 // g + h

	// tunnelBox/tunnelDir restrict the next expansion to a single forced
	// continuation (spec.md §4.5.2a); tunnelValid is false for ordinary
	// nodes.
	tunnelValid bool
	tunnelBox   int
	tunnelDir   board.Direction

	fastForwarded bool

	seq int // insertion sequence, for deterministic tie-breaking

	hash uint64 // zobrist.Table position key, carried incrementally from parent
}

// priorityQueue is a container/heap.Interface min-heap over node.f, with
// ties broken LIFO by insertion order (seq) per spec.md §4.5's bucket-queue
// tie-break rule (last-in, first-out, for the depth-first behaviour it
// yields), grounded on the teacher-adjacent bertbaron-pathfinding example's
// priorityQueue shape.
type priorityQueue []*node

func (pq priorityQueue) Len() int { return len(pq) }

func (pq priorityQueue) Less(i, j int) bool {
	if pq[i].f != pq[j].f {
		return pq[i].f < pq[j].f
	}
	return pq[i].seq > pq[j].seq
}

func (pq priorityQueue) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }

func (pq *priorityQueue) Push(x any) {
	*pq = append(*pq, x.(*node))
}

func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*pq = old[:n-1]
	return item
}

func newFrontier() *priorityQueue {
	pq := make(priorityQueue, 0, 256)
	heap.Init(&pq)
	return &pq
}
