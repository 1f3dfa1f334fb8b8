package search

import (
	"github.com/sokostar/sokostar/board"
	"github.com/sokostar/sokostar/boxconf"
)

// perpendicular returns the two directions orthogonal to d.
func perpendicular(d board.Direction) (board.Direction, board.Direction) {
	if d == board.Up || d == board.Down {
		return board.Left, board.Right
	}
	return board.Up, board.Down
}

// isTunnelContinuation implements spec.md §4.5.2a: a box just pushed in
// direction dir to dstRaw is "in a tunnel" if, ignoring every other box,
// continuing to push it further in dir is provably as good as any
// alternative — which holds when both of its new orthogonal neighbours are
// walls, or were outside the reach the player had before this particular
// push (so opening them up is not actually an available alternative this
// ply). beforeReach is the parent node's Reach, i.e. the player's
// reachable region prior to delivering this push.
//
// Per the tunnel/goal-room interaction open question (SPEC_FULL.md §6), a
// box sitting on a goal is never reported as tunnelling while any other
// goal is still empty; goalsElsewhereReachable carries that occupancy check
// so callers can short-circuit it. No corral analysis is done for it.
func isTunnelContinuation(b *board.Board, conf boxconf.Configuration, dstRaw int, dir board.Direction, beforeReach board.Reach, goalsElsewhereReachable bool) bool {
	if b.IsGoal(dstRaw) && goalsElsewhereReachable {
		return false
	}

	p1, p2 := perpendicular(dir)
	return blockedForTunnel(b, conf, dstRaw, p1, beforeReach) &&
		blockedForTunnel(b, conf, dstRaw, p2, beforeReach)
}

func blockedForTunnel(b *board.Board, conf boxconf.Configuration, raw int, d board.Direction, beforeReach board.Reach) bool {
	n := b.Neighbor(raw, d)
	if b.IsWall(n) {
		return true
	}
	if idx, isBoxCell := b.BoxIndex(n); isBoxCell && conf.ContainsBoxIdx(idx) {
		return true
	}
	return !beforeReach.ContainsRaw(b, n)
}
