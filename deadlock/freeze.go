package deadlock

import (
	"github.com/sokostar/sokostar/board"
	"github.com/sokostar/sokostar/boxconf"
)

type axis int

const (
	axisHorizontal axis = iota
	axisVertical
)

// IsFrozen reports whether the box at raw cannot move along either axis in
// conf: a wall or another immovable box blocks it on at least one side of
// the horizontal axis AND on at least one side of the vertical axis
// (spec.md §4.2).
// Mutual freezes (two boxes propping each other up) are detected through
// the recursive otherAxis check; a visiting set breaks cycles by treating a
// box already under consideration as blocked, which is the standard
// conservative resolution for this kind of mutual-recursion freeze check.
func IsFrozen(b *board.Board, conf boxconf.Configuration, raw int) bool {
	return blockedOnAxis(b, conf, raw, axisHorizontal, map[int]bool{}) &&
		blockedOnAxis(b, conf, raw, axisVertical, map[int]bool{})
}

func blockedOnAxis(b *board.Board, conf boxconf.Configuration, raw int, ax axis, visiting map[int]bool) bool {
	if visiting[raw] {
		return true
	}
	visiting[raw] = true

	var d1, d2 board.Direction
	var other axis
	if ax == axisHorizontal {
		d1, d2, other = board.Left, board.Right, axisVertical
	} else {
		d1, d2, other = board.Up, board.Down, axisHorizontal
	}
	// A wall (or permanently frozen box) on EITHER side of an axis blocks
	// the whole axis: a wall to the left not only stops a leftward push
	// (destination occupied) but also a rightward one, since the player
	// would have to stand on the wall to deliver it. Hence OR, not AND.
	return blockedDirection(b, conf, raw, d1, other, visiting) ||
		blockedDirection(b, conf, raw, d2, other, visiting)
}

func blockedDirection(b *board.Board, conf boxconf.Configuration, raw int, d board.Direction, other axis, visiting map[int]bool) bool {
	n := b.Neighbor(raw, d)
	if b.IsWall(n) {
		return true
	}
	idx, isBoxCell := b.BoxIndex(n)
	if isBoxCell && conf.ContainsBoxIdx(idx) {
		return blockedOnAxis(b, conf, n, other, visiting)
	}
	return false
}

// HasFreezeDeadlock reports whether conf contains a freeze deadlock: at
// least one box that is frozen (IsFrozen) while not sitting on a goal. Used
// by the pushes-lower-bound routine to short-circuit to infinity (spec.md
// §4.4) without waiting on the full assignment computation.
func HasFreezeDeadlock(b *board.Board, conf boxconf.Configuration) bool {
	frozen := false
	conf.Positions(func(idx int) {
		if frozen {
			return
		}
		raw := b.RawOfBoxIndex(idx)
		if b.IsGoal(raw) {
			return
		}
		if IsFrozen(b, conf, raw) {
			frozen = true
		}
	})
	return frozen
}
