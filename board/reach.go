package board

// Reach is the result of a PlayerReach flood fill: the set of player-internal
// cells reachable by the player given a fixed box configuration, plus a
// canonical representative used as half of the solver's transposition key
// (spec.md §4.1).
type Reach struct {
	reachable []bool // indexed by player-internal index
	Canonical int     // smallest reachable player-internal index
}

// Contains reports whether the player can reach the cell at player-internal
// index idx.
func (r Reach) Contains(playerIdx int) bool {
	if playerIdx < 0 || playerIdx >= len(r.reachable) {
		return false
	}
	return r.reachable[playerIdx]
}

// ContainsRaw reports whether the player can reach raw position raw.
func (r Reach) ContainsRaw(b *Board, raw int) bool {
	idx, ok := b.PlayerIndex(raw)
	if !ok {
		return false
	}
	return r.Contains(idx)
}

// BoxOccupant is satisfied by boxconf.Configuration; kept narrow here so
// board does not import boxconf (avoiding an import cycle, since boxconf
// has no need to import board).
type BoxOccupant interface {
	ContainsBoxIdx(idx int) bool
}

// ComputeReach runs a BFS over player-reachable floor cells starting at
// fromRaw, treating any cell currently occupied by a box in conf as
// impassable. It is the concrete form of spec.md's
// PlayerReach.compute(conf, from).
func (b *Board) ComputeReach(conf BoxOccupant, fromRaw int) Reach {
	n := b.NumPlayerCells()
	reachable := make([]bool, n)
	fromIdx, ok := b.PlayerIndex(fromRaw)
	if !ok {
		return Reach{reachable: reachable, Canonical: -1}
	}
	reachable[fromIdx] = true
	queue := make([]int, 0, n)
	queue = append(queue, fromIdx)
	canonical := fromIdx

	for len(queue) > 0 {
		idx := queue[0]
		queue = queue[1:]
		raw := b.RawOfPlayerIndex(idx)
		for _, d := range allDirections {
			nraw := b.Neighbor(raw, d)
			nidx, ok := b.PlayerIndex(nraw)
			if !ok || reachable[nidx] {
				continue
			}
			if boxIdx, isBoxCell := b.BoxIndex(nraw); isBoxCell && conf.ContainsBoxIdx(boxIdx) {
				continue
			}
			reachable[nidx] = true
			if nidx < canonical {
				canonical = nidx
			}
			queue = append(queue, nidx)
		}
	}
	return Reach{reachable: reachable, Canonical: canonical}
}

// PathTo returns the number of player moves from fromRaw to toRaw given a
// reach already computed for the relevant box configuration, and whether
// toRaw is reachable at all. It performs its own BFS restricted to the
// already-reachable set so callers do not need to recompute reachability
// when they already hold a Reach for the same configuration.
func (b *Board) PathTo(conf BoxOccupant, reach Reach, fromRaw, toRaw int) (moves int, ok bool) {
	toIdx, isPlayerCell := b.PlayerIndex(toRaw)
	if !isPlayerCell || !reach.Contains(toIdx) {
		return 0, false
	}
	fromIdx, _ := b.PlayerIndex(fromRaw)
	if fromIdx == toIdx {
		return 0, true
	}

	n := b.NumPlayerCells()
	dist := make([]int, n)
	for i := range dist {
		dist[i] = -1
	}
	dist[fromIdx] = 0
	queue := []int{fromIdx}
	for len(queue) > 0 {
		idx := queue[0]
		queue = queue[1:]
		if idx == toIdx {
			return dist[idx], true
		}
		raw := b.RawOfPlayerIndex(idx)
		for _, d := range allDirections {
			nraw := b.Neighbor(raw, d)
			nidx, isCell := b.PlayerIndex(nraw)
			if !isCell || dist[nidx] != -1 {
				continue
			}
			if boxIdx, isBoxCell := b.BoxIndex(nraw); isBoxCell && conf.ContainsBoxIdx(boxIdx) {
				continue
			}
			dist[nidx] = dist[idx] + 1
			queue = append(queue, nidx)
		}
	}
	return 0, false
}

// PathDirections returns the sequence of moves from fromRaw to toRaw given
// conf, for emitting the lowercase (non-push) run of a LURD solution
// string between two consecutive pushes. Unlike PathTo it tracks
// predecessor directions so the actual route, not just its length, can be
// recovered.
func (b *Board) PathDirections(conf BoxOccupant, fromRaw, toRaw int) ([]Direction, bool) {
	fromIdx, ok := b.PlayerIndex(fromRaw)
	if !ok {
		return nil, false
	}
	toIdx, ok := b.PlayerIndex(toRaw)
	if !ok {
		return nil, false
	}
	if fromIdx == toIdx {
		return nil, true
	}

	n := b.NumPlayerCells()
	visited := make([]bool, n)
	cameFrom := make([]int, n)
	cameDir := make([]Direction, n)
	for i := range cameFrom {
		cameFrom[i] = -1
	}
	visited[fromIdx] = true
	queue := []int{fromIdx}
	for len(queue) > 0 {
		idx := queue[0]
		queue = queue[1:]
		if idx == toIdx {
			break
		}
		raw := b.RawOfPlayerIndex(idx)
		for _, d := range allDirections {
			nraw := b.Neighbor(raw, d)
			nidx, isCell := b.PlayerIndex(nraw)
			if !isCell || visited[nidx] {
				continue
			}
			if boxIdx, isBoxCell := b.BoxIndex(nraw); isBoxCell && conf.ContainsBoxIdx(boxIdx) {
				continue
			}
			visited[nidx] = true
			cameFrom[nidx] = idx
			cameDir[nidx] = d
			queue = append(queue, nidx)
		}
	}
	if !visited[toIdx] {
		return nil, false
	}

	var reversed []Direction
	for idx := toIdx; idx != fromIdx; idx = cameFrom[idx] {
		reversed = append(reversed, cameDir[idx])
	}
	path := make([]Direction, len(reversed))
	for i, d := range reversed {
		path[len(reversed)-1-i] = d
	}
	return path, true
}
